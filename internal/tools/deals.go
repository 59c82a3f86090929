package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/conversion"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

func registerDealTools(s *server.MCPServer, c *pipedrive.Client) {
	s.AddTool(mcp.NewTool("create_deal_in_pipedrive",
		mcp.WithDescription("Creates a new deal in Pipedrive CRM."),
		mcp.WithString("title", mcp.Required(), mcp.Description("The title of the deal")),
		mcp.WithString("value", mcp.Description("Monetary value, numeric string like '1500.50'")),
		mcp.WithString("currency", mcp.Description("3-letter ISO currency code (default USD)")),
		mcp.WithString("person_id", mcp.Description("Numeric ID of the linked person")),
		mcp.WithString("org_id", mcp.Description("Numeric ID of the linked organization")),
		mcp.WithString("status", mcp.Description("open, won, or lost")),
		mcp.WithString("owner_id", mcp.Description("Numeric ID of the owning user")),
		mcp.WithString("stage_id", mcp.Description("Numeric ID of the pipeline stage")),
		mcp.WithString("pipeline_id", mcp.Description("Numeric ID of the pipeline")),
		mcp.WithString("expected_close_date", mcp.Description("YYYY-MM-DD")),
		mcp.WithString("visible_to", mcp.Description("0=private, 1=shared, 3=team, 7=company")),
		mcp.WithString("probability", mcp.Description("Success probability, 0-100")),
		mcp.WithString("lost_reason", mcp.Description("Only valid when status is 'lost'")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated numeric label IDs")),
	), createDealHandler(c))

	s.AddTool(mcp.NewTool("get_deal_from_pipedrive",
		mcp.WithDescription("Fetches one deal by its numeric ID."),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("Numeric ID of the deal")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
	), getDealHandler(c))

	s.AddTool(mcp.NewTool("list_deals_from_pipedrive",
		mcp.WithDescription("Lists deals with optional filters and cursor pagination."),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
		mcp.WithString("filter_id", mcp.Description("Numeric ID of a saved filter")),
		mcp.WithString("owner_id", mcp.Description("Only deals owned by this user")),
		mcp.WithString("person_id", mcp.Description("Only deals linked to this person")),
		mcp.WithString("org_id", mcp.Description("Only deals linked to this organization")),
		mcp.WithString("pipeline_id", mcp.Description("Only deals in this pipeline")),
		mcp.WithString("stage_id", mcp.Description("Only deals in this stage")),
		mcp.WithString("status", mcp.Description("open, won, lost, or deleted")),
		mcp.WithString("updated_since", mcp.Description("RFC3339 lower bound on update time")),
		mcp.WithString("updated_until", mcp.Description("RFC3339 upper bound on update time")),
		mcp.WithString("sort_by", mcp.Description("Field to sort by")),
		mcp.WithString("sort_direction", mcp.Description("asc or desc")),
	), listDealsHandler(c))

	s.AddTool(mcp.NewTool("update_deal_in_pipedrive",
		mcp.WithDescription("Updates an existing deal. Only provided fields change."),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("Numeric ID of the deal")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("value", mcp.Description("Monetary value, numeric string")),
		mcp.WithString("currency", mcp.Description("3-letter ISO currency code")),
		mcp.WithString("person_id", mcp.Description("Linked person")),
		mcp.WithString("org_id", mcp.Description("Linked organization")),
		mcp.WithString("status", mcp.Description("open, won, or lost")),
		mcp.WithString("owner_id", mcp.Description("Owning user")),
		mcp.WithString("stage_id", mcp.Description("Pipeline stage")),
		mcp.WithString("pipeline_id", mcp.Description("Pipeline")),
		mcp.WithString("expected_close_date", mcp.Description("YYYY-MM-DD")),
		mcp.WithString("visible_to", mcp.Description("0=private, 1=shared, 3=team, 7=company")),
		mcp.WithString("probability", mcp.Description("Success probability, 0-100")),
		mcp.WithString("lost_reason", mcp.Description("Only valid when status is 'lost'")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated numeric label IDs")),
	), updateDealHandler(c))

	s.AddTool(mcp.NewTool("delete_deal_from_pipedrive",
		mcp.WithDescription("Deletes a deal by its numeric ID."),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("Numeric ID of the deal")),
	), deleteDealHandler(c))

	s.AddTool(mcp.NewTool("search_deals_in_pipedrive",
		mcp.WithDescription("Searches deals by term across title, notes, and custom fields."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Search term, at least 2 characters (1 if exact_match)")),
		mcp.WithString("fields", mcp.Description("Comma-separated fields to search in")),
		mcp.WithString("exact_match", mcp.Description("'true' for exact matching")),
		mcp.WithString("person_id", mcp.Description("Restrict to deals of this person")),
		mcp.WithString("org_id", mcp.Description("Restrict to deals of this organization")),
		mcp.WithString("status", mcp.Description("open, won, or lost")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
	), searchDealsHandler(c))

	s.AddTool(mcp.NewTool("get_deal_products_from_pipedrive",
		mcp.WithDescription("Lists the products attached to a deal."),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("Numeric ID of the deal")),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
	), getDealProductsHandler(c))

	s.AddTool(mcp.NewTool("add_product_to_deal_in_pipedrive",
		mcp.WithDescription("Attaches a product to a deal with pricing details."),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("Numeric ID of the deal")),
		mcp.WithString("product_id", mcp.Required(), mcp.Description("Numeric ID of the product")),
		mcp.WithString("item_price", mcp.Required(), mcp.Description("Unit price, must be positive")),
		mcp.WithString("quantity", mcp.Required(), mcp.Description("Quantity, must be positive")),
		mcp.WithString("discount", mcp.Description("Discount amount or percentage")),
		mcp.WithString("discount_type", mcp.Description("percentage or amount")),
		mcp.WithString("tax", mcp.Description("Tax amount, non-negative")),
		mcp.WithString("tax_method", mcp.Description("inclusive, exclusive, or none")),
		mcp.WithString("comments", mcp.Description("Free-form comments")),
		mcp.WithString("is_enabled", mcp.Description("'true' or 'false'")),
		mcp.WithString("billing_frequency", mcp.Description("one-time, weekly, monthly, quarterly, semi-annually, annually")),
		mcp.WithString("billing_frequency_cycles", mcp.Description("1-208; required for weekly, forbidden for one-time")),
		mcp.WithString("billing_start_date", mcp.Description("YYYY-MM-DD")),
	), addDealProductHandler(c))

	s.AddTool(mcp.NewTool("update_product_in_deal_in_pipedrive",
		mcp.WithDescription("Updates a product attachment on a deal."),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("Numeric ID of the deal")),
		mcp.WithString("product_attachment_id", mcp.Required(), mcp.Description("Numeric ID of the attachment")),
		mcp.WithString("item_price", mcp.Description("Unit price, must be positive")),
		mcp.WithString("quantity", mcp.Description("Quantity, must be positive")),
		mcp.WithString("discount", mcp.Description("Discount amount or percentage")),
		mcp.WithString("discount_type", mcp.Description("percentage or amount")),
		mcp.WithString("tax", mcp.Description("Tax amount, non-negative")),
		mcp.WithString("tax_method", mcp.Description("inclusive, exclusive, or none")),
		mcp.WithString("comments", mcp.Description("Free-form comments")),
		mcp.WithString("is_enabled", mcp.Description("'true' or 'false'")),
		mcp.WithString("billing_frequency", mcp.Description("one-time, weekly, monthly, quarterly, semi-annually, annually")),
		mcp.WithString("billing_frequency_cycles", mcp.Description("1-208")),
		mcp.WithString("billing_start_date", mcp.Description("YYYY-MM-DD")),
	), updateDealProductHandler(c))

	s.AddTool(mcp.NewTool("delete_product_from_deal_in_pipedrive",
		mcp.WithDescription("Detaches a product from a deal."),
		mcp.WithString("deal_id", mcp.Required(), mcp.Description("Numeric ID of the deal")),
		mcp.WithString("product_attachment_id", mcp.Required(), mcp.Description("Numeric ID of the attachment")),
	), deleteDealProductHandler(c))
}

func dealInputFromRequest(req mcp.CallToolRequest) (*pipedrive.DealInput, error) {
	in := &pipedrive.DealInput{
		Title:      argOptionalString(req, "title"),
		LostReason: argOptionalString(req, "lost_reason"),
	}
	if status := argString(req, "status"); status != "" {
		in.Status = pipedrive.String(strings.ToLower(status))
	}
	if currency := argString(req, "currency"); currency != "" {
		in.Currency = pipedrive.String(currency)
	}
	var err error
	if in.Value, err = argFloat(req, "value"); err != nil {
		return nil, err
	}
	if in.PersonID, err = argID(req, "person_id"); err != nil {
		return nil, err
	}
	if in.OrgID, err = argID(req, "org_id"); err != nil {
		return nil, err
	}
	if in.OwnerID, err = argID(req, "owner_id"); err != nil {
		return nil, err
	}
	if in.StageID, err = argID(req, "stage_id"); err != nil {
		return nil, err
	}
	if in.PipelineID, err = argID(req, "pipeline_id"); err != nil {
		return nil, err
	}
	if closeDate, err := conversion.DateString(argString(req, "expected_close_date"), "expected_close_date"); err != nil {
		return nil, err
	} else if closeDate != "" {
		in.ExpectedCloseDate = pipedrive.String(closeDate)
	}
	if in.VisibleTo, err = argInt(req, "visible_to"); err != nil {
		return nil, err
	}
	if in.Probability, err = argInt(req, "probability"); err != nil {
		return nil, err
	}
	if in.LabelIDs, err = argIDList(req, "label_ids"); err != nil {
		return nil, err
	}
	return in, nil
}

func dealProductInputFromRequest(req mcp.CallToolRequest) (*pipedrive.DealProductInput, error) {
	in := &pipedrive.DealProductInput{
		DiscountType:     argOptionalString(req, "discount_type"),
		TaxMethod:        argOptionalString(req, "tax_method"),
		Comments:         argOptionalString(req, "comments"),
		BillingFrequency: argOptionalString(req, "billing_frequency"),
	}
	var err error
	if in.ProductID, err = argID(req, "product_id"); err != nil {
		return nil, err
	}
	if in.ItemPrice, err = argFloat(req, "item_price"); err != nil {
		return nil, err
	}
	if in.Quantity, err = argFloat(req, "quantity"); err != nil {
		return nil, err
	}
	if in.Discount, err = argFloat(req, "discount"); err != nil {
		return nil, err
	}
	if in.Tax, err = argFloat(req, "tax"); err != nil {
		return nil, err
	}
	if in.IsEnabled, err = argBool(req, "is_enabled"); err != nil {
		return nil, err
	}
	if in.BillingFrequencyCycles, err = argInt(req, "billing_frequency_cycles"); err != nil {
		return nil, err
	}
	if startDate, err := conversion.DateString(argString(req, "billing_start_date"), "billing_start_date"); err != nil {
		return nil, err
	} else if startDate != "" {
		in.BillingStartDate = pipedrive.String(startDate)
	}
	return in, nil
}

func createDealHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, err := dealInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Deals.Create(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func getDealHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "deal_id")
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Deals.Get(ctx, id, conversion.SplitList(argString(req, "include_fields")))
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func listDealsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.DealListOptions{
			Limit:         limit,
			Cursor:        argString(req, "cursor"),
			Status:        strings.ToLower(argString(req, "status")),
			UpdatedSince:  argString(req, "updated_since"),
			UpdatedUntil:  argString(req, "updated_until"),
			SortBy:        argString(req, "sort_by"),
			SortDirection: argString(req, "sort_direction"),
		}
		if opts.FilterID, err = argID(req, "filter_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.OwnerID, err = argID(req, "owner_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.PersonID, err = argID(req, "person_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.OrgID, err = argID(req, "org_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.PipelineID, err = argID(req, "pipeline_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.StageID, err = argID(req, "stage_id"); err != nil {
			return errorResult(err), nil
		}
		items, cursor, err := c.Deals.List(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("deals", items, cursor)), nil
	}
}

func updateDealHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "deal_id")
		if err != nil {
			return errorResult(err), nil
		}
		in, err := dealInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Deals.Update(ctx, id, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func deleteDealHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "deal_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := c.Deals.Delete(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"id": id, "deleted": true}), nil
	}
}

func searchDealsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		exact, err := argBool(req, "exact_match")
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.DealSearchOptions{
			Term:          argString(req, "term"),
			Fields:        conversion.SplitList(argString(req, "fields")),
			ExactMatch:    exact != nil && *exact,
			Status:        strings.ToLower(argString(req, "status")),
			IncludeFields: conversion.SplitList(argString(req, "include_fields")),
			Limit:         limit,
			Cursor:        argString(req, "cursor"),
		}
		if opts.PersonID, err = argID(req, "person_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.OrgID, err = argID(req, "org_id"); err != nil {
			return errorResult(err), nil
		}
		items, cursor, err := c.Deals.Search(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("items", items, cursor)), nil
	}
}

func getDealProductsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dealID, err := argRequiredID(req, "deal_id")
		if err != nil {
			return errorResult(err), nil
		}
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		items, cursor, err := c.Deals.Products(ctx, dealID, limit, argString(req, "cursor"))
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("products", items, cursor)), nil
	}
}

func addDealProductHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dealID, err := argRequiredID(req, "deal_id")
		if err != nil {
			return errorResult(err), nil
		}
		in, err := dealProductInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Deals.AddProduct(ctx, dealID, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func updateDealProductHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dealID, err := argRequiredID(req, "deal_id")
		if err != nil {
			return errorResult(err), nil
		}
		attachmentID, err := argRequiredID(req, "product_attachment_id")
		if err != nil {
			return errorResult(err), nil
		}
		in, err := dealProductInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Deals.UpdateProduct(ctx, dealID, attachmentID, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func deleteDealProductHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dealID, err := argRequiredID(req, "deal_id")
		if err != nil {
			return errorResult(err), nil
		}
		attachmentID, err := argRequiredID(req, "product_attachment_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := c.Deals.DeleteProduct(ctx, dealID, attachmentID); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"deal_id": dealID, "product_attachment_id": attachmentID, "deleted": true}), nil
	}
}
