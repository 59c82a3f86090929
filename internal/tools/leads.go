package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/conversion"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

func registerLeadTools(s *server.MCPServer, c *pipedrive.Client) {
	s.AddTool(mcp.NewTool("create_lead_in_pipedrive",
		mcp.WithDescription("Creates a new lead in Pipedrive CRM. A lead must be linked to a person or an organization."),
		mcp.WithString("title", mcp.Required(), mcp.Description("The title of the lead")),
		mcp.WithString("person_id", mcp.Description("Numeric ID of the linked person")),
		mcp.WithString("organization_id", mcp.Description("Numeric ID of the linked organization")),
		mcp.WithString("owner_id", mcp.Description("Numeric ID of the owning user")),
		mcp.WithString("amount", mcp.Description("Monetary value, numeric string")),
		mcp.WithString("currency", mcp.Description("3-letter ISO currency code, required with amount")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated lead label UUIDs")),
		mcp.WithString("expected_close_date", mcp.Description("YYYY-MM-DD")),
		mcp.WithString("visible_to", mcp.Description("1=owner, 3=owner's group, 5=owner's group+sub, 7=entire company")),
	), createLeadHandler(c))

	s.AddTool(mcp.NewTool("get_lead_from_pipedrive",
		mcp.WithDescription("Fetches one lead by its UUID."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("UUID of the lead")),
	), getLeadHandler(c))

	s.AddTool(mcp.NewTool("list_leads_from_pipedrive",
		mcp.WithDescription("Lists leads with optional filters and offset pagination."),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("start", mcp.Description("Offset of the first result (default 0)")),
		mcp.WithString("archived_status", mcp.Description("archived, not_archived, or all")),
		mcp.WithString("owner_id", mcp.Description("Only leads owned by this user")),
		mcp.WithString("person_id", mcp.Description("Only leads linked to this person")),
		mcp.WithString("organization_id", mcp.Description("Only leads linked to this organization")),
		mcp.WithString("filter_id", mcp.Description("Numeric ID of a saved filter")),
		mcp.WithString("sort", mcp.Description("Sort expression, e.g. 'add_time DESC'")),
	), listLeadsHandler(c))

	s.AddTool(mcp.NewTool("update_lead_in_pipedrive",
		mcp.WithDescription("Updates an existing lead. Only provided fields change."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("UUID of the lead")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("person_id", mcp.Description("Linked person")),
		mcp.WithString("organization_id", mcp.Description("Linked organization")),
		mcp.WithString("owner_id", mcp.Description("Owning user")),
		mcp.WithString("amount", mcp.Description("Monetary value, numeric string")),
		mcp.WithString("currency", mcp.Description("3-letter ISO currency code, required with amount")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated lead label UUIDs")),
		mcp.WithString("expected_close_date", mcp.Description("YYYY-MM-DD")),
		mcp.WithString("visible_to", mcp.Description("1, 3, 5, or 7")),
	), updateLeadHandler(c))

	s.AddTool(mcp.NewTool("delete_lead_from_pipedrive",
		mcp.WithDescription("Deletes a lead by its UUID."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("UUID of the lead")),
	), deleteLeadHandler(c))

	s.AddTool(mcp.NewTool("search_leads_in_pipedrive",
		mcp.WithDescription("Searches leads by term across title, notes, and custom fields."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Search term, at least 2 characters (1 if exact_match)")),
		mcp.WithString("fields", mcp.Description("Comma-separated fields to search in")),
		mcp.WithString("exact_match", mcp.Description("'true' for exact matching")),
		mcp.WithString("person_id", mcp.Description("Restrict to leads of this person")),
		mcp.WithString("organization_id", mcp.Description("Restrict to leads of this organization")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
	), searchLeadsHandler(c))

	s.AddTool(mcp.NewTool("get_lead_labels_from_pipedrive",
		mcp.WithDescription("Lists all lead labels."),
	), leadLabelsHandler(c))

	s.AddTool(mcp.NewTool("get_lead_sources_from_pipedrive",
		mcp.WithDescription("Lists all lead sources."),
	), leadSourcesHandler(c))
}

func leadInputFromRequest(req mcp.CallToolRequest) (*pipedrive.LeadInput, error) {
	in := &pipedrive.LeadInput{
		Title: argOptionalString(req, "title"),
	}
	var err error
	if in.PersonID, err = argID(req, "person_id"); err != nil {
		return nil, err
	}
	if in.OrganizationID, err = argID(req, "organization_id"); err != nil {
		return nil, err
	}
	if in.OwnerID, err = argID(req, "owner_id"); err != nil {
		return nil, err
	}
	amount, err := argFloat(req, "amount")
	if err != nil {
		return nil, err
	}
	currency := argString(req, "currency")
	if amount != nil {
		if currency == "" {
			return nil, fmt.Errorf("currency is required when amount is provided. Example: 'USD'")
		}
		in.Value = &pipedrive.LeadValue{Amount: *amount, Currency: currency}
	} else if currency != "" {
		return nil, fmt.Errorf("amount is required when currency is provided. Example: '1000'")
	}
	if in.LabelIDs, err = argUUIDList(req, "label_ids"); err != nil {
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
	return in, nil
}

func requiredLeadID(req mcp.CallToolRequest) (string, error) {
	id, err := conversion.UUIDString(argString(req, "lead_id"), "lead_id")
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("lead_id is required. Example: '123e4567-e89b-12d3-a456-426614174000'")
	}
	return id, nil
}

func createLeadHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, err := leadInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Leads.Create(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func getLeadHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requiredLeadID(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Leads.Get(ctx, id)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func listLeadsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.LeadListOptions{
			Limit:          limit,
			ArchivedStatus: argString(req, "archived_status"),
			Sort:           argString(req, "sort"),
		}
		if start, err := argInt(req, "start"); err != nil {
			return errorResult(err), nil
		} else if start != nil {
			opts.Start = *start
		}
		if opts.OwnerID, err = argID(req, "owner_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.PersonID, err = argID(req, "person_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.OrgID, err = argID(req, "organization_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.FilterID, err = argID(req, "filter_id"); err != nil {
			return errorResult(err), nil
		}
		items, err := c.Leads.List(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("leads", items, "")), nil
	}
}

func updateLeadHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requiredLeadID(req)
		if err != nil {
			return errorResult(err), nil
		}
		in, err := leadInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Leads.Update(ctx, id, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func deleteLeadHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requiredLeadID(req)
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := c.Leads.Delete(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"id": id, "deleted": true}), nil
	}
}

func searchLeadsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		exact, err := argBool(req, "exact_match")
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.LeadSearchOptions{
			Term:          argString(req, "term"),
			Fields:        conversion.SplitList(argString(req, "fields")),
			ExactMatch:    exact != nil && *exact,
			IncludeFields: conversion.SplitList(argString(req, "include_fields")),
			Limit:         limit,
			Cursor:        argString(req, "cursor"),
		}
		if opts.PersonID, err = argID(req, "person_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.OrganizationID, err = argID(req, "organization_id"); err != nil {
			return errorResult(err), nil
		}
		items, cursor, err := c.Leads.Search(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("items", items, cursor)), nil
	}
}

func leadLabelsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		labels, err := c.Leads.Labels(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("labels", labels, "")), nil
	}
}

func leadSourcesHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sources, err := c.Leads.Sources(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("sources", sources, "")), nil
	}
}
