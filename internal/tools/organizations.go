package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/conversion"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

func registerOrganizationTools(s *server.MCPServer, c *pipedrive.Client) {
	s.AddTool(mcp.NewTool("create_organization_in_pipedrive",
		mcp.WithDescription("Creates a new organization in Pipedrive CRM."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the organization")),
		mcp.WithString("owner_id", mcp.Description("Numeric ID of the owning user")),
		mcp.WithString("address", mcp.Description("Address string or address JSON object")),
		mcp.WithString("visible_to", mcp.Description("1=owner, 2=owner's group, 3=entire company, 4=shared")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated numeric label IDs")),
	), createOrganizationHandler(c))

	s.AddTool(mcp.NewTool("get_organization_from_pipedrive",
		mcp.WithDescription("Fetches one organization by its numeric ID."),
		mcp.WithString("org_id", mcp.Required(), mcp.Description("Numeric ID of the organization")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
	), getOrganizationHandler(c))

	s.AddTool(mcp.NewTool("list_organizations_from_pipedrive",
		mcp.WithDescription("Lists organizations with optional filters and cursor pagination."),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
		mcp.WithString("filter_id", mcp.Description("Numeric ID of a saved filter")),
		mcp.WithString("owner_id", mcp.Description("Only organizations owned by this user")),
		mcp.WithString("updated_since", mcp.Description("RFC3339 lower bound on update time")),
		mcp.WithString("updated_until", mcp.Description("RFC3339 upper bound on update time")),
		mcp.WithString("sort_by", mcp.Description("Field to sort by")),
		mcp.WithString("sort_direction", mcp.Description("asc or desc")),
	), listOrganizationsHandler(c))

	s.AddTool(mcp.NewTool("update_organization_in_pipedrive",
		mcp.WithDescription("Updates an existing organization. Only provided fields change."),
		mcp.WithString("org_id", mcp.Required(), mcp.Description("Numeric ID of the organization")),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("owner_id", mcp.Description("Owning user")),
		mcp.WithString("address", mcp.Description("Address string or address JSON object")),
		mcp.WithString("visible_to", mcp.Description("1, 2, 3, or 4")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated numeric label IDs")),
	), updateOrganizationHandler(c))

	s.AddTool(mcp.NewTool("delete_organization_from_pipedrive",
		mcp.WithDescription("Deletes an organization by its numeric ID."),
		mcp.WithString("org_id", mcp.Required(), mcp.Description("Numeric ID of the organization")),
	), deleteOrganizationHandler(c))

	s.AddTool(mcp.NewTool("search_organizations_in_pipedrive",
		mcp.WithDescription("Searches organizations by term across name, address, and custom fields."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Search term, at least 2 characters (1 if exact_match)")),
		mcp.WithString("fields", mcp.Description("Comma-separated fields to search in")),
		mcp.WithString("exact_match", mcp.Description("'true' for exact matching")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
	), searchOrganizationsHandler(c))

	s.AddTool(mcp.NewTool("add_follower_to_organization_in_pipedrive",
		mcp.WithDescription("Adds a user as a follower of an organization."),
		mcp.WithString("org_id", mcp.Required(), mcp.Description("Numeric ID of the organization")),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Numeric ID of the user to add")),
	), addFollowerHandler(c))

	s.AddTool(mcp.NewTool("delete_follower_from_organization_in_pipedrive",
		mcp.WithDescription("Removes a follower from an organization."),
		mcp.WithString("org_id", mcp.Required(), mcp.Description("Numeric ID of the organization")),
		mcp.WithString("follower_id", mcp.Required(), mcp.Description("Numeric ID of the follower record")),
	), deleteFollowerHandler(c))
}

func organizationInputFromRequest(req mcp.CallToolRequest) (*pipedrive.OrganizationInput, error) {
	in := &pipedrive.OrganizationInput{
		Name: argOptionalString(req, "name"),
	}
	var err error
	if in.OwnerID, err = argID(req, "owner_id"); err != nil {
		return nil, err
	}
	if rawAddress, err := argJSON(req, "address"); err != nil {
		return nil, err
	} else if rawAddress != nil {
		if in.Address, err = conversion.LocationData(rawAddress, "address"); err != nil {
			return nil, err
		}
	}
	if in.VisibleTo, err = argInt(req, "visible_to"); err != nil {
		return nil, err
	}
	if in.LabelIDs, err = argIDList(req, "label_ids"); err != nil {
		return nil, err
	}
	return in, nil
}

func createOrganizationHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, err := organizationInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Organizations.Create(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func getOrganizationHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "org_id")
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Organizations.Get(ctx, id, conversion.SplitList(argString(req, "include_fields")))
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func listOrganizationsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.OrganizationListOptions{
			Limit:         limit,
			Cursor:        argString(req, "cursor"),
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
		items, cursor, err := c.Organizations.List(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("organizations", items, cursor)), nil
	}
}

func updateOrganizationHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "org_id")
		if err != nil {
			return errorResult(err), nil
		}
		in, err := organizationInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Organizations.Update(ctx, id, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func deleteOrganizationHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "org_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := c.Organizations.Delete(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"id": id, "deleted": true}), nil
	}
}

func searchOrganizationsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		exact, err := argBool(req, "exact_match")
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.OrganizationSearchOptions{
			Term:          argString(req, "term"),
			Fields:        conversion.SplitList(argString(req, "fields")),
			ExactMatch:    exact != nil && *exact,
			IncludeFields: conversion.SplitList(argString(req, "include_fields")),
			Limit:         limit,
			Cursor:        argString(req, "cursor"),
		}
		items, cursor, err := c.Organizations.Search(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("items", items, cursor)), nil
	}
}

func addFollowerHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orgID, err := argRequiredID(req, "org_id")
		if err != nil {
			return errorResult(err), nil
		}
		userID, err := argRequiredID(req, "user_id")
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Organizations.AddFollower(ctx, orgID, userID)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func deleteFollowerHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orgID, err := argRequiredID(req, "org_id")
		if err != nil {
			return errorResult(err), nil
		}
		followerID, err := argRequiredID(req, "follower_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := c.Organizations.DeleteFollower(ctx, orgID, followerID); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"org_id": orgID, "follower_id": followerID, "deleted": true}), nil
	}
}
