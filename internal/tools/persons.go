package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/conversion"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

func registerPersonTools(s *server.MCPServer, c *pipedrive.Client) {
	s.AddTool(mcp.NewTool("create_person_in_pipedrive",
		mcp.WithDescription("Creates a new person (contact) in Pipedrive CRM."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Full name of the person")),
		mcp.WithString("owner_id", mcp.Description("Numeric ID of the owning user")),
		mcp.WithString("org_id", mcp.Description("Numeric ID of the linked organization")),
		mcp.WithString("email", mcp.Description("Primary email address")),
		mcp.WithString("email_label", mcp.Description("Label for the email, e.g. 'work' (default)")),
		mcp.WithString("phone", mcp.Description("Primary phone number")),
		mcp.WithString("phone_label", mcp.Description("Label for the phone, e.g. 'work' (default)")),
		mcp.WithString("visible_to", mcp.Description("1=owner, 2=owner's group, 3=entire company")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated numeric label IDs")),
	), createPersonHandler(c))

	s.AddTool(mcp.NewTool("get_person_from_pipedrive",
		mcp.WithDescription("Fetches one person by their numeric ID."),
		mcp.WithString("person_id", mcp.Required(), mcp.Description("Numeric ID of the person")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
	), getPersonHandler(c))

	s.AddTool(mcp.NewTool("list_persons_from_pipedrive",
		mcp.WithDescription("Lists persons with optional filters and cursor pagination."),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
		mcp.WithString("filter_id", mcp.Description("Numeric ID of a saved filter")),
		mcp.WithString("owner_id", mcp.Description("Only persons owned by this user")),
		mcp.WithString("org_id", mcp.Description("Only persons in this organization")),
		mcp.WithString("updated_since", mcp.Description("RFC3339 lower bound on update time")),
		mcp.WithString("updated_until", mcp.Description("RFC3339 upper bound on update time")),
		mcp.WithString("sort_by", mcp.Description("Field to sort by")),
		mcp.WithString("sort_direction", mcp.Description("asc or desc")),
	), listPersonsHandler(c))

	s.AddTool(mcp.NewTool("update_person_in_pipedrive",
		mcp.WithDescription("Updates an existing person. Only provided fields change."),
		mcp.WithString("person_id", mcp.Required(), mcp.Description("Numeric ID of the person")),
		mcp.WithString("name", mcp.Description("New name")),
		mcp.WithString("owner_id", mcp.Description("Owning user")),
		mcp.WithString("org_id", mcp.Description("Linked organization")),
		mcp.WithString("email", mcp.Description("Replacement primary email address")),
		mcp.WithString("email_label", mcp.Description("Label for the email")),
		mcp.WithString("phone", mcp.Description("Replacement primary phone number")),
		mcp.WithString("phone_label", mcp.Description("Label for the phone")),
		mcp.WithString("visible_to", mcp.Description("1, 2, or 3")),
		mcp.WithString("label_ids", mcp.Description("Comma-separated numeric label IDs")),
	), updatePersonHandler(c))

	s.AddTool(mcp.NewTool("delete_person_from_pipedrive",
		mcp.WithDescription("Deletes a person by their numeric ID."),
		mcp.WithString("person_id", mcp.Required(), mcp.Description("Numeric ID of the person")),
	), deletePersonHandler(c))

	s.AddTool(mcp.NewTool("search_persons_in_pipedrive",
		mcp.WithDescription("Searches persons by term across name, email, phone, and custom fields."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Search term, at least 2 characters (1 if exact_match)")),
		mcp.WithString("fields", mcp.Description("Comma-separated fields to search in")),
		mcp.WithString("exact_match", mcp.Description("'true' for exact matching")),
		mcp.WithString("organization_id", mcp.Description("Restrict to persons of this organization")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
	), searchPersonsHandler(c))
}

func personInputFromRequest(req mcp.CallToolRequest) (*pipedrive.PersonInput, error) {
	in := &pipedrive.PersonInput{
		Name: argOptionalString(req, "name"),
	}
	var err error
	if in.OwnerID, err = argID(req, "owner_id"); err != nil {
		return nil, err
	}
	if in.OrgID, err = argID(req, "org_id"); err != nil {
		return nil, err
	}
	if email := argString(req, "email"); email != "" {
		label := argString(req, "email_label")
		if label == "" {
			label = "work"
		}
		in.Emails = []pipedrive.ContactInfo{{Value: email, Label: label, Primary: true}}
	}
	if phone := argString(req, "phone"); phone != "" {
		label := argString(req, "phone_label")
		if label == "" {
			label = "work"
		}
		in.Phones = []pipedrive.ContactInfo{{Value: phone, Label: label, Primary: true}}
	}
	if in.VisibleTo, err = argInt(req, "visible_to"); err != nil {
		return nil, err
	}
	if in.LabelIDs, err = argIDList(req, "label_ids"); err != nil {
		return nil, err
	}
	return in, nil
}

func createPersonHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, err := personInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Persons.Create(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func getPersonHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "person_id")
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Persons.Get(ctx, id, conversion.SplitList(argString(req, "include_fields")))
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func listPersonsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.PersonListOptions{
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
		if opts.OrgID, err = argID(req, "org_id"); err != nil {
			return errorResult(err), nil
		}
		items, cursor, err := c.Persons.List(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("persons", items, cursor)), nil
	}
}

func updatePersonHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "person_id")
		if err != nil {
			return errorResult(err), nil
		}
		in, err := personInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Persons.Update(ctx, id, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func deletePersonHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "person_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := c.Persons.Delete(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"id": id, "deleted": true}), nil
	}
}

func searchPersonsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		exact, err := argBool(req, "exact_match")
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.PersonSearchOptions{
			Term:          argString(req, "term"),
			Fields:        conversion.SplitList(argString(req, "fields")),
			ExactMatch:    exact != nil && *exact,
			IncludeFields: conversion.SplitList(argString(req, "include_fields")),
			Limit:         limit,
			Cursor:        argString(req, "cursor"),
		}
		if opts.OrganizationID, err = argID(req, "organization_id"); err != nil {
			return errorResult(err), nil
		}
		items, cursor, err := c.Persons.Search(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("items", items, cursor)), nil
	}
}
