package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/conversion"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

func registerActivityTools(s *server.MCPServer, c *pipedrive.Client) {
	s.AddTool(mcp.NewTool("create_activity_in_pipedrive",
		mcp.WithDescription("Creates a new activity (call, meeting, task...) in Pipedrive CRM."),
		mcp.WithString("subject", mcp.Required(), mcp.Description("The subject of the activity")),
		mcp.WithString("type", mcp.Required(), mcp.Description("The activity type key, e.g. 'call' or 'meeting'")),
		mcp.WithString("owner_id", mcp.Description("Numeric ID of the owning user")),
		mcp.WithString("deal_id", mcp.Description("Numeric ID of a linked deal")),
		mcp.WithString("lead_id", mcp.Description("UUID of a linked lead")),
		mcp.WithString("org_id", mcp.Description("Numeric ID of a linked organization")),
		mcp.WithString("due_date", mcp.Description("Due date, YYYY-MM-DD")),
		mcp.WithString("due_time", mcp.Description("Due time: HH:MM, HH:MM:SS, or ISO datetime")),
		mcp.WithString("duration", mcp.Description("Duration: HH:MM, HH:MM:SS, or seconds")),
		mcp.WithString("busy", mcp.Description("'true' to block the calendar, 'false' for free")),
		mcp.WithString("done", mcp.Description("'true' to mark the activity as done")),
		mcp.WithString("note", mcp.Description("Note body (HTML allowed)")),
		mcp.WithString("location", mcp.Description("Address string or location JSON object")),
		mcp.WithString("public_description", mcp.Description("Public description of the activity")),
		mcp.WithString("priority", mcp.Description("Numeric priority")),
		mcp.WithString("participants", mcp.Description(`JSON array of participants, e.g. [{"person_id": 123, "primary_flag": true}]`)),
	), createActivityHandler(c))

	s.AddTool(mcp.NewTool("get_activity_from_pipedrive",
		mcp.WithDescription("Fetches one activity by its numeric ID."),
		mcp.WithString("activity_id", mcp.Required(), mcp.Description("Numeric ID of the activity")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
	), getActivityHandler(c))

	s.AddTool(mcp.NewTool("list_activities_from_pipedrive",
		mcp.WithDescription("Lists activities with optional filters and cursor pagination."),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
		mcp.WithString("filter_id", mcp.Description("Numeric ID of a saved filter")),
		mcp.WithString("owner_id", mcp.Description("Only activities owned by this user")),
		mcp.WithString("deal_id", mcp.Description("Only activities linked to this deal")),
		mcp.WithString("lead_id", mcp.Description("Only activities linked to this lead (UUID)")),
		mcp.WithString("person_id", mcp.Description("Only activities linked to this person")),
		mcp.WithString("org_id", mcp.Description("Only activities linked to this organization")),
		mcp.WithString("updated_since", mcp.Description("RFC3339 lower bound on update time")),
		mcp.WithString("updated_until", mcp.Description("RFC3339 upper bound on update time")),
		mcp.WithString("sort_by", mcp.Description("id, update_time, or add_time")),
		mcp.WithString("sort_direction", mcp.Description("asc or desc")),
	), listActivitiesHandler(c))

	s.AddTool(mcp.NewTool("update_activity_in_pipedrive",
		mcp.WithDescription("Updates an existing activity. Only provided fields change."),
		mcp.WithString("activity_id", mcp.Required(), mcp.Description("Numeric ID of the activity")),
		mcp.WithString("subject", mcp.Description("New subject")),
		mcp.WithString("type", mcp.Description("New activity type key")),
		mcp.WithString("owner_id", mcp.Description("New owner")),
		mcp.WithString("deal_id", mcp.Description("Linked deal")),
		mcp.WithString("lead_id", mcp.Description("Linked lead (UUID)")),
		mcp.WithString("org_id", mcp.Description("Linked organization")),
		mcp.WithString("due_date", mcp.Description("Due date, YYYY-MM-DD")),
		mcp.WithString("due_time", mcp.Description("Due time: HH:MM, HH:MM:SS, or ISO datetime")),
		mcp.WithString("duration", mcp.Description("Duration: HH:MM, HH:MM:SS, or seconds")),
		mcp.WithString("busy", mcp.Description("'true' or 'false'")),
		mcp.WithString("done", mcp.Description("'true' or 'false'")),
		mcp.WithString("note", mcp.Description("Note body")),
		mcp.WithString("location", mcp.Description("Address string or location JSON object")),
		mcp.WithString("public_description", mcp.Description("Public description")),
		mcp.WithString("priority", mcp.Description("Numeric priority")),
		mcp.WithString("participants", mcp.Description("JSON array of participants")),
	), updateActivityHandler(c))

	s.AddTool(mcp.NewTool("delete_activity_from_pipedrive",
		mcp.WithDescription("Deletes an activity by its numeric ID."),
		mcp.WithString("activity_id", mcp.Required(), mcp.Description("Numeric ID of the activity")),
	), deleteActivityHandler(c))

	s.AddTool(mcp.NewTool("get_activity_types_from_pipedrive",
		mcp.WithDescription("Lists all activity types configured in the company."),
	), activityTypesHandler(c))

	s.AddTool(mcp.NewTool("create_activity_type_in_pipedrive",
		mcp.WithDescription("Creates a new activity type."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name of the type")),
		mcp.WithString("icon_key", mcp.Required(), mcp.Description("Icon key, e.g. 'call', 'meeting', 'task'")),
		mcp.WithString("color", mcp.Description("Hex color without '#', e.g. 'FFFFFF'")),
		mcp.WithString("order_nr", mcp.Description("Ordering position")),
	), createActivityTypeHandler(c))
}

// activityInputFromRequest assembles the shared create/update payload.
func activityInputFromRequest(req mcp.CallToolRequest) (*pipedrive.ActivityInput, error) {
	in := &pipedrive.ActivityInput{
		Subject:           argOptionalString(req, "subject"),
		Type:              argOptionalString(req, "type"),
		Note:              argOptionalString(req, "note"),
		PublicDescription: argOptionalString(req, "public_description"),
	}
	var err error
	if in.OwnerID, err = argID(req, "owner_id"); err != nil {
		return nil, err
	}
	if in.DealID, err = argID(req, "deal_id"); err != nil {
		return nil, err
	}
	if in.OrgID, err = argID(req, "org_id"); err != nil {
		return nil, err
	}
	if leadID, err := conversion.UUIDString(argString(req, "lead_id"), "lead_id"); err != nil {
		return nil, err
	} else if leadID != "" {
		in.LeadID = pipedrive.String(leadID)
	}
	if dueDate, err := conversion.DateString(argString(req, "due_date"), "due_date"); err != nil {
		return nil, err
	} else if dueDate != "" {
		in.DueDate = pipedrive.String(dueDate)
	}
	if dueTime, err := conversion.APITimeFormat(argString(req, "due_time"), "due_time"); err != nil {
		return nil, err
	} else if dueTime != "" {
		in.DueTime = pipedrive.String(dueTime)
	}
	if duration, err := conversion.DurationFormat(argString(req, "duration"), "duration"); err != nil {
		return nil, err
	} else if duration != "" {
		in.Duration = pipedrive.String(duration)
	}
	if in.Busy, err = argBool(req, "busy"); err != nil {
		return nil, err
	}
	if in.Done, err = argBool(req, "done"); err != nil {
		return nil, err
	}
	if in.Priority, err = argInt(req, "priority"); err != nil {
		return nil, err
	}
	if rawLocation, err := argJSON(req, "location"); err != nil {
		return nil, err
	} else if rawLocation != nil {
		if in.Location, err = conversion.LocationData(rawLocation, "location"); err != nil {
			return nil, err
		}
	}
	if rawParticipants, err := argJSON(req, "participants"); err != nil {
		return nil, err
	} else if rawParticipants != nil {
		if in.Participants, err = conversion.Participants(rawParticipants, "participants"); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func createActivityHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in, err := activityInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Activities.Create(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func getActivityHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "activity_id")
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Activities.Get(ctx, id, conversion.SplitList(argString(req, "include_fields")))
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func listActivitiesHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.ActivityListOptions{
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
		if opts.DealID, err = argID(req, "deal_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.PersonID, err = argID(req, "person_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.OrgID, err = argID(req, "org_id"); err != nil {
			return errorResult(err), nil
		}
		if opts.LeadID, err = conversion.UUIDString(argString(req, "lead_id"), "lead_id"); err != nil {
			return errorResult(err), nil
		}
		items, cursor, err := c.Activities.List(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("activities", items, cursor)), nil
	}
}

func updateActivityHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "activity_id")
		if err != nil {
			return errorResult(err), nil
		}
		in, err := activityInputFromRequest(req)
		if err != nil {
			return errorResult(err), nil
		}
		data, err := c.Activities.Update(ctx, id, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}

func deleteActivityHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := argRequiredID(req, "activity_id")
		if err != nil {
			return errorResult(err), nil
		}
		if _, err := c.Activities.Delete(ctx, id); err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"id": id, "deleted": true}), nil
	}
}

func activityTypesHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		types, err := c.Activities.Types(ctx)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("activity_types", types, "")), nil
	}
}

func createActivityTypeHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := &pipedrive.ActivityTypeInput{
			Name:    argString(req, "name"),
			IconKey: argString(req, "icon_key"),
			Color:   argString(req, "color"),
		}
		orderNr, err := argInt(req, "order_nr")
		if err != nil {
			return errorResult(err), nil
		}
		in.OrderNr = orderNr
		data, err := c.Activities.CreateType(ctx, in)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(data), nil
	}
}
