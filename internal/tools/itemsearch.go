package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/conversion"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

func registerItemSearchTools(s *server.MCPServer, c *pipedrive.Client) {
	s.AddTool(mcp.NewTool("search_items_in_pipedrive",
		mcp.WithDescription("Searches across deals, persons, organizations, leads, products, files, and projects."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Search term, at least 2 characters (1 if exact_match)")),
		mcp.WithString("item_types", mcp.Description("Comma-separated entity types to search, e.g. 'deal,person'")),
		mcp.WithString("fields", mcp.Description("Comma-separated fields to search in")),
		mcp.WithString("search_for_related_items", mcp.Description("'true' to include related items in the results")),
		mcp.WithString("exact_match", mcp.Description("'true' for exact matching")),
		mcp.WithString("include_fields", mcp.Description("Comma-separated extra fields to include")),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
	), searchItemsHandler(c))

	s.AddTool(mcp.NewTool("search_item_field_in_pipedrive",
		mcp.WithDescription("Searches the values of a single field of one entity type."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Search term, at least 2 characters")),
		mcp.WithString("entity_type", mcp.Required(), mcp.Description("deal, person, organization, product, lead, or project")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field key to search, e.g. 'title'")),
		mcp.WithString("match", mcp.Description("exact (default), beginning, or middle")),
		mcp.WithString("limit", mcp.Description("Page size, 1-500 (default 100)")),
		mcp.WithString("cursor", mcp.Description("Opaque cursor from a previous page")),
	), searchItemFieldHandler(c))
}

func searchItemsHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		exact, err := argBool(req, "exact_match")
		if err != nil {
			return errorResult(err), nil
		}
		related, err := argBool(req, "search_for_related_items")
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.ItemSearchOptions{
			Term:                  argString(req, "term"),
			ItemTypes:             conversion.SplitList(argString(req, "item_types")),
			Fields:                conversion.SplitList(argString(req, "fields")),
			SearchForRelatedItems: related != nil && *related,
			ExactMatch:            exact != nil && *exact,
			IncludeFields:         conversion.SplitList(argString(req, "include_fields")),
			Limit:                 limit,
			Cursor:                argString(req, "cursor"),
		}
		results, err := c.ItemSearch.Search(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(results), nil
	}
}

func searchItemFieldHandler(c *pipedrive.Client) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit, err := argLimit(req)
		if err != nil {
			return errorResult(err), nil
		}
		opts := pipedrive.FieldSearchOptions{
			Term:       argString(req, "term"),
			EntityType: argString(req, "entity_type"),
			Field:      argString(req, "field"),
			Match:      argString(req, "match"),
			Limit:      limit,
			Cursor:     argString(req, "cursor"),
		}
		items, cursor, err := c.ItemSearch.SearchField(ctx, opts)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(listPage("items", items, cursor)), nil
	}
}
