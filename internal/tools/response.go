// Package tools exposes the Pipedrive operations as MCP tools. Every tool
// takes string (or boolean) arguments, runs them through the conversion
// helpers, calls the client, and answers with a JSON envelope
// {"success": bool, "data": ..., "error": ...} rendered as text content.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func successResult(data any) *mcp.CallToolResult {
	return renderEnvelope(envelope{Success: true, Data: data})
}

func errorResult(err error) *mcp.CallToolResult {
	return errorResultMsg(err.Error())
}

func errorResultMsg(msg string) *mcp.CallToolResult {
	return renderEnvelope(envelope{Success: false, Error: &msg})
}

func renderEnvelope(env envelope) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		// The envelope is built from already-decoded JSON values; this is
		// unreachable in practice but must not panic a handler.
		return mcp.NewToolResultText(fmt.Sprintf(`{"success": false, "data": null, "error": "encoding response: %v"}`, err))
	}
	return mcp.NewToolResultText(string(raw))
}

// listPage is the data payload of paginated list/search tools.
func listPage(key string, items []any, cursor string) map[string]any {
	if items == nil {
		items = []any{}
	}
	page := map[string]any{key: items, "count": len(items)}
	if cursor != "" {
		page["next_cursor"] = cursor
	}
	return page
}
