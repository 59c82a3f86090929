package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/crmhub/pipedrive-mcp/internal/conversion"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// argString returns the trimmed string argument, "" when absent.
func argString(req mcp.CallToolRequest, key string) string {
	return conversion.SanitizeString(req.GetString(key, ""))
}

// argLimit parses the "limit" argument. Absent or non-positive values fall
// back to the default; values over the API maximum clamp to it.
func argLimit(req mcp.CallToolRequest) (int, error) {
	raw := argString(req, "limit")
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be a numeric string. Example: '100'")
	}
	if n < 1 {
		return defaultListLimit, nil
	}
	if n > maxListLimit {
		return maxListLimit, nil
	}
	return n, nil
}

// argID parses an optional numeric-ID string argument.
func argID(req mcp.CallToolRequest, key string) (*int, error) {
	return conversion.IDString(argString(req, key), key)
}

// argRequiredID parses a required numeric-ID string argument.
func argRequiredID(req mcp.CallToolRequest, key string) (int, error) {
	id, err := conversion.IDString(argString(req, key), key)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("%s is required. Example: '123'", key)
	}
	return *id, nil
}

// argBool reads an optional boolean argument, distinguishing omitted from
// false. String renditions ("true"/"false") are accepted too.
func argBool(req mcp.CallToolRequest, key string) (*bool, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case bool:
		return pipedrive.Bool(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseBool(strings.ToLower(trimmed))
		if err != nil {
			return nil, fmt.Errorf("%s must be 'true' or 'false'", key)
		}
		return pipedrive.Bool(parsed), nil
	default:
		return nil, fmt.Errorf("%s must be a boolean", key)
	}
}

// argOptionalString returns a pointer only when the argument is non-blank.
func argOptionalString(req mcp.CallToolRequest, key string) *string {
	if v := argString(req, key); v != "" {
		return pipedrive.String(v)
	}
	return nil
}

// argFloat parses an optional numeric string argument.
func argFloat(req mcp.CallToolRequest, key string) (*float64, error) {
	raw := argString(req, key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a numeric string. Example: '1500.50'", key)
	}
	return pipedrive.Float(f), nil
}

// argInt parses an optional integer string argument (no positivity rule,
// unlike argID).
func argInt(req mcp.CallToolRequest, key string) (*int, error) {
	raw := argString(req, key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a numeric string. Example: '3'", key)
	}
	return pipedrive.Int(n), nil
}

// argJSON decodes an argument that may arrive either as structured JSON or
// as a JSON-encoded string.
func argJSON(req mcp.CallToolRequest, key string) (any, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if s, isString := raw.(string); isString {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return nil, nil
		}
		if trimmed[0] == '{' || trimmed[0] == '[' {
			var decoded any
			if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
				return nil, fmt.Errorf("%s is not valid JSON: %v", key, err)
			}
			return decoded, nil
		}
		return trimmed, nil
	}
	return raw, nil
}

// argIDList parses a comma-separated list of positive-integer IDs.
func argIDList(req mcp.CallToolRequest, key string) ([]int, error) {
	items := conversion.SplitList(argString(req, key))
	if items == nil {
		return nil, nil
	}
	ids := make([]int, 0, len(items))
	for _, item := range items {
		id, err := conversion.IDString(item, key)
		if err != nil {
			return nil, err
		}
		ids = append(ids, *id)
	}
	return ids, nil
}

// argUUIDList parses a comma-separated list of UUIDs.
func argUUIDList(req mcp.CallToolRequest, key string) ([]string, error) {
	items := conversion.SplitList(argString(req, key))
	if items == nil {
		return nil, nil
	}
	uuids := make([]string, 0, len(items))
	for _, item := range items {
		u, err := conversion.UUIDString(item, key)
		if err != nil {
			return nil, err
		}
		uuids = append(uuids, u)
	}
	return uuids, nil
}
