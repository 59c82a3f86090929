package tools

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// ---------------------------------------------------------------------------
// Limit parsing and clamping
// ---------------------------------------------------------------------------

func TestArgLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   any
		want    int
		wantErr bool
	}{
		{"absent defaults", nil, 100, false},
		{"blank defaults", "", 100, false},
		{"in range", "250", 250, false},
		{"zero falls back", "0", 100, false},
		{"negative falls back", "-5", 100, false},
		{"over max clamps", "9999", 500, false},
		{"exactly max", "500", 500, false},
		{"non-numeric errors", "many", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := map[string]any{}
			if tc.limit != nil {
				args["limit"] = tc.limit
			}
			got, err := argLimit(callReq(args))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Boolean arguments: omitted vs false
// ---------------------------------------------------------------------------

func TestArgBool(t *testing.T) {
	got, err := argBool(callReq(map[string]any{}), "busy")
	require.NoError(t, err)
	assert.Nil(t, got, "omitted bool must stay nil")

	got, err = argBool(callReq(map[string]any{"busy": "false"}), "busy")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, *got, "explicit false must be preserved, not treated as omitted")

	got, err = argBool(callReq(map[string]any{"busy": true}), "busy")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)

	got, err = argBool(callReq(map[string]any{"busy": "  "}), "busy")
	require.NoError(t, err)
	assert.Nil(t, got, "blank string reads as omitted")

	_, err = argBool(callReq(map[string]any{"busy": "maybe"}), "busy")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// ID arguments
// ---------------------------------------------------------------------------

func TestArgRequiredID(t *testing.T) {
	id, err := argRequiredID(callReq(map[string]any{"deal_id": "42"}), "deal_id")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = argRequiredID(callReq(map[string]any{}), "deal_id")
	assert.ErrorContains(t, err, "deal_id is required")

	_, err = argRequiredID(callReq(map[string]any{"deal_id": "abc"}), "deal_id")
	assert.ErrorContains(t, err, "deal_id")
}

func TestArgIDList(t *testing.T) {
	ids, err := argIDList(callReq(map[string]any{"label_ids": "1, 2, 3"}), "label_ids")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)

	ids, err = argIDList(callReq(map[string]any{}), "label_ids")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = argIDList(callReq(map[string]any{"label_ids": "1,x"}), "label_ids")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// JSON arguments
// ---------------------------------------------------------------------------

func TestArgJSON(t *testing.T) {
	got, err := argJSON(callReq(map[string]any{"location": `{"value": "HQ"}`}), "location")
	require.NoError(t, err)
	loc, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "HQ", loc["value"])

	got, err = argJSON(callReq(map[string]any{"location": "123 Main St"}), "location")
	require.NoError(t, err)
	assert.Equal(t, "123 Main St", got)

	got, err = argJSON(callReq(map[string]any{"participants": `[{"person_id": 1}]`}), "participants")
	require.NoError(t, err)
	_, ok = got.([]any)
	assert.True(t, ok)

	_, err = argJSON(callReq(map[string]any{"location": `{"value": `}), "location")
	assert.Error(t, err)

	got, err = argJSON(callReq(map[string]any{}), "location")
	require.NoError(t, err)
	assert.Nil(t, got)
}
