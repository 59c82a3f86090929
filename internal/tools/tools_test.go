package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrivetest"
)

func toolClient(t *testing.T) (*pipedrive.Client, *pipedrivetest.Server) {
	t.Helper()
	fake := pipedrivetest.New(t)
	client, err := pipedrive.New("token123456", "testco", pipedrive.WithHTTPClient(fake.HTTPClient()))
	require.NoError(t, err)
	return client, fake
}

// decodeEnvelope parses the JSON text content of a tool result.
func decodeEnvelope(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool results must be text content")
	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &env))
	return env
}

// ---------------------------------------------------------------------------
// Envelope shape
// ---------------------------------------------------------------------------

func TestEnvelopeShape(t *testing.T) {
	env := decodeEnvelope(t, successResult(map[string]any{"id": 1}))
	assert.Equal(t, true, env["success"])
	assert.NotNil(t, env["data"])
	assert.Nil(t, env["error"])

	env = decodeEnvelope(t, errorResultMsg("boom"))
	assert.Equal(t, false, env["success"])
	assert.Nil(t, env["data"])
	assert.Equal(t, "boom", env["error"])
}

// ---------------------------------------------------------------------------
// Activity tools end to end against the fake API
// ---------------------------------------------------------------------------

func TestCreateActivityNormalizesTimes(t *testing.T) {
	client, fake := toolClient(t)
	fake.HandleData("POST /api/v2/activities", map[string]any{"id": 1})

	res, err := createActivityHandler(client)(context.Background(), callReq(map[string]any{
		"subject":  "Call Ada",
		"type":     "call",
		"due_time": "14:30:00",
		"duration": "5400",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	require.Equal(t, true, env["success"], "envelope: %v", env)

	sent := fake.LastRequest(t)
	assert.Equal(t, "14:30", sent.Body["due_time"], "seconds must be truncated")
	assert.Equal(t, "01:30", sent.Body["duration"], "seconds must convert to HH:MM")
}

func TestCreateActivityValidationFailureIsEnvelope(t *testing.T) {
	client, _ := toolClient(t)

	res, err := createActivityHandler(client)(context.Background(), callReq(map[string]any{
		"subject":  "Call Ada",
		"type":     "call",
		"due_time": "afternoon",
	}))
	require.NoError(t, err, "validation failures must not become protocol errors")
	env := decodeEnvelope(t, res)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["error"], "due_time")
}

func TestListActivitiesClampsLimit(t *testing.T) {
	client, fake := toolClient(t)
	fake.HandlePage("GET /api/v2/activities", []any{}, "")

	res, err := listActivitiesHandler(client)(context.Background(), callReq(map[string]any{
		"limit": "9999",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	require.Equal(t, true, env["success"], "envelope: %v", env)

	assert.Equal(t, "500", fake.LastRequest(t).Query.Get("limit"))
}

func TestDeleteActivityAPIFailure(t *testing.T) {
	client, fake := toolClient(t)
	fake.HandleError("DELETE /api/v2/activities/9", 404, "Activity not found", "")

	res, err := deleteActivityHandler(client)(context.Background(), callReq(map[string]any{
		"activity_id": "9",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["error"], "Activity not found")
}

func TestCreateActivityParticipantsFromJSONString(t *testing.T) {
	client, fake := toolClient(t)
	fake.HandleData("POST /api/v2/activities", map[string]any{"id": 2})

	res, err := createActivityHandler(client)(context.Background(), callReq(map[string]any{
		"subject":      "Demo",
		"type":         "meeting",
		"participants": `[{"person_id": "123", "primary_flag": true}]`,
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	require.Equal(t, true, env["success"], "envelope: %v", env)

	participants, ok := fake.LastRequest(t).Body["participants"].([]any)
	require.True(t, ok)
	first := participants[0].(map[string]any)
	assert.Equal(t, float64(123), first["person_id"], "numeric-string person_id converted to integer")
}

// ---------------------------------------------------------------------------
// Deal tools
// ---------------------------------------------------------------------------

func TestCreateDealLostReasonRule(t *testing.T) {
	client, _ := toolClient(t)

	res, err := createDealHandler(client)(context.Background(), callReq(map[string]any{
		"title":       "Doomed deal",
		"lost_reason": "price",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["error"], "lost_reason")
}

func TestSearchDealsExactMatchSingleChar(t *testing.T) {
	client, fake := toolClient(t)
	fake.Handle("GET /api/v2/deals/search", 200, map[string]any{
		"success": true,
		"data":    map[string]any{"items": []any{}},
	})

	res, err := searchDealsHandler(client)(context.Background(), callReq(map[string]any{
		"term":        "x",
		"exact_match": "true",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	assert.Equal(t, true, env["success"], "envelope: %v", env)
	assert.Equal(t, "true", fake.LastRequest(t).Query.Get("exact_match"))
}

// ---------------------------------------------------------------------------
// Lead tools
// ---------------------------------------------------------------------------

func TestCreateLeadAmountRequiresCurrency(t *testing.T) {
	client, _ := toolClient(t)

	res, err := createLeadHandler(client)(context.Background(), callReq(map[string]any{
		"title":     "New lead",
		"person_id": "5",
		"amount":    "1000",
		"currency":  "",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["error"], "currency is required")
}

func TestGetLeadRejectsBadUUID(t *testing.T) {
	client, _ := toolClient(t)

	res, err := getLeadHandler(client)(context.Background(), callReq(map[string]any{
		"lead_id": "not-a-uuid",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["error"], "UUID")
}

// ---------------------------------------------------------------------------
// Person tools
// ---------------------------------------------------------------------------

func TestCreatePersonBuildsContacts(t *testing.T) {
	client, fake := toolClient(t)
	fake.HandleData("POST /api/v2/persons", map[string]any{"id": 3})

	res, err := createPersonHandler(client)(context.Background(), callReq(map[string]any{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
		"phone": "+372 555 0100",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	require.Equal(t, true, env["success"], "envelope: %v", env)

	body := fake.LastRequest(t).Body
	emails := body["emails"].([]any)
	email := emails[0].(map[string]any)
	assert.Equal(t, "ada@example.com", email["value"])
	assert.Equal(t, "work", email["label"])
	assert.Equal(t, true, email["primary"])
}

// ---------------------------------------------------------------------------
// Item search tools
// ---------------------------------------------------------------------------

func TestSearchItemsReportsCounts(t *testing.T) {
	client, fake := toolClient(t)
	fake.Handle("GET /api/v2/itemSearch", 200, map[string]any{
		"success": true,
		"data": map[string]any{
			"items": []any{
				map[string]any{"item": map[string]any{"id": 1, "type": "deal"}},
				map[string]any{"item": map[string]any{"id": 2, "type": "person"}},
			},
		},
	})

	res, err := searchItemsHandler(client)(context.Background(), callReq(map[string]any{
		"term": "acme",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	require.Equal(t, true, env["success"], "envelope: %v", env)

	data := env["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total_count"])
	assert.Equal(t, float64(1), data["deal_count"])
	assert.Equal(t, float64(1), data["person_count"])
}

func TestGetDealProductsPage(t *testing.T) {
	client, fake := toolClient(t)
	fake.HandlePage("GET /api/v2/deals/7/products",
		[]any{map[string]any{"id": 1, "product_id": 9}}, "cur-2")

	res, err := getDealProductsHandler(client)(context.Background(), callReq(map[string]any{
		"deal_id": "7",
	}))
	require.NoError(t, err)
	env := decodeEnvelope(t, res)
	require.Equal(t, true, env["success"], "envelope: %v", env)

	data := env["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
	assert.Equal(t, "cur-2", data["next_cursor"])
	assert.Equal(t, "100", fake.LastRequest(t).Query.Get("limit"))
}
