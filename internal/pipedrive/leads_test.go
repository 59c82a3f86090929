package pipedrive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadCreateRequiresLink(t *testing.T) {
	client, _ := testClient(t)
	_, err := client.Leads.Create(context.Background(), &LeadInput{Title: String("New lead")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "person_id or an organization_id")
}

func TestLeadCreateRequiresTitle(t *testing.T) {
	client, _ := testClient(t)
	_, err := client.Leads.Create(context.Background(), &LeadInput{PersonID: Int(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestLeadCreateUsesV1AndNestedValue(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleData("POST /v1/leads", map[string]any{"id": "adf21080-0e10-11eb-879b-05d71fb426ec"})

	got, err := client.Leads.Create(context.Background(), &LeadInput{
		Title:    String("Website inquiry"),
		PersonID: Int(5),
		Value:    &LeadValue{Amount: 999, Currency: "usd"},
	})
	require.NoError(t, err)
	assert.Equal(t, "adf21080-0e10-11eb-879b-05d71fb426ec", got["id"])

	req := fake.LastRequest(t)
	assert.Equal(t, "/v1/leads", req.Path)
	value, ok := req.Body["value"].(map[string]any)
	require.True(t, ok, "value must be a nested object")
	assert.Equal(t, float64(999), value["amount"])
	assert.Equal(t, "USD", value["currency"])
}

func TestLeadInputValidate(t *testing.T) {
	t.Run("negative amount", func(t *testing.T) {
		in := LeadInput{Value: &LeadValue{Amount: -10, Currency: "USD"}}
		assert.ErrorContains(t, in.Validate(), "negative")
	})
	t.Run("bad currency", func(t *testing.T) {
		in := LeadInput{Value: &LeadValue{Amount: 10, Currency: "US"}}
		assert.ErrorContains(t, in.Validate(), "currency")
	})
	t.Run("visible_to", func(t *testing.T) {
		in := LeadInput{VisibleTo: Int(2)}
		assert.ErrorContains(t, in.Validate(), "visible_to")
		in = LeadInput{VisibleTo: Int(5)}
		assert.NoError(t, in.Validate())
	})
}

func TestLeadListArchivedStatus(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleData("GET /v1/leads", []any{})

	_, err := client.Leads.List(context.Background(), LeadListOptions{Limit: 100, ArchivedStatus: "sometimes"})
	assert.ErrorContains(t, err, "archived_status")

	_, err = client.Leads.List(context.Background(), LeadListOptions{Limit: 100, ArchivedStatus: "not_archived"})
	require.NoError(t, err)
	assert.Equal(t, "not_archived", fake.LastRequest(t).Query.Get("archived_status"))
}

func TestLeadSearchUsesV2(t *testing.T) {
	client, fake := testClient(t)
	fake.Handle("GET /api/v2/leads/search", 200, map[string]any{
		"success": true,
		"data":    map[string]any{"items": []any{}},
	})

	_, _, err := client.Leads.Search(context.Background(), LeadSearchOptions{Term: "acme", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/leads/search", fake.LastRequest(t).Path)
}

func TestLeadLabelsAndSources(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleData("GET /v1/leadLabels", []any{map[string]any{"name": "Hot"}})
	fake.HandleData("GET /v1/leadSources", []any{map[string]any{"name": "API"}})

	labels, err := client.Leads.Labels(context.Background())
	require.NoError(t, err)
	assert.Len(t, labels, 1)

	sources, err := client.Leads.Sources(context.Background())
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}
