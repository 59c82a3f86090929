package pipedrive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchItem(itemType string, id int) map[string]any {
	return map[string]any{
		"result_score": 0.5,
		"item":         map[string]any{"id": id, "type": itemType},
	}
}

func TestItemSearchTalliesPerType(t *testing.T) {
	client, fake := testClient(t)
	fake.Handle("GET /api/v2/itemSearch", 200, map[string]any{
		"success": true,
		"data": map[string]any{
			"items": []any{
				searchItem("deal", 1),
				searchItem("deal", 2),
				searchItem("person", 3),
				searchItem("lead", 4),
			},
		},
		"additional_data": map[string]any{"next_cursor": "abc"},
	})

	results, err := client.ItemSearch.Search(context.Background(), ItemSearchOptions{Term: "acme", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 4, results.TotalCount)
	assert.Equal(t, 2, results.DealCount)
	assert.Equal(t, 1, results.PersonCount)
	assert.Equal(t, 1, results.LeadCount)
	assert.Zero(t, results.OrganizationCount)
	assert.Equal(t, "abc", results.NextCursor)
}

func TestItemSearchEmptyResults(t *testing.T) {
	client, fake := testClient(t)
	fake.Handle("GET /api/v2/itemSearch", 200, map[string]any{
		"success": true,
		"data":    map[string]any{"items": []any{}},
	})

	results, err := client.ItemSearch.Search(context.Background(), ItemSearchOptions{Term: "zz", Limit: 100})
	require.NoError(t, err)
	assert.NotNil(t, results.Items)
	assert.Zero(t, results.TotalCount)
	assert.Empty(t, results.NextCursor)
}

func TestItemSearchRejectsBadType(t *testing.T) {
	client, _ := testClient(t)
	_, err := client.ItemSearch.Search(context.Background(), ItemSearchOptions{
		Term:      "acme",
		ItemTypes: []string{"deal", "invoice"},
		Limit:     100,
	})
	assert.ErrorContains(t, err, "invalid item type")
}

func TestItemSearchSendsItemTypes(t *testing.T) {
	client, fake := testClient(t)
	fake.Handle("GET /api/v2/itemSearch", 200, map[string]any{
		"success": true,
		"data":    map[string]any{"items": []any{}},
	})

	_, err := client.ItemSearch.Search(context.Background(), ItemSearchOptions{
		Term:       "acme",
		ItemTypes:  []string{"deal", "person"},
		ExactMatch: true,
		Limit:      50,
	})
	require.NoError(t, err)

	req := fake.LastRequest(t)
	assert.Equal(t, "deal,person", req.Query.Get("item_types"))
	assert.Equal(t, "true", req.Query.Get("exact_match"))
	assert.Equal(t, "50", req.Query.Get("limit"))
}

func TestSearchFieldValidation(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	_, _, err := client.ItemSearch.SearchField(ctx, FieldSearchOptions{Term: "a", EntityType: "deal", Field: "title", Limit: 100})
	assert.ErrorContains(t, err, "at least 2 characters")

	_, _, err = client.ItemSearch.SearchField(ctx, FieldSearchOptions{Term: "acme", EntityType: "file", Field: "name", Limit: 100})
	assert.ErrorContains(t, err, "invalid entity type")

	_, _, err = client.ItemSearch.SearchField(ctx, FieldSearchOptions{Term: "acme", EntityType: "deal", Field: "", Limit: 100})
	assert.ErrorContains(t, err, "field")

	_, _, err = client.ItemSearch.SearchField(ctx, FieldSearchOptions{Term: "acme", EntityType: "deal", Field: "title", Match: "fuzzy", Limit: 100})
	assert.ErrorContains(t, err, "invalid match")
}

func TestSearchFieldDefaultsToExactMatch(t *testing.T) {
	client, fake := testClient(t)
	fake.HandleData("GET /api/v2/itemSearch/field", []any{})

	_, _, err := client.ItemSearch.SearchField(context.Background(), FieldSearchOptions{
		Term:       "acme",
		EntityType: "deal",
		Field:      "title",
		Limit:      100,
	})
	require.NoError(t, err)
	assert.Equal(t, "exact", fake.LastRequest(t).Query.Get("match"))
}
