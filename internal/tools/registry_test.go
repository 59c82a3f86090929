package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmhub/pipedrive-mcp/internal/config"
)

func listRegisteredTools(t *testing.T, s *server.MCPServer) string {
	t.Helper()
	// Initialize, then list tools over the server's JSON-RPC surface.
	s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(raw)
}

func TestRegisterAllFeaturesEnabled(t *testing.T) {
	client, _ := toolClient(t)
	t.Setenv("FEATURE_CONFIG_PATH", "")
	flags, err := config.LoadFeatures()
	require.NoError(t, err)

	s := server.NewMCPServer("pipedrive-mcp", "test")
	RegisterAll(s, client, flags, slog.Default())

	listed := listRegisteredTools(t, s)
	for _, name := range []string{
		"create_activity_in_pipedrive",
		"list_deals_from_pipedrive",
		"get_deal_products_from_pipedrive",
		"search_leads_in_pipedrive",
		"create_person_in_pipedrive",
		"add_follower_to_organization_in_pipedrive",
		"search_items_in_pipedrive",
	} {
		assert.Contains(t, listed, name)
	}
}

func TestRegisterAllSkipsDisabledFeature(t *testing.T) {
	client, _ := toolClient(t)
	t.Setenv("FEATURE_CONFIG_PATH", "")
	t.Setenv("PIPEDRIVE_FEATURE_DEALS", "false")
	flags, err := config.LoadFeatures()
	require.NoError(t, err)

	s := server.NewMCPServer("pipedrive-mcp", "test")
	RegisterAll(s, client, flags, slog.Default())

	listed := listRegisteredTools(t, s)
	assert.NotContains(t, listed, "create_deal_in_pipedrive")
	assert.Contains(t, listed, "create_person_in_pipedrive")
}

func TestFeaturesCoverAllGroups(t *testing.T) {
	names := map[string]bool{}
	for _, f := range Features() {
		names[f.Name] = true
	}
	for _, want := range []string{"activities", "deals", "leads", "persons", "organizations", "item_search"} {
		assert.True(t, names[want], "missing feature group %s", want)
	}
}
