package tools

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/config"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
)

// Feature is one registrable group of tools.
type Feature struct {
	Name        string
	Description string
	Register    func(s *server.MCPServer, c *pipedrive.Client)
}

// Features returns every tool group in registration order.
func Features() []Feature {
	return []Feature{
		{"activities", "Activity and activity-type management", registerActivityTools},
		{"deals", "Deal and deal-product management", registerDealTools},
		{"leads", "Lead, lead-label, and lead-source management", registerLeadTools},
		{"persons", "Person management", registerPersonTools},
		{"organizations", "Organization and follower management", registerOrganizationTools},
		{"item_search", "Cross-entity and field search", registerItemSearchTools},
	}
}

// RegisterAll wires the enabled feature groups into the MCP server.
func RegisterAll(s *server.MCPServer, c *pipedrive.Client, flags *config.FeatureFlags, logger *slog.Logger) {
	for _, f := range Features() {
		if !flags.Enabled(f.Name) {
			logger.Info("feature disabled, skipping tool registration", "feature", f.Name)
			continue
		}
		f.Register(s, c)
		logger.Debug("feature registered", "feature", f.Name)
	}
}
