package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crmhub/pipedrive-mcp/internal/config"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
	"github.com/crmhub/pipedrive-mcp/internal/server"
	"github.com/crmhub/pipedrive-mcp/internal/session"
)

var (
	serveTransport string
	serveAddr      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Pipedrive MCP server",
	Long: "Runs the MCP server exposing the Pipedrive tool surface. The stdio\n" +
		"transport speaks MCP on stdin/stdout; the http transport serves the\n" +
		"streamable MCP endpoint at /mcp plus session and health routes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		settings, err := config.Load(logger)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		flags, err := config.LoadFeatures()
		if err != nil {
			return fmt.Errorf("loading feature config: %w", err)
		}

		client, err := pipedrive.New(settings.APIToken, settings.CompanyDomain,
			pipedrive.WithHTTPClient(settings.HTTPClient()),
			pipedrive.WithLogger(logger),
			pipedrive.WithRequestLogging(settings.LogRequests, settings.LogResponses),
		)
		if err != nil {
			return fmt.Errorf("building pipedrive client: %w", err)
		}

		srv := server.New(client, flags, session.NewManager(), logger, appVersion)

		switch serveTransport {
		case "stdio":
			logger.Info("starting MCP server on stdio", "version", appVersion)
			return srv.ServeStdio()
		case "http":
			return srv.ListenAndServe(serveAddr)
		default:
			return fmt.Errorf("unknown transport %q, must be 'stdio' or 'http'", serveTransport)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveTransport, "transport", "stdio", "transport to serve on: stdio or http")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8152", "listen address for the http transport")
}
