// Package server assembles the MCP server with the registered tool surface
// and the companion session/health HTTP routes.
package server

import (
	"log/slog"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/crmhub/pipedrive-mcp/internal/config"
	"github.com/crmhub/pipedrive-mcp/internal/pipedrive"
	"github.com/crmhub/pipedrive-mcp/internal/session"
	"github.com/crmhub/pipedrive-mcp/internal/tools"
)

// Server bundles the MCP server, the session table, and the HTTP surface.
type Server struct {
	mcp      *mcpserver.MCPServer
	sessions *session.Manager
	logger   *slog.Logger
}

// New builds a Server with the enabled tool groups registered.
func New(client *pipedrive.Client, flags *config.FeatureFlags, sessions *session.Manager, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	m := mcpserver.NewMCPServer("pipedrive-mcp", version)
	tools.RegisterAll(m, client, flags, logger)
	return &Server{mcp: m, sessions: sessions, logger: logger}
}

// ServeStdio runs the MCP server over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcp)
}

// Handler returns the HTTP surface: the streamable MCP transport at /mcp
// and the companion session/health routes beside it.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp))
	s.registerRoutes(mux)
	return mux
}

// ListenAndServe serves the HTTP surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http server listening", "addr", addr)
	return srv.ListenAndServe()
}
