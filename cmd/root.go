package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

func SetVersion(v string) {
	appVersion = v
}

var rootCmd = &cobra.Command{
	Use:   "pipedrive-mcp",
	Short: "MCP server exposing Pipedrive CRM operations as tools",
	Long: "pipedrive-mcp serves Pipedrive CRM operations (activities, deals, leads,\n" +
		"persons, organizations, search) as MCP tools, and ships a companion\n" +
		"gateway client CLI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.SetVersionTemplate(fmt.Sprintf("pipedrive-mcp v%s\n", appVersion))
}

func Execute() error {
	rootCmd.Version = appVersion
	return rootCmd.Execute()
}

// newLogger builds the process logger. Level comes from LOG_LEVEL; stdio
// transport forces output onto stderr so stdout stays clean for MCP frames.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
