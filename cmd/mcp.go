package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/bascanada/domain-mcp/pkg/mcpsurface"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Starts an MCP server over stdio",
	Long:  `Starts an MCP server, exposing get_key_metrics/get_key_metrics_raw and the glossary/examples resources over stdio.`,
	Run: func(_ *cobra.Command, _ []string) {
		slogLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

		log.Printf("Starting MCP server with config: %v\n", configPath)

		a, err := buildApp(context.Background(), configPath, slogLogger)
		if err != nil {
			log.Fatalf("failed to build application: %v", err)
		}

		mcpServer := mcpsurface.New(mcpsurface.Deps{
			Orchestrator: a.orchestrator,
			Plugins:      a.plugins,
			Resources:    a.resources,
			Logger:       slogLogger,
		})

		if err := server.ServeStdio(mcpServer); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	},
}
