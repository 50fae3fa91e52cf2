package cmd

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/bascanada/domain-mcp/pkg/mcpsurface"
	"github.com/bascanada/domain-mcp/pkg/server"
	"github.com/spf13/cobra"
)

var (
	port int
	host string
)

var serveCmd = &cobra.Command{
	Use:    "serve",
	Short:  "Start the domain MCP HTTP server",
	Long:   `Starts the HTTP server exposing the REST tool surface plus the MCP SSE and StreamableHTTP transports.`,
	PreRun: onCommandStart,
	Run: func(_ *cobra.Command, _ []string) {
		printBanner("serve")
		slogLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

		slogLogger.Info("loading configuration", "path", configPath)
		a, err := buildApp(context.Background(), configPath, slogLogger)
		if err != nil {
			slogLogger.Error("failed to build application", "err", err)
			os.Exit(1)
		}

		mcpServer := mcpsurface.New(mcpsurface.Deps{
			Orchestrator: a.orchestrator,
			Plugins:      a.plugins,
			Resources:    a.resources,
			Logger:       slogLogger,
		})

		s := server.NewServer(host, strconv.Itoa(port), server.Deps{
			Orchestrator:   a.orchestrator,
			Plugins:        a.plugins,
			Resources:      a.resources,
			RateLimiter:    a.rateLimiter,
			LLM:            a.llmOrch,
			MCP:            mcpServer,
			HTTPToken:      os.Getenv("DOMAIN_MCP_HTTP_TOKEN"),
			CORSOrigins:    corsOriginsFromEnv(),
			QueryMaxLength: queryMaxLengthFromEnv(),
			Config:         a.cfg,
			ConfigPath:     configPath,
		}, slogLogger)

		if err := s.Start(); err != nil {
			slogLogger.Error("server failed to start", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVarP(&host, "host", "H", "0.0.0.0", "Host to bind to")
}
