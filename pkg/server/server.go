package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bascanada/domain-mcp/pkg/config"
	"github.com/bascanada/domain-mcp/pkg/domain/llm"
	"github.com/bascanada/domain-mcp/pkg/domain/orchestrator"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/bascanada/domain-mcp/pkg/domain/ratelimit"
	"github.com/bascanada/domain-mcp/pkg/domain/resources"
	"github.com/bascanada/domain-mcp/pkg/mcpsurface"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Deps bundles everything the HTTP surface needs; cmd/serve.go builds one
// from the loaded config and passes it to NewServer.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Plugins      *plugin.Registry
	Resources    *resources.Registry
	RateLimiter  *ratelimit.Limiter
	LLM          *llm.QueryOrchestrator
	MCP          *mcpserver.MCPServer

	HTTPToken      string
	CORSOrigins    []string
	QueryMaxLength int

	Config     *config.Config
	ConfigPath string
}

// Server is the domain MCP server's HTTP front door.
type Server struct {
	deps        Deps
	configMutex sync.RWMutex
	router      *http.ServeMux
	httpServer  *http.Server
	logger      *slog.Logger
	host, port  string

	httpToken      string
	corsOrigins    []string
	queryMaxLength int

	eventBroker   *EventBroker
	configWatcher *config.Watcher
}

// NewServer creates a new domain MCP HTTP server instance.
func NewServer(host, port string, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	queryMaxLength := deps.QueryMaxLength
	if queryMaxLength == 0 {
		queryMaxLength = 4000
	}

	s := &Server{
		deps:           deps,
		router:         http.NewServeMux(),
		logger:         logger,
		host:           host,
		port:           port,
		httpToken:      deps.HTTPToken,
		corsOrigins:    deps.CORSOrigins,
		queryMaxLength: queryMaxLength,
		eventBroker:    NewEventBroker(logger),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.healthHandler)
	s.router.HandleFunc("/ready", s.readyHandler)
	s.router.HandleFunc("/capabilities", s.capabilitiesHandler)
	s.router.HandleFunc("/resources", s.resourcesListHandler)
	s.router.HandleFunc("/resources/", s.resourcesReadHandler)
	s.router.Handle("/tools/get_key_metrics", s.authMiddleware(http.HandlerFunc(s.getKeyMetricsHandler)))
	s.router.Handle("/tools/get_key_metrics_raw", s.authMiddleware(http.HandlerFunc(s.getKeyMetricsRawHandler)))
	s.router.Handle("/api/query", s.authMiddleware(http.HandlerFunc(s.apiQueryHandler)))
	s.router.HandleFunc("/debug/extract", s.debugExtractHandler)

	if s.deps.MCP != nil {
		mcpsurface.MountHTTP(s.router, s.deps.MCP)
	}
}

// Start runs the HTTP server and blocks until a signal is received or the
// server fails. On SIGINT, after a clean shutdown, the process exits with
// status 130 (REDESIGN per spec.md §5 — the teacher simply returns nil).
func (s *Server) Start() error {
	if s.deps.ConfigPath != "" {
		watcher, err := config.NewWatcher(s.deps.ConfigPath, s.logger, s.onConfigReloaded)
		if err != nil {
			s.logger.Warn("failed to start config watcher", "err", err)
		} else {
			s.configWatcher = watcher
		}
	}

	handler := s.chainMiddleware(s.router, s.recoveryMiddleware, s.corsMiddleware, s.correlationMiddleware, s.loggingMiddleware)

	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", listener.Addr().String())
		fmt.Printf("Server listening on port %d\n", actualPort)
		serverErrors <- s.httpServer.Serve(listener)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case sig := <-shutdown:
		s.logger.Info("shutdown signal received", "signal", sig)
		if s.configWatcher != nil {
			_ = s.configWatcher.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("graceful shutdown failed", "err", err)
			_ = s.httpServer.Close()
		} else {
			s.logger.Info("server shutdown gracefully")
		}

		if sig == os.Interrupt {
			os.Exit(130)
		}
		return nil
	}
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	if s.configWatcher != nil {
		_ = s.configWatcher.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) onConfigReloaded(cfg *config.Config) {
	s.configMutex.Lock()
	s.deps.Config = cfg
	s.configMutex.Unlock()

	s.eventBroker.Broadcast(Event{
		Type: EventConfigReloaded,
		Data: map[string]interface{}{"timestamp": time.Now().Unix(), "sources": len(cfg.Sources)},
	})
}

// GetConfig returns a thread-safe snapshot of the current configuration.
func (s *Server) GetConfig() *config.Config {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()
	return s.deps.Config
}
