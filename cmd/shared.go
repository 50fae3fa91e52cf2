package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bascanada/domain-mcp/pkg/config"
	"github.com/bascanada/domain-mcp/pkg/domain/adapter"
	"github.com/bascanada/domain-mcp/pkg/domain/adapter/esadapter"
	"github.com/bascanada/domain-mcp/pkg/domain/adapter/httpadapter"
	"github.com/bascanada/domain-mcp/pkg/domain/adapter/stdioadapter"
	"github.com/bascanada/domain-mcp/pkg/domain/llm"
	"github.com/bascanada/domain-mcp/pkg/domain/orchestrator"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin/boottime"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin/eslogs"
	"github.com/bascanada/domain-mcp/pkg/domain/ratelimit"
	"github.com/bascanada/domain-mcp/pkg/domain/resources"
	"github.com/bascanada/domain-mcp/pkg/ty"
)

// app bundles every collaborator the serve and mcp subcommands both need,
// built once from the loaded config at startup and shared read-only
// thereafter (spec.md §5's concurrency model).
type app struct {
	cfg          *config.Config
	plugins      *plugin.Registry
	orchestrator *orchestrator.Orchestrator
	resources    *resources.Registry
	rateLimiter  *ratelimit.Limiter
	llmOrch      *llm.QueryOrchestrator
}

// buildApp loads the JSON config at configPath and wires every domain
// collaborator, matching the teacher's NewConfigManager→factory.GetLogBackendFactory
// construction chain in shape (load config, build adapters/plugins, fail fast
// on a bad config).
func buildApp(ctx context.Context, configPath string, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	plugins := buildPluginRegistry(cfg, logger)

	sources := orchestrator.NewRegistry()
	for id, src := range cfg.Sources {
		a, err := buildAdapter(ctx, src, logger)
		if err != nil {
			return nil, fmt.Errorf("building adapter for source %q: %w", id, err)
		}
		sources.Register(id, a)
	}

	res, err := resources.NewRegistry(logger)
	if err != nil {
		return nil, fmt.Errorf("loading resources registry: %w", err)
	}

	orch := orchestrator.New(sources, plugins, logger)

	rl := ratelimit.New(rateLimitConfigFromEnv(), logger)

	llmOrch, err := buildLLMOrchestrator(orch, res, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:          cfg,
		plugins:      plugins,
		orchestrator: orch,
		resources:    res,
		rateLimiter:  rl,
		llmOrch:      llmOrch,
	}, nil
}

// buildPluginRegistry registers the built-in plugins, then filters by
// enabled_plugins (a plugin id mapped to false is dropped; unset means
// enabled).
func buildPluginRegistry(cfg *config.Config, logger *slog.Logger) *plugin.Registry {
	plugins := plugin.NewRegistry()
	plugins.Reset(boottime.New(logger), eslogs.New())
	plugins.ApplyEnabled(cfg.EnabledPlugins)
	return plugins
}

// buildAdapter realizes one configured source as a SourceAdapter. Horreum
// sources are named explicitly ("horreum*"); the bare "stdio" type names
// the Elasticsearch bridge (the only other backend family this server
// talks to, and esadapter.New's doc comment notes it is itself reached
// over stdio) — "http" falls back to the generic HTTP realization.
func buildAdapter(ctx context.Context, src config.Source, logger *slog.Logger) (adapter.SourceAdapter, error) {
	switch src.Type {
	case config.SourceHorreumMCPHTTP, config.SourceHorreum, config.SourceHTTP:
		return httpadapter.New(httpadapter.Config{
			Endpoint:          src.Endpoint,
			APIKey:            src.APIKey,
			TimeoutSeconds:    src.TimeoutSeconds,
			MaxRetries:        src.MaxRetries,
			BackoffInitialMS:  src.BackoffInitialMS,
			BackoffMultiplier: src.BackoffMultiplier,
		}, logger), nil

	case config.SourceHorreumMCPStdio, config.SourceHorreumStdio:
		return stdioadapter.New(ctx, stdioadapter.Config{
			Command:     src.Endpoint,
			Args:        src.StdioArgs,
			Env:         src.Env,
			CallTimeout: time.Duration(src.TimeoutSeconds) * time.Second,
		}, logger)

	case config.SourceStdio:
		stdio, err := stdioadapter.New(ctx, stdioadapter.Config{
			Command:     src.Endpoint,
			Args:        src.StdioArgs,
			Env:         src.Env,
			CallTimeout: time.Duration(src.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		return esadapter.New(stdio, logger), nil

	default:
		return nil, fmt.Errorf("unknown source type %q", src.Type)
	}
}

// buildLLMOrchestrator constructs the natural-language query orchestrator
// from LLM_* env vars, returning a nil orchestrator (not an error) when LLM
// features are unconfigured, matching llm.New's "disabled, not an error"
// contract.
func buildLLMOrchestrator(orch *orchestrator.Orchestrator, res *resources.Registry, logger *slog.Logger) (*llm.QueryOrchestrator, error) {
	client, err := llm.New(llm.Config{
		Provider:       os.Getenv("LLM_PROVIDER"),
		APIKey:         os.Getenv("LLM_API_KEY"),
		Model:          os.Getenv("LLM_MODEL"),
		GeminiEndpoint: os.Getenv("LLM_GEMINI_ENDPOINT"),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("building LLM client: %w", err)
	}
	if client == nil {
		return nil, nil
	}

	tools := []llm.ToolSpec{
		{
			Name:        "get_key_metrics",
			Description: "Fetch canonical boot-time/performance metric points for a test or run.",
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				req := orchestrator.RequestFromParams(ty.MI(args))
				return orch.GetKeyMetrics(ctx, req)
			},
		},
		{
			Name:        "resources/read",
			Description: "Read a domain://glossary/* or domain://examples/* resource by URI.",
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				uri, _ := args["uri"].(string)
				result, ok := res.Read(uri)
				if !ok {
					return nil, fmt.Errorf("resource not found: %s", uri)
				}
				return result, nil
			},
		},
	}

	maxIterations, _ := strconv.Atoi(os.Getenv("LLM_MAX_ITERATIONS"))
	temperature := 0.0
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			temperature = parsed
		}
	}

	return llm.NewQueryOrchestrator(client, tools, maxIterations, temperature, logger), nil
}

// rateLimitConfigFromEnv reads the RATE_LIMIT_* env vars spec.md §6.4
// names, falling back to ratelimit.DefaultConfig for unset numeric values.
// QUERY_MAX_LENGTH is read separately by queryMaxLengthFromEnv.
func rateLimitConfigFromEnv() ratelimit.Config {
	cfg := ratelimit.DefaultConfig()
	cfg.Enabled = os.Getenv("RATE_LIMIT_ENABLED") != "false"
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS_PER_HOUR")); err == nil && v > 0 {
		cfg.RequestsPerHour = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_TOKENS_PER_HOUR")); err == nil && v > 0 {
		cfg.TokensPerHour = v
	}
	cfg.AdminBypassKey = os.Getenv("RATE_LIMIT_ADMIN_KEY")
	return cfg
}

// queryMaxLengthFromEnv reads QUERY_MAX_LENGTH, defaulting to 4000.
func queryMaxLengthFromEnv() int {
	if v, err := strconv.Atoi(os.Getenv("QUERY_MAX_LENGTH")); err == nil && v > 0 {
		return v
	}
	return 4000
}

// corsOriginsFromEnv splits DOMAIN_MCP_CORS_ORIGINS on commas, trimming
// whitespace; an unset/empty value disables CORS (returns nil).
func corsOriginsFromEnv() []string {
	raw := os.Getenv("DOMAIN_MCP_CORS_ORIGINS")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
