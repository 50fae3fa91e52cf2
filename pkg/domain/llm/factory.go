package llm

import (
	"fmt"
	"log/slog"
	"strings"
)

// Config controls which LLM backend New constructs. Provider is the empty
// string when LLM features are disabled.
type Config struct {
	Provider       string
	APIKey         string
	Model          string
	GeminiEndpoint string
}

// New constructs a Client from cfg, or returns (nil, nil) when LLM features
// are not configured (missing provider/key/model) — matching the original's
// "disabled, not an error" behavior for an unconfigured deployment.
func New(cfg Config, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Provider == "" {
		logger.Info("llm.provider_not_configured")
		return nil, nil
	}
	if cfg.APIKey == "" {
		logger.Warn("llm.api_key_missing")
		return nil, nil
	}
	if cfg.Model == "" {
		logger.Warn("llm.model_missing")
		return nil, nil
	}

	logger.Info("llm.client_initializing", "provider", cfg.Provider, "model", cfg.Model)

	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return NewGeminiClient(cfg.APIKey, cfg.Model, cfg.GeminiEndpoint, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q (currently supported: gemini)", cfg.Provider)
	}
}
