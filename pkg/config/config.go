// Package config loads the domain-mcp server's JSON configuration file,
// the REDESIGNED (spec.md §6.4) counterpart of the teacher's YAML
// ContextConfig loader: same load-and-validate shape, same sentinel-error
// idiom, a JSON-only decoder.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// EnvConfigPath is the environment variable naming the JSON config file.
const EnvConfigPath = "DOMAIN_MCP_CONFIG"

// Sentinel errors returned by Load, mirroring the teacher's
// ErrConfigParse/ErrNoContexts/ErrNoClients trio.
var (
	ErrConfigParse = errors.New("invalid config content")
	ErrNoSources   = errors.New("no sources found in config file")
)

// SourceType is the closed set of adapter realizations a configured
// source can select.
type SourceType string

const (
	SourceHorreumMCPHTTP  SourceType = "horreum-mcp-http"
	SourceHorreumMCPStdio SourceType = "horreum-mcp-stdio"
	SourceHorreum         SourceType = "horreum"
	SourceHorreumStdio    SourceType = "horreum-stdio"
	SourceHTTP            SourceType = "http"
	SourceStdio           SourceType = "stdio"
)

// IsStdio reports whether t is realized over the stdio-bridge transport.
func (t SourceType) IsStdio() bool {
	switch t {
	case SourceHorreumMCPStdio, SourceHorreumStdio, SourceStdio:
		return true
	default:
		return false
	}
}

// Source is one entry of the "sources" map in the JSON config file.
type Source struct {
	Endpoint          string            `json:"endpoint"`
	APIKey            string            `json:"api_key,omitempty"`
	Type              SourceType        `json:"type"`
	TimeoutSeconds    int               `json:"timeout_seconds,omitempty"`
	MaxRetries        int               `json:"max_retries,omitempty"`
	BackoffInitialMS  int               `json:"backoff_initial_ms,omitempty"`
	BackoffMultiplier float64           `json:"backoff_multiplier,omitempty"`
	StdioArgs         []string          `json:"stdio_args,omitempty"`
	Env               map[string]string `json:"env,omitempty"`
}

// Config is the top-level shape of the JSON file referenced by
// DOMAIN_MCP_CONFIG.
type Config struct {
	Sources        map[string]Source `json:"sources"`
	EnabledPlugins map[string]bool   `json:"enabled_plugins,omitempty"`
}

// applyDefaults fills in the per-source defaults spec.md §6.4 documents
// (timeout_seconds:30, max_retries:1, backoff_initial_ms:200,
// backoff_multiplier:2.0).
func (c *Config) applyDefaults() {
	for id, s := range c.Sources {
		if s.TimeoutSeconds == 0 {
			s.TimeoutSeconds = 30
		}
		if s.MaxRetries == 0 {
			s.MaxRetries = 1
		}
		if s.BackoffInitialMS == 0 {
			s.BackoffInitialMS = 200
		}
		if s.BackoffMultiplier == 0 {
			s.BackoffMultiplier = 2.0
		}
		c.Sources[id] = s
	}
}

// Load reads and validates the JSON config file at path. An empty path
// resolves DOMAIN_MCP_CONFIG; if that is also unset, Load returns
// ErrNoSources since a domain-mcp server cannot function without at
// least one configured source.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no config path given and %s is unset", ErrNoSources, EnvConfigPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		wrapped := fmt.Errorf("parsing JSON %s: %w", path, err)
		return nil, errors.Join(ErrConfigParse, wrapped)
	}

	if len(cfg.Sources) == 0 {
		return nil, ErrNoSources
	}

	cfg.applyDefaults()
	return &cfg, nil
}
