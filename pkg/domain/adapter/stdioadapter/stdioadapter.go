// Package stdioadapter implements the stdio-bridge realization of
// SourceAdapter: a child process speaking MCP over stdio, invoked one
// tool call per operation under a deadline.
package stdioadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	gomcp "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// Config configures the child process and per-call deadline.
type Config struct {
	Command    string
	Args       []string
	Env        map[string]string
	CallTimeout time.Duration
}

// ToolCaller is the subset of the mcp-go stdio client this adapter drives;
// tests substitute a fake to bypass the subprocess entirely.
type ToolCaller interface {
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Adapter is the stdio-bridge realization of adapter.SourceAdapter.
type Adapter struct {
	cfg    Config
	logger *slog.Logger
	client ToolCaller
}

// New spawns the configured child process and completes the MCP
// handshake.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 30 * time.Second
	}

	var envStrings []string
	for k, v := range cfg.Env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}

	stdioClient, err := gomcp.NewStdioMCPClient(cfg.Command, envStrings, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create stdio client: %w", err)
	}

	a := &Adapter{cfg: cfg, logger: logger, client: stdioClient}
	if err := a.initialize(ctx); err != nil {
		_ = stdioClient.Close()
		return nil, err
	}
	return a, nil
}

// NewWithClient constructs an adapter around an already-connected client,
// for tests that bypass the subprocess entirely.
func NewWithClient(cfg Config, logger *slog.Logger, client ToolCaller) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{cfg: cfg, logger: logger, client: client}
}

func (a *Adapter) initialize(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	_, err := a.client.Initialize(initCtx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: "2024-11-05",
			ClientInfo:      mcp.Implementation{Name: "domain-mcp", Version: "1.0.0"},
			Capabilities:    mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		return fmt.Errorf("stdio mcp handshake failed: %w", err)
	}
	return nil
}

// Close terminates the child process.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// CallRaw invokes name with args and decodes the first text content item
// into out, without assuming the Horreum Source MCP contract's response
// shapes. Used by adapters (such as esadapter) that reinterpret the same
// stdio transport against a differently-shaped MCP server.
func (a *Adapter) CallRaw(ctx context.Context, name string, args map[string]interface{}, out interface{}) error {
	return a.callTool(ctx, name, args, out)
}

// callTool invokes name with args under the configured deadline and parses
// the first text content item as JSON into resp.
func (a *Adapter) callTool(ctx context.Context, name string, args map[string]interface{}, resp interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := a.client.CallTool(callCtx, req)
	if err != nil {
		return fmt.Errorf("stdio tool %q call failed: %w", name, err)
	}

	if result.IsError {
		return fmt.Errorf("stdio tool %q reported an error", name)
	}

	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			if resp == nil {
				return nil
			}
			return json.Unmarshal([]byte(text.Text), resp)
		}
	}
	return fmt.Errorf("stdio tool %q returned no text content", name)
}
