// Package mcpsurface wires the domain MCP server's tools and resources
// onto a mark3labs/mcp-go server instance, shared by the stdio transport
// (cmd's mcp subcommand) and the HTTP-mounted SSE/StreamableHTTP
// transports (pkg/server).
package mcpsurface

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bascanada/domain-mcp/pkg/domain/orchestrator"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/bascanada/domain-mcp/pkg/domain/resources"
	"github.com/bascanada/domain-mcp/pkg/ty"
)

// Deps bundles the domain collaborators the registered tools/resources
// call into.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Plugins      *plugin.Registry
	Resources    *resources.Registry
	Logger       *slog.Logger
}

// New builds a mark3labs/mcp-go server with the domain tool and resource
// surface registered, matching the teacher's NewMCPServer/AddTool/
// AddResource idiom in cmd/mcp.go.
func New(deps Deps) *mcpserver.MCPServer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := mcpserver.NewMCPServer(
		"domain-mcp",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(true, true),
		mcpserver.WithRecovery(),
	)

	registerGetKeyMetrics(s, deps)
	registerGetKeyMetricsRaw(s, deps)
	registerResources(s, deps)

	return s
}

func registerGetKeyMetrics(s *mcpserver.MCPServer, deps Deps) {
	tool := mcp.NewTool("get_key_metrics",
		mcp.WithDescription(`Fetch canonical boot-time/performance metric points for a test or run, preferring fast pre-aggregated label values and falling back to paginated dataset search. Set plan_only to get the fetch plan without executing it.`),
		mcp.WithString("source_id", mcp.Description("Configured source identifier; defaults to the only configured source.")),
		mcp.WithArray("dataset_types", mcp.Description("Dataset types to search, e.g. [\"boot-time-verbose\"].")),
		mcp.WithString("test_id", mcp.Description("Horreum test id; auto-discovered when omitted.")),
		mcp.WithString("run_id", mcp.Description("Specific run id to fetch instead of searching by test.")),
		mcp.WithString("schema_uri", mcp.Description("Dataset schema URI, used to select the extraction plugin.")),
		mcp.WithString("from", mcp.Description("Start of the time range (RFC3339 or relative like '7 days ago').")),
		mcp.WithString("to", mcp.Description("End of the time range (RFC3339).")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of datasets/runs to consider.")),
		mcp.WithString("merge_strategy", mcp.Description("One of prefer_fast, comprehensive, labels_only, datasets_only.")),
		mcp.WithBoolean("plan_only", mcp.Description("Return the fetch plan instead of executing it.")),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := requestToOrchestratorRequest(request)
		resp, err := deps.Orchestrator.GetKeyMetrics(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}

	s.AddTool(tool, handler)
}

func registerGetKeyMetricsRaw(s *mcpserver.MCPServer, deps Deps) {
	tool := mcp.NewTool("get_key_metrics_raw",
		mcp.WithDescription(`Extract canonical metric points directly from caller-supplied dataset JSON, with no source fetch. Useful when the caller already has the dataset body.`),
		mcp.WithArray("dataset_types", mcp.Required(), mcp.Description("Dataset types identifying which plugin(s) to run.")),
		mcp.WithArray("data", mcp.Required(), mcp.Description("Array of raw dataset bodies to extract from.")),
		mcp.WithString("os_id", mcp.Description("Optional OS filter hint.")),
		mcp.WithString("run_type", mcp.Description("Optional run-type filter hint.")),
	)

	handler := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req := requestToOrchestratorRequest(request)
		if len(req.Data) == 0 {
			return mcp.NewToolResultError("data is required and must be a non-empty array"), nil
		}
		points, err := deps.Orchestrator.GetKeyMetricsRaw(ctx, req.DatasetTypes, req.Data, req.OSFilter, req.RunTypeFilter)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := json.Marshal(map[string]interface{}{
			"metric_points":        points,
			"domain_model_version": "1.0.0",
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}

	s.AddTool(tool, handler)
}

// requestToOrchestratorRequest normalizes a CallToolRequest's raw
// arguments the same way the HTTP tool endpoints do, so the MCP and HTTP
// surfaces share one parameter contract.
func requestToOrchestratorRequest(request mcp.CallToolRequest) orchestrator.Request {
	return orchestrator.RequestFromParams(ty.MI(request.GetArguments()))
}

// registerResources exposes the glossary/examples registry both as a
// browsable index resource and as individually readable resources,
// mirroring the teacher's "logviewer://contexts" index-resource pattern.
func registerResources(s *mcpserver.MCPServer, deps Deps) {
	if deps.Resources == nil {
		return
	}

	indexResource := mcp.NewResource(
		"domain://index",
		"Domain Resource Index",
		mcp.WithResourceDescription("JSON array of every domain://glossary/* and domain://examples/* resource this server exposes."),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(indexResource, func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		metas := deps.Resources.List()
		sort.Slice(metas, func(i, j int) bool { return metas[i].URI < metas[j].URI })
		b, err := json.Marshal(metas)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal resource index: %w", err)
		}
		return []mcp.ResourceContents{mcp.TextResourceContents{URI: "domain://index", MIMEType: "application/json", Text: string(b)}}, nil
	})

	for _, meta := range deps.Resources.List() {
		uri := meta.URI
		resource := mcp.NewResource(
			uri,
			meta.Name,
			mcp.WithResourceDescription(meta.Description),
			mcp.WithMIMEType(meta.MimeType),
		)
		s.AddResource(resource, func(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			result, ok := deps.Resources.Read(uri)
			if !ok {
				return nil, fmt.Errorf("resource not found: %s", uri)
			}
			contents := make([]mcp.ResourceContents, 0, len(result.Contents))
			for _, c := range result.Contents {
				contents = append(contents, mcp.TextResourceContents{URI: c.URI, MIMEType: c.MimeType, Text: c.Text})
			}
			return contents, nil
		})
	}
}
