package llm

import (
	"context"
	"strings"
)

// ToolHandler executes a named tool against parsed arguments.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// ToolSpec is one entry in the tool registry the orchestrator exposes to
// the LLM: a name, a human-readable schema description, and the handler
// that actually executes it.
type ToolSpec struct {
	Name        string
	Description string
	Handler     ToolHandler
}

const getKeyMetricsSchema = `**PRIMARY TOOL** for boot time and performance analysis queries.

**Parameters (all optional):**
- ` + "`run_id`" + ` (string): Fetch metrics for a specific Horreum run ID
  - When provided, fetches only that run (ignores time filters)
  - **Use this for "analyze run ID X" queries**
- ` + "`from_timestamp`" + ` (string): Start time filter. Accepts:
  - Natural language: "last 30 days", "7 days ago"
  - ISO 8601: "2025-01-01T00:00:00Z"
- ` + "`to_timestamp`" + ` (string): End time filter (same formats as from_timestamp)
- ` + "`os_id`" + ` (string): OS filter. Examples: "rhel", "autosd"
- ` + "`run_type`" + ` (string): Filter by test run type
  - Values: "nightly", "ci", "release", "manual"
  - **Use this when query specifies run type** (e.g., "nightly results only")
- ` + "`limit`" + ` (integer): Page size for fetching (default: 100)

**DO NOT use these parameters** (they are auto-configured):
- test_id (auto-discovered for boot time queries)
- source_id (auto-selected)
- dataset_types (defaults to ["boot-time-verbose"])

**Returns:**
- ` + "`metric_points`" + `: list of metric measurements (metric_id, timestamp, value, dimensions, source)
- ` + "`domain_model_version`" + `: "1.0.0"

**Examples:**
` + "```" + `
TOOL_CALL: {"name": "get_key_metrics", "arguments": {"from_timestamp": "last 90 days", "os_id": "rhel"}}
TOOL_CALL: {"name": "get_key_metrics", "arguments": {"from_timestamp": "last 30 days", "run_type": "nightly"}}
` + "```" + `
`

const resourcesReadSchema = `**Parameters:**
- ` + "`uri`" + ` (string, required): Resource URI to read
  - Format: "domain://<category>/<resource-name>"
  - Examples: "domain://glossary/boot-time", "domain://examples/boot-time-regression"

**Returns:** resource content as JSON text.

**Example:**
` + "```" + `
TOOL_CALL: {"name": "resources/read", "arguments": {"uri": "domain://glossary/boot-time"}}
` + "```" + `
`

// ToolSchemas renders every tool's schema text for injection into the
// system prompt. get_key_metrics and resources/read get hand-written
// detail sections (mirroring the two tools an LLM client actually needs to
// drive); any other registered tool falls back to its bare description.
func ToolSchemas(tools []ToolSpec) string {
	sections := make([]string, 0, len(tools))
	for _, t := range tools {
		sections = append(sections, renderToolSchema(t))
	}
	return strings.Join(sections, "\n\n")
}

func renderToolSchema(t ToolSpec) string {
	switch t.Name {
	case "get_key_metrics":
		return "### " + t.Name + "\n" + t.Description + "\n\n" + getKeyMetricsSchema
	case "resources/read":
		return "### " + t.Name + "\n" + t.Description + "\n\n" + resourcesReadSchema
	default:
		desc := t.Description
		if desc == "" {
			desc = "No documentation available."
		}
		return "### " + t.Name + "\n" + desc
	}
}
