package llm

import "fmt"

// UserPrompt wraps a raw natural-language query with the tool-call
// execution instructions the orchestrator's loop depends on.
func UserPrompt(query string) string {
	return fmt.Sprintf(`User Query: %s

IMPORTANT: You must EXECUTE the necessary tool calls using the TOOL_CALL: format specified in the system prompt.

DO NOT just explain what you would do. ACTUALLY call the tools by outputting:
TOOL_CALL: {"name": "tool_name", "arguments": {...}}

Think step-by-step:
1. Determine which tool(s) to call and what parameters to use
2. Output the TOOL_CALL: line(s) for each tool
3. Wait for results
4. Provide your final answer based on the actual data

Start by making your first tool call now.`, query)
}

// SystemPrompt builds the complete system prompt, including every
// registered tool's schema text.
func SystemPrompt(tools []ToolSpec) string {
	return fmt.Sprintf(`You are an assistant for querying Domain performance data.

## Tool Call Format

Execute tools using this exact syntax:
%s
TOOL_CALL: {"name": "tool_name", "arguments": {"param1": "value1"}}
%s

**DO NOT** just describe what you would do. **ACTUALLY EXECUTE** the tool calls.

## Available Tools

%s

## Workflow

1. Read MCP resources to understand the domain (use resources/read tool)
2. Execute data queries (use get_key_metrics tool)
3. Format responses according to templates from resources

Start by reading domain://examples/boot-time-regression to see a worked get_key_metrics query.
`, "```", "```", ToolSchemas(tools))
}
