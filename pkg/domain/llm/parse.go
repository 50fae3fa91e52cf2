package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ToolCall is one tool invocation request parsed out of an LLM response.
type ToolCall struct {
	Name      string
	Arguments map[string]interface{}
}

var jsonBlockPattern = regexp.MustCompile("(?s)```json\\s*\\n({.*?})\\s*\\n```")

// parseToolCalls scans content for every TOOL_CALL: directive and every
// fenced ```json code block, in that order, and returns the tool calls
// found. Malformed entries are skipped rather than aborting the scan.
func parseToolCalls(content string) []ToolCall {
	var calls []ToolCall

	for _, jsonStr := range findToolCallDirectives(content) {
		var parsed struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments"`
		}
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil || parsed.Name == "" {
			continue
		}
		calls = append(calls, ToolCall{Name: parsed.Name, Arguments: parsed.Arguments})
	}

	for _, match := range jsonBlockPattern.FindAllStringSubmatch(content, -1) {
		var parsed struct {
			Tool       string                 `json:"tool"`
			Name       string                 `json:"name"`
			Parameters map[string]interface{} `json:"parameters"`
			Arguments  map[string]interface{} `json:"arguments"`
		}
		if err := json.Unmarshal([]byte(match[1]), &parsed); err != nil {
			continue
		}
		name := parsed.Tool
		if name == "" {
			name = parsed.Name
		}
		if name == "" {
			continue
		}
		args := parsed.Parameters
		if args == nil {
			args = parsed.Arguments
		}
		calls = append(calls, ToolCall{Name: name, Arguments: args})
	}

	return calls
}

// findToolCallDirectives locates every "TOOL_CALL:" marker in content and
// returns the brace-balanced JSON object text that follows each one.
func findToolCallDirectives(content string) []string {
	const marker = "TOOL_CALL:"
	var found []string

	searchFrom := 0
	for {
		idx := strings.Index(content[searchFrom:], marker)
		if idx == -1 {
			break
		}
		start := searchFrom + idx + len(marker)
		if jsonStr, ok := extractJSONObject(content[start:]); ok {
			found = append(found, jsonStr)
		}
		searchFrom = start
	}
	return found
}

// extractJSONObject finds the first "{" in text and returns the
// substring through its matching "}", tracking string/escape state so
// braces inside quoted strings don't confuse the count.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escapeNext := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if escapeNext {
			escapeNext = false
			continue
		}
		if c == '\\' {
			escapeNext = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
