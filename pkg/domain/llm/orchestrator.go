package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ToolCallTrace records one executed tool call for the response trace.
type ToolCallTrace struct {
	Tool       string      `json:"tool"`
	Arguments  interface{} `json:"arguments"`
	Result     interface{} `json:"result"`
	DurationMs int         `json:"duration_ms"`
}

// QueryResult is the outcome of QueryOrchestrator.ExecuteQuery.
type QueryResult struct {
	Answer          string          `json:"answer"`
	ToolCalls       []ToolCallTrace `json:"tool_calls"`
	TotalDurationMs int             `json:"total_duration_ms"`
	LLMCalls        int             `json:"llm_calls"`
	TotalTokens     int             `json:"total_tokens"`
}

// QueryOrchestrator drives a bounded LLM tool-call loop: call the model,
// parse any TOOL_CALL directives out of its response, execute them against
// the registered tools, feed results back, and repeat until the model
// stops requesting tools or the iteration cap is hit.
type QueryOrchestrator struct {
	client        Client
	tools         map[string]ToolSpec
	maxIterations int
	temperature   float64
	logger        *slog.Logger
	history       []Message
}

// NewQueryOrchestrator constructs an orchestrator over the given tool
// registry. A zero maxIterations defaults to 10; a nil logger defaults to
// slog.Default().
func NewQueryOrchestrator(client Client, tools []ToolSpec, maxIterations int, temperature float64, logger *slog.Logger) *QueryOrchestrator {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]ToolSpec, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}

	o := &QueryOrchestrator{
		client:        client,
		tools:         byName,
		maxIterations: maxIterations,
		temperature:   temperature,
		logger:        logger,
	}
	o.Reset()

	logger.Info("llm.orchestrator_initialized", "max_iterations", maxIterations, "temperature", temperature, "tool_count", len(tools))
	return o
}

// Reset clears conversation history back to just the system prompt.
func (o *QueryOrchestrator) Reset() {
	specs := make([]ToolSpec, 0, len(o.tools))
	for _, t := range o.tools {
		specs = append(specs, t)
	}
	o.history = []Message{{Role: "system", Content: SystemPrompt(specs)}}
}

// ExecuteQuery runs the bounded tool-call loop for a natural-language
// query and returns the final answer plus a full execution trace.
func (o *QueryOrchestrator) ExecuteQuery(ctx context.Context, query string) (QueryResult, error) {
	start := time.Now()
	var trace []ToolCallTrace
	llmCalls := 0
	totalTokens := 0

	o.history = append(o.history, Message{Role: "user", Content: UserPrompt(query)})
	o.logger.Info("llm.query_started", "query", query, "history_length", len(o.history))

	var finalAnswer string
	iteration := 0
	for iteration < o.maxIterations && finalAnswer == "" {
		iteration++
		llmCalls++

		resp, err := o.client.Complete(ctx, Request{
			Messages:    o.history,
			Temperature: o.temperature,
			MaxTokens:   4096,
		})
		if err != nil {
			return QueryResult{}, fmt.Errorf("llm completion failed at iteration %d: %w", iteration, err)
		}
		if resp.Usage != nil {
			totalTokens += resp.Usage.TotalTokens
		}

		content := strings.TrimSpace(resp.Content)
		o.history = append(o.history, Message{Role: "assistant", Content: content})

		calls := parseToolCalls(content)
		if len(calls) == 0 {
			finalAnswer = content
			o.logger.Info("llm.final_answer", "iteration", iteration, "answer_length", len(content))
			break
		}

		o.logger.Info("llm.tool_calls_requested", "iteration", iteration, "count", len(calls))

		results := make([]toolExecResult, 0, len(calls))
		for _, call := range calls {
			results = append(results, o.executeOne(ctx, call, &trace))
		}

		o.history = append(o.history, Message{Role: "user", Content: formatToolResults(results)})

		if allFailed(results) {
			finalAnswer = buildAllFailedAnswer(results)
			o.logger.Warn("llm.all_tools_failed", "iteration", iteration)
			break
		}
	}

	if finalAnswer == "" {
		finalAnswer = fmt.Sprintf(
			"I reached the maximum number of iterations (%d) without completing the query. Please try a simpler or more specific query.",
			o.maxIterations)
		o.logger.Warn("llm.max_iterations_reached", "iterations", iteration)
	}

	totalDuration := time.Since(start)
	o.logger.Info("llm.query_complete", "duration_ms", totalDuration.Milliseconds(), "llm_calls", llmCalls, "tool_calls", len(trace), "total_tokens", totalTokens)

	return QueryResult{
		Answer:          finalAnswer,
		ToolCalls:       trace,
		TotalDurationMs: int(totalDuration.Milliseconds()),
		LLMCalls:        llmCalls,
		TotalTokens:     totalTokens,
	}, nil
}

type toolExecResult struct {
	tool    string
	success bool
	result  interface{}
	errMsg  string
}

func (o *QueryOrchestrator) executeOne(ctx context.Context, call ToolCall, trace *[]ToolCallTrace) toolExecResult {
	start := time.Now()
	spec, ok := o.tools[call.Name]
	if !ok {
		duration := int(time.Since(start).Milliseconds())
		o.logger.Error("llm.tool_not_found", "tool", call.Name)
		*trace = append(*trace, ToolCallTrace{Tool: call.Name, Arguments: call.Arguments, Result: map[string]string{"error": "tool not found"}, DurationMs: duration})
		return toolExecResult{tool: call.Name, success: false, errMsg: fmt.Sprintf("tool %q not found", call.Name)}
	}

	result, err := spec.Handler(ctx, call.Arguments)
	duration := int(time.Since(start).Milliseconds())
	if err != nil {
		o.logger.Error("llm.tool_execution_failed", "tool", call.Name, "error", err, "duration_ms", duration)
		*trace = append(*trace, ToolCallTrace{Tool: call.Name, Arguments: call.Arguments, Result: map[string]string{"error": err.Error()}, DurationMs: duration})
		return toolExecResult{tool: call.Name, success: false, errMsg: err.Error()}
	}

	o.logger.Info("llm.tool_executed", "tool", call.Name, "duration_ms", duration)
	*trace = append(*trace, ToolCallTrace{Tool: call.Name, Arguments: call.Arguments, Result: result, DurationMs: duration})
	return toolExecResult{tool: call.Name, success: true, result: result}
}

func allFailed(results []toolExecResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.success {
			return false
		}
	}
	return true
}

func buildAllFailedAnswer(results []toolExecResult) string {
	var sb strings.Builder
	sb.WriteString("I encountered errors while trying to query the data:\n\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", r.tool, r.errMsg))
	}
	sb.WriteString("\nPlease check the query parameters or try a different query.")
	return sb.String()
}

func formatToolResults(results []toolExecResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.success {
			encoded, err := json.MarshalIndent(r.result, "", "  ")
			text := string(encoded)
			if err != nil {
				text = fmt.Sprintf("%v", r.result)
			}
			parts = append(parts, fmt.Sprintf("TOOL_RESULT [%s]:\n%s", r.tool, text))
		} else {
			parts = append(parts, fmt.Sprintf("TOOL_ERROR [%s]: %s", r.tool, r.errMsg))
		}
	}
	return "Tool execution results:\n\n" + strings.Join(parts, "\n\n") +
		"\n\nBased on these results, please provide your analysis or make additional tool calls if needed."
}
