package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	httpclient "github.com/bascanada/domain-mcp/pkg/http"
	"github.com/bascanada/domain-mcp/pkg/ty"
)

const defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

// geminiPart/geminiContent/geminiGenerationConfig/geminiSafetySetting mirror
// the subset of the Gemini generateContent REST wire format this client
// needs.
type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings    []geminiSafetySetting   `json:"safetySettings,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

// defaultSafetySettings loosens Gemini's default safety thresholds for
// technical/analytical content — performance analysis queries routinely
// mention words like "kill", "crash" or "fail" that trip default filters.
var defaultSafetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_ONLY_HIGH"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
}

// GeminiClient calls the Google Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey   string
	model    string
	endpoint string
	http     httpclient.HttpClient
	logger   *slog.Logger
}

// NewGeminiClient constructs a GeminiClient. An empty endpoint defaults to
// the public Gemini API. A nil logger defaults to slog.Default().
func NewGeminiClient(apiKey, model, endpoint string, logger *slog.Logger) *GeminiClient {
	if endpoint == "" {
		endpoint = defaultGeminiEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		http:     httpclient.GetClient(endpoint),
		logger:   logger,
	}
}

func convertMessages(messages []Message) (*geminiContent, []geminiContent) {
	var systemInstruction *geminiContent
	conversation := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			systemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
			continue
		}
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		conversation = append(conversation, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	return systemInstruction, conversation
}

// Complete sends req to Gemini and returns the generated content. A
// safety-filter block is not surfaced as an error: it is turned into a
// human-readable explanation in Response.Content, matching how a normal
// answer would be returned.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (Response, error) {
	systemInstruction, conversation := convertMessages(req.Messages)

	wireReq := geminiRequest{
		Contents:          conversation,
		SystemInstruction: systemInstruction,
		SafetySettings:    defaultSafetySettings,
	}
	genConfig := geminiGenerationConfig{}
	hasConfig := false
	if req.Temperature != 0 {
		temp := req.Temperature
		genConfig.Temperature = &temp
		hasConfig = true
	}
	if req.MaxTokens > 0 {
		genConfig.MaxOutputTokens = req.MaxTokens
		hasConfig = true
	}
	if hasConfig {
		wireReq.GenerationConfig = &genConfig
	}

	c.logger.Debug("llm.gemini.request", "model", c.model, "messages", len(req.Messages), "temperature", req.Temperature)

	var wireResp geminiResponse
	path := fmt.Sprintf("/models/%s:generateContent?key=%s", c.model, c.apiKey)
	if err := c.http.PostJson(path, ty.MS{}, wireReq, &wireResp, nil); err != nil {
		c.logger.Error("llm.gemini.request_failed", "model", c.model, "error", err)
		return Response{}, fmt.Errorf("gemini request failed: %w", err)
	}

	content, finishReason := extractContent(wireResp)
	if content == "" && strings.EqualFold(finishReason, "SAFETY") {
		c.logger.Warn("llm.gemini.safety_blocked", "finish_reason", finishReason)
		content = safetyBlockedMessage(finishReason)
	}

	var usage *Usage
	if wireResp.UsageMetadata != nil {
		usage = &Usage{
			PromptTokens:     wireResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: wireResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      wireResp.UsageMetadata.TotalTokenCount,
		}
	}

	c.logger.Info("llm.gemini.response", "content_length", len(content), "usage", usage)
	return Response{Content: content, Usage: usage}, nil
}

func extractContent(resp geminiResponse) (content string, finishReason string) {
	if len(resp.Candidates) == 0 {
		return "", ""
	}
	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), candidate.FinishReason
}

func safetyBlockedMessage(finishReason string) string {
	return "I apologize, but I cannot complete this query due to content safety restrictions. " +
		"This can happen with very long or complex queries. Please try:\n" +
		"1. Simplifying your query (fewer requirements/rules)\n" +
		"2. Breaking it into smaller queries\n" +
		"3. Rephrasing with less structured output requirements\n" +
		fmt.Sprintf("\nTechnical details: finish_reason=%s", finishReason)
}
