package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeminiClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient("test-key", "gemini-1.5-flash", srv.URL, nil)
}

func TestGeminiCompleteReturnsContentAndUsage(t *testing.T) {
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/models/gemini-1.5-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "boot time averages 5.2s"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 100, "candidatesTokenCount": 20, "totalTokenCount": 120}
		}`))
	})

	resp, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: "system", Content: "you are a helpful assistant"},
			{Role: "user", Content: "how fast does it boot?"},
		},
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	require.NoError(t, err)
	assert.Equal(t, "boot time averages 5.2s", resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 120, resp.Usage.TotalTokens)
}

func TestGeminiCompleteSafetyBlockProducesExplanation(t *testing.T) {
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": []}, "finishReason": "SAFETY"}]}`))
	})

	resp, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "test"}}})
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "content safety restrictions")
	assert.Contains(t, resp.Content, "finish_reason=SAFETY")
}

func TestGeminiCompleteHTTPErrorIsPropagated(t *testing.T) {
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server error"))
	})

	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "test"}}})
	assert.Error(t, err)
}

func TestGeminiCompleteNoCandidatesReturnsEmptyContent(t *testing.T) {
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	})

	resp, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "test"}}})
	require.NoError(t, err)
	assert.Empty(t, resp.Content)
	assert.Nil(t, resp.Usage)
}

func TestConvertMessagesSeparatesSystemInstruction(t *testing.T) {
	sys, conv := convertMessages([]Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	})
	require.NotNil(t, sys)
	assert.Equal(t, "be helpful", sys.Parts[0].Text)
	require.Len(t, conv, 2)
	assert.Equal(t, "user", conv[0].Role)
	assert.Equal(t, "model", conv[1].Role)
}
