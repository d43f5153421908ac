package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLLMServer(handler http.HandlerFunc) (*HTTPClient, func()) {
	server := httptest.NewServer(handler)
	client := NewHTTPClient(HTTPClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Model:      "claude-test",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
	})
	return client, server.Close
}

func TestHTTPClientAnalyzeParsesTextAndUsage(t *testing.T) {
	client, closeFn := newTestLLMServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": "the invoice looks valid"}},
			"usage":   map[string]int{"input_tokens": 10, "output_tokens": 5},
		})
	})
	defer closeFn()

	result, err := client.Analyze(context.Background(), AnalyzeRequest{SystemPrompt: "sys", UserMessage: "check this invoice"})
	require.NoError(t, err)
	assert.Equal(t, "the invoice looks valid", result.Text)
	assert.Equal(t, 15, result.TokensUsed)
}

func TestHTTPClientAnalyzeRejectsToolCallViolatingSchema(t *testing.T) {
	client, closeFn := newTestLLMServer(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{
				"type":  "tool_use",
				"id":    "call_1",
				"name":  "approve_invoice",
				"input": map[string]interface{}{},
			}},
		})
	})
	defer closeFn()

	tools := []ToolDescriptor{{
		Name:        "approve_invoice",
		InputSchema: map[string]interface{}{"required": []interface{}{"invoice_id"}},
	}}

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Tools: tools})
	require.Error(t, err)
}

func TestHTTPClientPermanentErrorDoesNotRetry(t *testing.T) {
	attempts := 0
	client, closeFn := newTestLLMServer(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})
	defer closeFn()

	_, err := client.Analyze(context.Background(), AnalyzeRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestHTTPClientTransientErrorRetries(t *testing.T) {
	attempts := 0
	client, closeFn := newTestLLMServer(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer closeFn()

	_, err := client.Analyze(context.Background(), AnalyzeRequest{})
	require.Error(t, err)
	assert.Greater(t, attempts, 1)
}
