package llmclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAnalyzeReturnsQueuedResponse(t *testing.T) {
	f := NewFake()
	f.Enqueue(&AnalyzeResult{Text: "looks good", TokensUsed: 42})

	result, err := f.Analyze(context.Background(), AnalyzeRequest{SystemPrompt: "sys", UserMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "looks good", result.Text)
	assert.Equal(t, 42, result.TokensUsed)
	assert.Len(t, f.Calls(), 1)
}

func TestFakeAnalyzeRejectsToolCallViolatingSchema(t *testing.T) {
	f := NewFake()
	f.Enqueue(&AnalyzeResult{
		ToolCalls: []ToolCall{{ID: "1", Name: "approve_invoice", Input: map[string]interface{}{}}},
	})

	tools := []ToolDescriptor{{
		Name:        "approve_invoice",
		InputSchema: map[string]interface{}{"required": []interface{}{"invoice_id"}},
	}}

	_, err := f.Analyze(context.Background(), AnalyzeRequest{Tools: tools})
	require.Error(t, err)
}

func TestFakeAnalyzeErrorsWhenExhausted(t *testing.T) {
	f := NewFake()
	_, err := f.Analyze(context.Background(), AnalyzeRequest{})
	require.Error(t, err)
}
