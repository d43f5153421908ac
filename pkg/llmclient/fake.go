package llmclient

import (
	"context"
	"fmt"
	"sync"
)

// Fake is a scripted Client used by automation and agent unit tests. Each
// call to Analyze/AnalyzeWithHistory consumes the next queued response, the
// way tarsy's e2e mock LLM consumes a scripted chunk sequence.
type Fake struct {
	mu        sync.Mutex
	responses []*AnalyzeResult
	calls     []AnalyzeHistoryRequest
}

// NewFake creates a Fake with no queued responses.
func NewFake() *Fake {
	return &Fake{}
}

// Enqueue schedules result to be returned by the next Analyze/
// AnalyzeWithHistory call.
func (f *Fake) Enqueue(result *AnalyzeResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, result)
}

// Calls returns every request this Fake has received, for assertions.
func (f *Fake) Calls() []AnalyzeHistoryRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]AnalyzeHistoryRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

// Analyze implements Client.
func (f *Fake) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	return f.AnalyzeWithHistory(ctx, AnalyzeHistoryRequest{
		SystemPrompt: req.SystemPrompt,
		Messages:     []Message{{Role: RoleUser, Content: req.UserMessage}},
		Tools:        req.Tools,
		MaxTokens:    req.MaxTokens,
	})
}

// AnalyzeWithHistory implements Client.
func (f *Fake) AnalyzeWithHistory(_ context.Context, req AnalyzeHistoryRequest) (*AnalyzeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("fake llm: no queued response for call %d", len(f.calls))
	}
	result := f.responses[0]
	f.responses = f.responses[1:]

	for _, tc := range result.ToolCalls {
		desc := findTool(req.Tools, tc.Name)
		if desc == nil {
			continue
		}
		if err := validateInput(desc.InputSchema, tc.Input); err != nil {
			return nil, fmt.Errorf("fake llm: queued tool call %q violates its input_schema: %w", tc.Name, err)
		}
	}
	return result, nil
}

func findTool(tools []ToolDescriptor, name string) *ToolDescriptor {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}
