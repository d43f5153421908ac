// Package llmclient is the C2 port to the configured LLM provider: a small
// tool-calling chat surface used by automations and agent nodes to ask a
// model for a structured decision instead of free-form text.
package llmclient

import "context"

// Client is the port every automation and agent talks to instead of a
// provider's HTTP API directly.
type Client interface {
	// Analyze sends a single system/user turn and returns the model's
	// response, optionally offering tools for the model to invoke.
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error)

	// AnalyzeWithHistory sends a full conversation instead of a single
	// user message, used by agent nodes that accumulate turns across steps.
	AnalyzeWithHistory(ctx context.Context, req AnalyzeHistoryRequest) (*AnalyzeResult, error)
}

// AnalyzeRequest is a single-turn call.
type AnalyzeRequest struct {
	SystemPrompt string
	UserMessage  string
	Tools        []ToolDescriptor
	MaxTokens    int // 0 = provider default
}

// AnalyzeHistoryRequest is a multi-turn call.
type AnalyzeHistoryRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDescriptor
	MaxTokens    int
}

// Message is one turn of a conversation.
type Message struct {
	Role    string // RoleUser, RoleAssistant, RoleTool
	Content string
	// ToolCallID/ToolName are set on RoleTool messages carrying a tool's result.
	ToolCallID string
	ToolName   string
}

// Conversation message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolDescriptor describes a tool the model may choose to invoke. InputSchema
// is a JSON-Schema object (as a Go map) describing the shape of ToolCall.Input;
// every returned ToolCall is validated against it before the caller sees it.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema map[string]interface{}
}

// ToolCall is a single tool invocation the model requested.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// AnalyzeResult is the shape every provider adapter normalizes its response
// into, regardless of vendor wire format.
type AnalyzeResult struct {
	Text       string
	ToolCalls  []ToolCall
	TokensUsed int
}
