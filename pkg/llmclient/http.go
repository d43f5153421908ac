package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
)

// HTTPClient implements Client against a configured LLM provider's chat
// completions endpoint, behind a circuit breaker and a small bounded retry,
// mirroring the shape of erpclient.HTTPClient for the same failure taxonomy.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	temperature float64

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	log        *zap.Logger
}

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	Logger      *zap.Logger
}

// NewHTTPClient builds an HTTPClient with a circuit breaker tuned the same
// way as erpclient's: trip after 5 consecutive failures.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	breakerSettings := gobreaker.Settings{
		Name:        "llmclient",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("llm circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}

	return &HTTPClient{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		breaker:     gobreaker.NewCircuitBreaker(breakerSettings),
		maxRetries:  cfg.MaxRetries,
		log:         log,
	}
}

// wireMessage is the provider-agnostic wire shape posted to BaseURL. Real
// Anthropic/OpenAI/Azure adapters differ in envelope details the orchestrator
// never needs to see; this module talks to one configured endpoint shaped
// like Anthropic's Messages API, since that is the provider the bundled
// llm-providers.yaml example configures by default.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system,omitempty"`
	Messages    []wireMessage `json:"messages"`
	Tools       []wireTool    `json:"tools,omitempty"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature,omitempty"`
}

type wireContentBlock struct {
	Type  string                 `json:"type"`
	Text  string                 `json:"text,omitempty"`
	ID    string                 `json:"id,omitempty"`
	Name  string                 `json:"name,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`
}

type wireResponse struct {
	Content []wireContentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func toolsToWire(tools []ToolDescriptor) []wireTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]wireTool, len(tools))
	for i, t := range tools {
		out[i] = wireTool{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
	}
	return out
}

func (c *HTTPClient) toolByName(tools []ToolDescriptor, name string) *ToolDescriptor {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}

// Analyze implements Client.
func (c *HTTPClient) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	return c.analyze(ctx, req.SystemPrompt, []wireMessage{{Role: RoleUser, Content: req.UserMessage}}, req.Tools, req.MaxTokens)
}

// AnalyzeWithHistory implements Client.
func (c *HTTPClient) AnalyzeWithHistory(ctx context.Context, req AnalyzeHistoryRequest) (*AnalyzeResult, error) {
	messages := make([]wireMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = wireMessage{Role: m.Role, Content: m.Content}
	}
	return c.analyze(ctx, req.SystemPrompt, messages, req.Tools, req.MaxTokens)
}

func (c *HTTPClient) analyze(ctx context.Context, system string, messages []wireMessage, tools []ToolDescriptor, maxTokens int) (*AnalyzeResult, error) {
	if maxTokens == 0 {
		maxTokens = 4096
	}
	wreq := wireRequest{
		Model:       c.model,
		System:      system,
		Messages:    messages,
		Tools:       toolsToWire(tools),
		MaxTokens:   maxTokens,
		Temperature: c.temperature,
	}

	raw, err := c.call(ctx, wreq)
	if err != nil {
		return nil, err
	}

	var resp wireResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to decode llm response", err)
	}
	if resp.Error != nil {
		return nil, apperrors.NewUpstreamPermanent(resp.Error.Message, nil)
	}

	result := &AnalyzeResult{TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			result.Text += block.Text
		case "tool_use":
			if desc := c.toolByName(tools, block.Name); desc != nil {
				if err := validateInput(desc.InputSchema, block.Input); err != nil {
					return nil, apperrors.NewUpstreamPermanent(
						fmt.Sprintf("llm returned a tool_use for %q that does not satisfy its input_schema: %v", block.Name, err), nil)
				}
			}
			result.ToolCalls = append(result.ToolCalls, ToolCall{ID: block.ID, Name: block.Name, Input: block.Input})
		}
	}
	return result, nil
}

func (c *HTTPClient) call(ctx context.Context, req wireRequest) (json.RawMessage, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.callOnce(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.NewUpstreamTransient("llm circuit breaker open", err)
		}
		return nil, err
	}
	return result.(json.RawMessage), nil
}

func (c *HTTPClient) callOnce(ctx context.Context, req wireRequest) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		raw, err := c.doRequest(ctx, req)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Kind == apperrors.KindUpstreamPermanent {
			return nil, err
		}
	}
	return nil, apperrors.NewUpstreamTransient(fmt.Sprintf("exhausted %d retries", c.maxRetries), lastErr)
}

func backoff(attempt int) time.Duration {
	d := time.Duration(attempt*attempt) * 200 * time.Millisecond
	if d > 5*time.Second {
		return 5 * time.Second
	}
	return d
}

func (c *HTTPClient) doRequest(ctx context.Context, req wireRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewValidation(fmt.Sprintf("failed to encode llm request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to build llm request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamTransient("llm request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to read llm response", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, apperrors.NewUpstreamTransient(fmt.Sprintf("llm provider returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return nil, apperrors.NewUpstreamPermanent(fmt.Sprintf("llm provider returned %d: %s", resp.StatusCode, respBody), nil)
	}
	return respBody, nil
}
