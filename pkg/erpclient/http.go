package erpclient

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

// HTTPClient implements Client against the ERP's JSON-RPC-style external
// API, with a circuit breaker around the upstream call and a small bounded
// retry for transient failures.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	database   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	log        *zap.Logger
}

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	BaseURL    string
	APIKey     string
	Database   string
	Timeout    time.Duration
	MaxRetries int
	Logger     *zap.Logger
}

// NewHTTPClient builds an HTTPClient with a circuit breaker tuned to trip
// after a run of consecutive upstream failures, matching the
// "upstream-transient-vs-permanent" distinction in the error taxonomy
// (pkg/apperrors).
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	breakerSettings := gobreaker.Settings{
		Name:        "erpclient",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("erp circuit breaker state change",
				zap.String("breaker", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}

	return &HTTPClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		database:   cfg.Database,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    gobreaker.NewCircuitBreaker(breakerSettings),
		maxRetries: cfg.MaxRetries,
		log:        log,
	}
}

type rpcRequest struct {
	Model  string        `json:"model"`
	Method string        `json:"method"`
	Args   []interface{} `json:"args,omitempty"`
	Kwargs interface{}   `json:"kwargs,omitempty"`
}

func (c *HTTPClient) call(ctx context.Context, req rpcRequest) (json.RawMessage, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.callOnce(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.NewUpstreamTransient("erp circuit breaker open", err)
		}
		return nil, err
	}
	return result.(json.RawMessage), nil
}

func (c *HTTPClient) callOnce(ctx context.Context, req rpcRequest) (json.RawMessage, error) {
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

func (c *HTTPClient) doRequest(ctx context.Context, req rpcRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, apperrors.NewValidation(fmt.Sprintf("failed to encode erp request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jsonrpc", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to build erp request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Odoo-Database", c.database)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamTransient("erp request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to read erp response", err)
	}

	if resp.StatusCode >= 500 {
		return nil, apperrors.NewUpstreamTransient(fmt.Sprintf("erp returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		return nil, apperrors.NewUpstreamPermanent(fmt.Sprintf("erp returned %d: %s", resp.StatusCode, respBody), nil)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to decode erp response", err)
	}
	if envelope.Error != nil {
		return nil, apperrors.NewUpstreamPermanent(envelope.Error.Message, nil)
	}
	return envelope.Result, nil
}

// Search implements Client.
func (c *HTTPClient) Search(ctx context.Context, model string, domain Domain, opts SearchOptions) ([]int64, error) {
	raw, err := c.call(ctx, rpcRequest{Model: model, Method: "search", Args: []interface{}{domain}, Kwargs: opts})
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to decode search result", err)
	}
	return ids, nil
}

// Read implements Client.
func (c *HTTPClient) Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error) {
	raw, err := c.call(ctx, rpcRequest{Model: model, Method: "read", Args: []interface{}{ids, fields}})
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to decode read result", err)
	}
	return records, nil
}

// SearchRead implements Client.
func (c *HTTPClient) SearchRead(ctx context.Context, model string, domain Domain, fields []string, opts SearchOptions) ([]Record, error) {
	raw, err := c.call(ctx, rpcRequest{
		Model: model, Method: "search_read",
		Args:   []interface{}{domain, fields},
		Kwargs: opts,
	})
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to decode search_read result", err)
	}
	return records, nil
}

// SearchCount implements Client.
func (c *HTTPClient) SearchCount(ctx context.Context, model string, domain Domain) (int, error) {
	raw, err := c.call(ctx, rpcRequest{Model: model, Method: "search_count", Args: []interface{}{domain}})
	if err != nil {
		return 0, err
	}
	var count int
	if err := json.Unmarshal(raw, &count); err != nil {
		return 0, apperrors.NewUpstreamTransient("failed to decode search_count result", err)
	}
	return count, nil
}

// Create implements Client.
func (c *HTTPClient) Create(ctx context.Context, model string, values Record) (int64, error) {
	raw, err := c.call(ctx, rpcRequest{Model: model, Method: "create", Args: []interface{}{values}})
	if err != nil {
		return 0, err
	}
	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, apperrors.NewUpstreamTransient("failed to decode create result", err)
	}
	return id, nil
}

// Write implements Client.
func (c *HTTPClient) Write(ctx context.Context, model string, ids []int64, values Record) error {
	_, err := c.call(ctx, rpcRequest{Model: model, Method: "write", Args: []interface{}{ids, values}})
	return err
}

// ExecuteMethod implements Client.
func (c *HTTPClient) ExecuteMethod(ctx context.Context, model, method string, ids []int64, args []interface{}) (interface{}, error) {
	callArgs := append([]interface{}{ids}, args...)
	raw, err := c.call(ctx, rpcRequest{Model: model, Method: method, Args: callArgs})
	if err != nil {
		return nil, err
	}
	var result interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.NewUpstreamTransient("failed to decode execute_method result", err)
	}
	return result, nil
}
