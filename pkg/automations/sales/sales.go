// Package sales is the C10 domain automation for the "sales" slice of
// spec.md §2's "CRM/sales/purchase/HR/project" bucket, grounded on
// original_source/ai_service/app/automations/sales.py: it suggests order
// lines on a freshly created quotation with no lines yet, re-checks
// pricing once lines exist, and sweeps the open pipeline for at-risk
// deals. AutomationType "sales".
package sales

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

const AutomationType = "sales"

var suggestLinesTool = llmclient.ToolDescriptor{
	Name:        "generate_quotation_lines",
	Description: "Suggest product lines for a quotation based on customer history",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"confidence"},
	},
}

var optimizePricingTool = llmclient.ToolDescriptor{
	Name:        "optimize_pricing",
	Description: "Suggest optimal pricing and discounts for a sales order",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"confidence"},
	},
}

var forecastTool = llmclient.ToolDescriptor{
	Name:        "forecast_pipeline",
	Description: "Forecast sales pipeline outcomes and flag at-risk deals",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"at_risk_order_ids": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}},
			"confidence":        map[string]interface{}{"type": "number"},
			"reasoning":         map[string]interface{}{"type": "string"},
		},
		"required": []string{"at_risk_order_ids", "confidence"},
	},
}

// Automation suggests quotation lines/pricing and forecasts the pipeline.
type Automation struct {
	erp erpclient.Client
	llm llmclient.Client
}

func New(erp erpclient.Client, llm llmclient.Client) *Automation {
	return &Automation{erp: erp, llm: llm}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"sale.order"} }

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:sale.order": a.handleNewOrder,
		"write:sale.order":  a.handleOrderChanged,
	}
}

// handleNewOrder mirrors sales.py's on_create_sale_order: a quotation
// with order lines gets pricing optimization, one without gets product
// suggestions.
func (a *Automation) handleNewOrder(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	orderID, _ := ev.Payload["id"].(int64)
	partnerID, _ := ev.Payload["partner_id"].(int64)
	if partnerID == 0 {
		return automation.AutomationResult{
			Success: true, ActionName: "no_action", Model: "sale.order", RecordID: ev.RecordID,
			Confidence: 1.0, Reasoning: "no partner set, skipping suggestions",
		}, nil
	}

	lines, err := a.erp.SearchRead(ctx, "sale.order.line",
		erpclient.Domain{erpclient.Triple{Field: "order_id", Operator: "=", Value: orderID}},
		[]string{"product_id", "product_uom_qty", "price_unit", "discount"}, erpclient.SearchOptions{})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("read order lines for %d: %w", orderID, err)
	}

	if len(lines) > 0 {
		return a.optimizePricing(ctx, orderID, ev.RecordID, lines)
	}
	return a.suggestProducts(ctx, orderID, ev.RecordID, partnerID)
}

func (a *Automation) suggestProducts(ctx context.Context, orderID int64, recordID string, partnerID int64) (automation.AutomationResult, error) {
	pastLines, err := a.erp.SearchRead(ctx, "sale.order.line",
		erpclient.Domain{
			erpclient.Triple{Field: "order_id.partner_id", Operator: "=", Value: partnerID},
			erpclient.Triple{Field: "order_id.state", Operator: "=", Value: "sale"},
		},
		[]string{"product_id", "product_uom_qty", "price_unit"}, erpclient.SearchOptions{Limit: 100})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("read past order lines for partner %d: %w", partnerID, err)
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You suggest sales order lines for a new quotation based on customer purchase history.",
		UserMessage:  fmt.Sprintf("Customer %d has %d past order lines. Suggest likely reorders and upsells.", partnerID, len(pastLines)),
		Tools:        []llmclient.ToolDescriptor{suggestLinesTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("suggest products: %w", err)
	}
	confidence, reasoning := extractConfidence(result, suggestLinesTool.Name)

	return automation.AutomationResult{
		ActionName: "suggest_products", Model: "sale.order", RecordID: recordID,
		Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
		NeedsApproval: true,
	}, nil
}

func (a *Automation) optimizePricing(ctx context.Context, orderID int64, recordID string, lines []erpclient.Record) (automation.AutomationResult, error) {
	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You optimize pricing and discounts for a sales order, balancing margin with win probability.",
		UserMessage:  fmt.Sprintf("Order %d has %d lines. Suggest pricing adjustments.", orderID, len(lines)),
		Tools:        []llmclient.ToolDescriptor{optimizePricingTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("optimize pricing: %w", err)
	}
	confidence, reasoning := extractConfidence(result, optimizePricingTool.Name)

	return automation.AutomationResult{
		ActionName: "optimize_pricing", Model: "sale.order", RecordID: recordID,
		Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
		NeedsApproval: true,
	}, nil
}

// handleOrderChanged mirrors sales.py's on_write_sale_order: confirming
// an order (state -> "sale") ends further optimization, anything else is
// a no-op.
func (a *Automation) handleOrderChanged(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	if state, _ := ev.Payload["state"].(string); state == "sale" {
		return automation.AutomationResult{
			Success: true, ActionName: "order_confirmed", Model: "sale.order", RecordID: ev.RecordID,
			Confidence: 1.0, Reasoning: "order confirmed, no further optimization needed",
		}, nil
	}
	return automation.AutomationResult{
		Success: true, ActionName: "no_action", Model: "sale.order", RecordID: ev.RecordID,
		Confidence: 1.0, Reasoning: "no significant change requiring AI action",
	}, nil
}

func extractConfidence(result *llmclient.AnalyzeResult, toolName string) (confidence float64, reasoning string) {
	for _, call := range result.ToolCalls {
		if call.Name != toolName {
			continue
		}
		confidence, _ = call.Input["confidence"].(float64)
		reasoning, _ = call.Input["reasoning"].(string)
		return confidence, reasoning
	}
	return 0, result.Text
}

// ScanForecastPipeline sweeps open quotations/orders and flags the ones
// the LLM judges at risk, mirroring sales.py's scan_forecast_pipeline.
// Matches pkg/scheduler.JobFunc's shape for cron registration.
func (a *Automation) ScanForecastPipeline(ctx context.Context) (string, error) {
	open, err := a.erp.SearchRead(ctx, "sale.order",
		erpclient.Domain{erpclient.Triple{Field: "state", Operator: "in", Value: []interface{}{"draft", "sent"}}},
		[]string{"id", "partner_id", "amount_total", "date_order", "validity_date"},
		erpclient.SearchOptions{Limit: 100})
	if err != nil {
		return "", fmt.Errorf("list open orders: %w", err)
	}
	if len(open) == 0 {
		return "0 open orders, nothing to forecast", nil
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You forecast a sales pipeline and flag at-risk deals.",
		UserMessage:  fmt.Sprintf("%d open quotations/orders to assess for risk of loss.", len(open)),
		Tools:        []llmclient.ToolDescriptor{forecastTool},
	})
	if err != nil {
		return "", fmt.Errorf("forecast pipeline: %w", err)
	}

	flagged := 0
	for _, call := range result.ToolCalls {
		if call.Name != forecastTool.Name {
			continue
		}
		riskIDs, _ := call.Input["at_risk_order_ids"].([]interface{})
		for _, raw := range riskIDs {
			id, ok := toInt64(raw)
			if !ok {
				continue
			}
			if err := a.erp.Write(ctx, "sale.order", []int64{id}, erpclient.Record{"note": "AI pipeline risk alert"}); err != nil {
				return "", fmt.Errorf("flag at-risk order %d: %w", id, err)
			}
			flagged++
		}
	}
	return fmt.Sprintf("%d open orders assessed, %d flagged at risk", len(open), flagged), nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
