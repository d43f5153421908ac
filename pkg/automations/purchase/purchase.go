// Package purchase is the C10 domain automation for the "purchase" slice
// of spec.md §2's "CRM/sales/purchase/HR/project" bucket, grounded on
// original_source/ai_service/app/automations/purchase.py: it recommends a
// vendor when a purchase order is created, sweeps products below their
// reorder point to raise purchase orders, and matches an incoming vendor
// bill to open purchase orders. AutomationType "purchase".
package purchase

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

const AutomationType = "purchase"

var selectVendorTool = llmclient.ToolDescriptor{
	Name:        "select_vendor",
	Description: "Select the best vendor for a product based on price, delivery, and quality",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"vendor_id":  map[string]interface{}{"type": "integer"},
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"vendor_id", "confidence"},
	},
}

var autoPOTool = llmclient.ToolDescriptor{
	Name:        "create_purchase_order",
	Description: "Generate purchase order lines for products below reorder point",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"lines": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"product_id": map[string]interface{}{"type": "integer"},
						"vendor_id":  map[string]interface{}{"type": "integer"},
						"quantity":   map[string]interface{}{"type": "number"},
					},
				},
			},
			"urgency":    map[string]interface{}{"type": "string", "enum": []string{"low", "medium", "high", "critical"}},
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"lines", "urgency", "confidence"},
	},
}

var billMatchTool = llmclient.ToolDescriptor{
	Name:        "match_vendor_bill",
	Description: "Match an incoming vendor bill to existing purchase orders",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"matched_po_ids": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}},
			"match_type":     map[string]interface{}{"type": "string", "enum": []string{"exact", "partial", "overage", "none"}},
			"confidence":     map[string]interface{}{"type": "number"},
			"reasoning":      map[string]interface{}{"type": "string"},
		},
		"required": []string{"matched_po_ids", "match_type", "confidence"},
	},
}

// Automation selects vendors, raises purchase orders below reorder point,
// and matches vendor bills to open purchase orders.
type Automation struct {
	erp erpclient.Client
	llm llmclient.Client
}

func New(erp erpclient.Client, llm llmclient.Client) *Automation {
	return &Automation{erp: erp, llm: llm}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"purchase.order"} }

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:purchase.order": a.handleNewPO,
		"write:purchase.order":  a.handlePOChanged,
	}
}

// handleNewPO mirrors purchase.py's on_create_purchase_order.
func (a *Automation) handleNewPO(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	orderID, _ := ev.Payload["id"].(int64)

	lines, err := a.erp.SearchRead(ctx, "purchase.order.line",
		erpclient.Domain{erpclient.Triple{Field: "order_id", Operator: "=", Value: orderID}},
		[]string{"product_id", "product_qty", "price_unit"}, erpclient.SearchOptions{})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("read PO lines for %d: %w", orderID, err)
	}
	if len(lines) == 0 {
		return automation.AutomationResult{
			Success: true, ActionName: "no_action", Model: "purchase.order", RecordID: ev.RecordID,
			Confidence: 1.0, Reasoning: "no order lines to optimize",
		}, nil
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You select the best vendor for a purchase order considering price, lead time, and reliability.",
		UserMessage:  fmt.Sprintf("Purchase order %d has %d lines. Select the best vendor.", orderID, len(lines)),
		Tools:        []llmclient.ToolDescriptor{selectVendorTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("select vendor: %w", err)
	}

	var vendorID int64
	var confidence float64
	var reasoning string
	for _, call := range result.ToolCalls {
		if call.Name != selectVendorTool.Name {
			continue
		}
		vendorID, _ = toInt64(call.Input["vendor_id"])
		confidence, _ = call.Input["confidence"].(float64)
		reasoning, _ = call.Input["reasoning"].(string)
	}

	return automation.AutomationResult{
		ActionName: "select_vendor", Model: "purchase.order", RecordID: ev.RecordID,
		Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
		ChangesMade:   map[string]interface{}{"vendor_id": vendorID},
		NeedsApproval: true,
		Apply: func(ctx context.Context) error {
			if vendorID == 0 {
				return nil
			}
			return a.erp.Write(ctx, "purchase.order", []int64{orderID}, erpclient.Record{"partner_id": vendorID})
		},
	}, nil
}

// handlePOChanged mirrors purchase.py's on_write_purchase_order: every
// update is logged for later bill matching, no immediate action.
func (a *Automation) handlePOChanged(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	return automation.AutomationResult{
		Success: true, ActionName: "no_action", Model: "purchase.order", RecordID: ev.RecordID,
		Confidence: 1.0, Reasoning: "PO update logged",
	}, nil
}

// ScanCheckReorderPoints raises purchase orders for products that have
// fallen below their reorder point, mirroring purchase.py's
// scan_check_reorder_points. Critical-urgency suggestions are skipped and
// no purchase order is created for them (the original skips
// auto-execution for "critical" urgency too,
// since an urgent PO usually means something else already went wrong).
// Matches pkg/scheduler.JobFunc's shape for cron registration.
func (a *Automation) ScanCheckReorderPoints(ctx context.Context) (string, error) {
	ids, err := a.erp.Search(ctx, "stock.warehouse.orderpoint",
		erpclient.Domain{erpclient.Triple{Field: "active", Operator: "=", Value: true}},
		erpclient.SearchOptions{Limit: 200})
	if err != nil {
		return "", fmt.Errorf("list reorder points: %w", err)
	}
	if len(ids) == 0 {
		return "0 products below reorder point", nil
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You generate purchase order lines for products below their reorder point, grouping by vendor to minimize shipping costs.",
		UserMessage:  fmt.Sprintf("%d reorder rules are active. Recommend purchase orders.", len(ids)),
		Tools:        []llmclient.ToolDescriptor{autoPOTool},
	})
	if err != nil {
		return "", fmt.Errorf("check reorder points: %w", err)
	}

	created := 0
	for _, call := range result.ToolCalls {
		if call.Name != autoPOTool.Name {
			continue
		}
		urgency, _ := call.Input["urgency"].(string)
		if urgency == "critical" {
			continue
		}
		lines, _ := call.Input["lines"].([]interface{})
		n, err := a.createPurchaseOrders(ctx, lines)
		if err != nil {
			return "", err
		}
		created += n
	}
	return fmt.Sprintf("%d reorder rules checked, %d PO lines created", len(ids), created), nil
}

func (a *Automation) createPurchaseOrders(ctx context.Context, lines []interface{}) (int, error) {
	byVendor := map[int64][]map[string]interface{}{}
	for _, raw := range lines {
		line, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		vendorID, ok := toInt64(line["vendor_id"])
		if !ok || vendorID == 0 {
			continue
		}
		byVendor[vendorID] = append(byVendor[vendorID], line)
	}

	created := 0
	for vendorID, vendorLines := range byVendor {
		poID, err := a.erp.Create(ctx, "purchase.order", erpclient.Record{"partner_id": vendorID})
		if err != nil {
			return created, fmt.Errorf("create PO for vendor %d: %w", vendorID, err)
		}
		for _, line := range vendorLines {
			productID, _ := toInt64(line["product_id"])
			qty, _ := line["quantity"].(float64)
			if _, err := a.erp.Create(ctx, "purchase.order.line", erpclient.Record{
				"order_id": poID, "product_id": productID, "product_qty": qty,
			}); err != nil {
				return created, fmt.Errorf("create PO line for vendor %d: %w", vendorID, err)
			}
			created++
		}
	}
	return created, nil
}

// MatchVendorBill matches an incoming vendor bill to open purchase
// orders from the same vendor, mirroring purchase.py's action_match_bills.
func (a *Automation) MatchVendorBill(ctx context.Context, billID int64) (automation.AutomationResult, error) {
	records, err := a.erp.Read(ctx, "account.move", []int64{billID}, []string{"move_type", "partner_id", "amount_total"})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("read bill %d: %w", billID, err)
	}
	if len(records) == 0 {
		return automation.AutomationResult{Success: false, ActionName: "match_bills", Reasoning: "bill not found"}, nil
	}
	moveType, _ := records[0]["move_type"].(string)
	if moveType != "in_invoice" && moveType != "in_refund" {
		return automation.AutomationResult{Success: false, ActionName: "match_bills", Reasoning: "not a vendor bill"}, nil
	}
	partnerID, _ := records[0]["partner_id"].(int64)

	openPOs, err := a.erp.SearchRead(ctx, "purchase.order",
		erpclient.Domain{
			erpclient.Triple{Field: "partner_id", Operator: "=", Value: partnerID},
			erpclient.Triple{Field: "state", Operator: "=", Value: "purchase"},
		},
		[]string{"id", "name", "amount_total"}, erpclient.SearchOptions{Limit: 20})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("list open POs for vendor %d: %w", partnerID, err)
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You match an incoming vendor bill to open purchase orders by amount, date, and reference.",
		UserMessage:  fmt.Sprintf("Bill %d against %d open purchase orders for vendor %d.", billID, len(openPOs), partnerID),
		Tools:        []llmclient.ToolDescriptor{billMatchTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("match vendor bill: %w", err)
	}

	for _, call := range result.ToolCalls {
		if call.Name != billMatchTool.Name {
			continue
		}
		confidence, _ := call.Input["confidence"].(float64)
		reasoning, _ := call.Input["reasoning"].(string)
		matchType, _ := call.Input["match_type"].(string)
		return automation.AutomationResult{
			Success: true, ActionName: "match_bills", Model: "account.move", RecordID: fmt.Sprintf("%d", billID),
			Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
			ChangesMade:   map[string]interface{}{"match_type": matchType},
			NeedsApproval: matchType != "exact",
		}, nil
	}
	return automation.AutomationResult{Success: false, ActionName: "match_bills", Reasoning: "failed to match vendor bill"}, nil
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
