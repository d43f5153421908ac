// Package agents holds the concrete graphs spec.md §4.6 names: builder
// functions returning a *agent.Graph wired to the C1/C2 ports (erpclient,
// llmclient) and the C-supplement notification port (pkg/notify), ready
// for pkg/agent.Registry.Register. The per-node shape (read from the ERP,
// ask the LLM for a structured judgment, write back, notify) generalizes
// the teacher's ReAct tool-calling turn (pkg/agent/controller/react.go:
// call LLM, parse a structured action, execute a tool, observe the
// result) from one conversation loop into one node per business step.
package agents

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
)

// ProcureToPayName is the agent name ProcureToPayGraph registers under.
const ProcureToPayName = "procure_to_pay"

// assessMatchTool asks the LLM to judge whether an invoice matches its
// purchase order, returning a structured confidence and reasoning instead
// of free text (spec.md §4.6's "LLM tool call with structured schema",
// generalized from MonthEndCloseAgent's report step to every agent that
// needs a calibrated confidence score).
var assessMatchTool = llmclient.ToolDescriptor{
	Name:        "assess_invoice_match",
	Description: "Judge whether an invoice matches its purchase order and goods receipt",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"confidence", "reasoning"},
	},
}

// ProcureToPayGraph builds the invoice-to-payment agent: extract -> PO
// match -> validate amounts -> check goods receipt -> create draft bill
// -> route for approval (auto_approve / needs_approval / escalate) ->
// post bill -> update vendor score -> notify (spec.md §4.6).
// confidenceThreshold/autoApprove are τ_d/τ_a (config.ResolvedThresholds),
// reused here for agent routing since spec.md names no separate routing
// rule for this graph (documented as an Open Question decision in
// DESIGN.md).
func ProcureToPayGraph(erp erpclient.Client, llm llmclient.Client, sender notify.Sender, confidenceThreshold, autoApprove float64) *agent.Graph {
	g := agent.NewGraph(ProcureToPayName, "extract")

	g.AddNode("extract", extractInvoiceNode(erp)).AddEdge("extract", "po_match")
	g.AddNode("po_match", poMatchNode(erp)).AddEdge("po_match", "validate_amounts")
	g.AddNode("validate_amounts", validateAmountsNode(llm)).AddEdge("validate_amounts", "check_goods_receipt")
	g.AddNode("check_goods_receipt", checkGoodsReceiptNode(erp)).AddEdge("check_goods_receipt", "create_draft_bill")
	g.AddNode("create_draft_bill", createDraftBillNode(erp)).AddEdge("create_draft_bill", "route_for_approval")

	g.AddNode("route_for_approval", passthroughNode).AddConditionalEdge(
		"route_for_approval",
		approvalRouter(confidenceThreshold, autoApprove),
		map[string]string{
			"auto_approve":   "post_bill",
			"needs_approval": "await_approval",
			"escalate":       "escalate_review",
		},
	)

	g.AddNode("await_approval", awaitApprovalNode).AddEdge("await_approval", "post_bill")
	g.AddNode("escalate_review", escalateReviewNode).AddEdge("escalate_review", agent.End)

	g.AddNode("post_bill", postBillNode(erp)).AddEdge("post_bill", "update_vendor_score")
	g.AddNode("update_vendor_score", updateVendorScoreNode(erp)).AddEdge("update_vendor_score", "notify")
	g.AddNode("notify", notifyNode(sender, "Procure-to-pay bill processed")).AddEdge("notify", agent.End)

	return g
}

func passthroughNode(_ context.Context, _ agent.State) (agent.NodeResult, error) {
	return agent.NodeResult{}, nil
}

func approvalRouter(confidenceThreshold, autoApprove float64) agent.Router {
	return func(s agent.State) string {
		goodsReceived, _ := s["goods_received"].(bool)
		confidence, _ := s["confidence"].(float64)
		if !goodsReceived {
			return "escalate"
		}
		switch {
		case confidence >= autoApprove:
			return "auto_approve"
		case confidence >= confidenceThreshold:
			return "needs_approval"
		default:
			return "escalate"
		}
	}
}

func extractInvoiceNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		invoiceID, _ := s["invoice_id"].(int64)
		records, err := erp.Read(ctx, "account.move", []int64{invoiceID}, []string{"partner_id", "amount_total", "invoice_origin", "ref"})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("extract invoice %d: %w", invoiceID, err)
		}
		if len(records) == 0 {
			return agent.NodeResult{}, fmt.Errorf("extract invoice %d: not found", invoiceID)
		}
		rec := records[0]
		poNumber, _ := rec["invoice_origin"].(string)
		if poNumber == "" {
			poNumber, _ = rec["ref"].(string)
		}
		return agent.NodeResult{Partial: agent.State{
			"invoice_amount": rec["amount_total"],
			"vendor_id":      rec["partner_id"],
			"po_number":      poNumber,
		}}, nil
	}
}

func poMatchNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		poNumber, _ := s["po_number"].(string)
		ids, err := erp.Search(ctx, "purchase.order", erpclient.Domain{erpclient.Triple{Field: "name", Operator: "=", Value: poNumber}}, erpclient.SearchOptions{Limit: 1})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("po match %q: %w", poNumber, err)
		}
		if len(ids) == 0 {
			return agent.NodeResult{Partial: agent.State{"po_id": nil, "po_amount": 0.0}}, nil
		}
		records, err := erp.Read(ctx, "purchase.order", ids, []string{"amount_total"})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("po match read %d: %w", ids[0], err)
		}
		return agent.NodeResult{Partial: agent.State{
			"po_id":     ids[0],
			"po_amount": records[0]["amount_total"],
		}}, nil
	}
}

func validateAmountsNode(llm llmclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		invoiceAmount, _ := s["invoice_amount"].(float64)
		poAmount, _ := s["po_amount"].(float64)
		variance := 0.0
		if poAmount != 0 {
			variance = (invoiceAmount - poAmount) / poAmount
			if variance < 0 {
				variance = -variance
			}
		}

		result, err := llm.Analyze(ctx, llmclient.AnalyzeRequest{
			SystemPrompt: "You validate vendor invoices against purchase orders for an accounts payable automation.",
			UserMessage:  fmt.Sprintf("Invoice amount %.2f, PO amount %.2f, variance %.4f. Assess the match.", invoiceAmount, poAmount, variance),
			Tools:        []llmclient.ToolDescriptor{assessMatchTool},
		})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("validate amounts: %w", err)
		}

		confidence, reasoning := extractMatchAssessment(result, variance)
		return agent.NodeResult{
			Partial:    agent.State{"amount_variance": variance, "confidence": confidence, "reasoning": reasoning},
			TokensUsed: result.TokensUsed,
		}, nil
	}
}

func extractMatchAssessment(result *llmclient.AnalyzeResult, variance float64) (float64, string) {
	for _, call := range result.ToolCalls {
		if call.Name != assessMatchTool.Name {
			continue
		}
		confidence, _ := call.Input["confidence"].(float64)
		reasoning, _ := call.Input["reasoning"].(string)
		return confidence, reasoning
	}
	// Fallback when the provider answered in free text instead of a tool
	// call: a tight variance still stands as a high-confidence match.
	if variance <= 0.01 {
		return 0.99, result.Text
	}
	return 0.5, result.Text
}

func checkGoodsReceiptNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		poID, ok := s["po_id"].(int64)
		if !ok || poID == 0 {
			return agent.NodeResult{Partial: agent.State{"goods_received": false}}, nil
		}
		count, err := erp.SearchCount(ctx, "stock.picking", erpclient.Domain{
			erpclient.Triple{Field: "purchase_id", Operator: "=", Value: poID},
			erpclient.Triple{Field: "state", Operator: "=", Value: "done"},
		})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("check goods receipt for PO %d: %w", poID, err)
		}
		return agent.NodeResult{Partial: agent.State{"goods_received": count > 0}}, nil
	}
}

func createDraftBillNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		billID, err := erp.Create(ctx, "account.move", erpclient.Record{
			"move_type":  "in_invoice",
			"state":      "draft",
			"partner_id": s["vendor_id"],
			"amount_total": s["invoice_amount"],
		})
		if err != nil {
			return agent.NodeResult{}, fmt.Errorf("create draft bill: %w", err)
		}
		return agent.NodeResult{Partial: agent.State{"draft_bill_id": billID}}, nil
	}
}

func awaitApprovalNode(_ context.Context, _ agent.State) (agent.NodeResult, error) {
	return agent.NodeResult{NeedsSuspension: true, SuspensionReason: "awaiting_bill_approval"}, nil
}

func escalateReviewNode(_ context.Context, _ agent.State) (agent.NodeResult, error) {
	return agent.NodeResult{NeedsSuspension: true, SuspensionReason: "escalate_manual_review"}, nil
}

func postBillNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		billID, _ := s["draft_bill_id"].(int64)
		if _, err := erp.ExecuteMethod(ctx, "account.move", "action_post", []int64{billID}, nil); err != nil {
			return agent.NodeResult{}, fmt.Errorf("post bill %d: %w", billID, err)
		}
		return agent.NodeResult{Partial: agent.State{"bill_posted": true}}, nil
	}
}

func updateVendorScoreNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		vendorID, _ := s["vendor_id"].(int64)
		confidence, _ := s["confidence"].(float64)
		delta := -1.0
		if confidence >= 0.95 {
			delta = 1.0
		}
		if vendorID != 0 {
			if err := erp.Write(ctx, "res.partner", []int64{vendorID}, erpclient.Record{"vendor_score_delta": delta}); err != nil {
				return agent.NodeResult{}, fmt.Errorf("update vendor score for %d: %w", vendorID, err)
			}
		}
		return agent.NodeResult{Partial: agent.State{"vendor_score_delta": delta}}, nil
	}
}

func notifyNode(sender notify.Sender, subject string) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		outcome, err := sender.Notify(ctx, notify.Message{
			Subject: subject,
			Body:    fmt.Sprintf("run state: %v", s),
		})
		if err != nil {
			return agent.NodeResult{Partial: agent.State{"notify_outcome": string(outcome)}}, nil
		}
		return agent.NodeResult{Partial: agent.State{"notify_outcome": string(outcome)}}, nil
	}
}
