// Package hr is the C10 domain automation for the "HR" slice of
// spec.md §2's "CRM/sales/purchase/HR/project" bucket, grounded on
// original_source/ai_service/app/automations/hr.py: it evaluates a leave
// request against policy (auto-approving routine ones) and categorizes
// and validates a newly submitted expense. AutomationType "hr".
package hr

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

const AutomationType = "hr"

var leaveTool = llmclient.ToolDescriptor{
	Name:        "evaluate_leave_request",
	Description: "Evaluate a leave request against company policy",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"recommendation": map[string]interface{}{"type": "string", "enum": []string{"approve", "reject", "escalate"}},
			"confidence":     map[string]interface{}{"type": "number"},
			"reasoning":      map[string]interface{}{"type": "string"},
		},
		"required": []string{"recommendation", "confidence"},
	},
}

var expenseTool = llmclient.ToolDescriptor{
	Name:        "process_expense",
	Description: "Categorize and validate an expense report",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"category":       map[string]interface{}{"type": "string"},
			"recommendation": map[string]interface{}{"type": "string", "enum": []string{"approve", "reject", "escalate"}},
			"confidence":     map[string]interface{}{"type": "number"},
			"reasoning":      map[string]interface{}{"type": "string"},
		},
		"required": []string{"category", "recommendation", "confidence"},
	},
}

// Automation evaluates leave requests and processes expense reports.
type Automation struct {
	erp erpclient.Client
	llm llmclient.Client
}

func New(erp erpclient.Client, llm llmclient.Client) *Automation {
	return &Automation{erp: erp, llm: llm}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"hr.leave", "hr.expense"} }

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:hr.leave":   a.handleNewLeave,
		"create:hr.expense": a.handleNewExpense,
	}
}

// handleNewLeave mirrors hr.py's on_create_hr_leave / _evaluate_leave: a
// routine request the LLM recommends approving is auto-applied by
// Base.Dispatch once confidence clears τ_a, everything else waits for a
// human.
func (a *Automation) handleNewLeave(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	leaveID, _ := ev.Payload["id"].(int64)
	employeeID, _ := ev.Payload["employee_id"].(int64)

	existing, err := a.erp.SearchRead(ctx, "hr.leave",
		erpclient.Domain{
			erpclient.Triple{Field: "employee_id", Operator: "=", Value: employeeID},
			erpclient.Triple{Field: "state", Operator: "in", Value: []interface{}{"confirm", "validate"}},
		},
		[]string{"date_from", "date_to", "number_of_days"}, erpclient.SearchOptions{Limit: 20})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("read existing leaves for employee %d: %w", employeeID, err)
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You evaluate employee leave requests against company policy, erring on the side of caution.",
		UserMessage:  fmt.Sprintf("Leave request for employee %d, %d existing leaves on file this period.", employeeID, len(existing)),
		Tools:        []llmclient.ToolDescriptor{leaveTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("evaluate leave: %w", err)
	}

	var recommendation string
	var confidence float64
	var reasoning string
	for _, call := range result.ToolCalls {
		if call.Name != leaveTool.Name {
			continue
		}
		recommendation, _ = call.Input["recommendation"].(string)
		confidence, _ = call.Input["confidence"].(float64)
		reasoning, _ = call.Input["reasoning"].(string)
	}
	if recommendation == "" {
		return automation.AutomationResult{
			Success: false, ActionName: "evaluate_leave", Model: "hr.leave", RecordID: ev.RecordID,
			Reasoning: "leave evaluation produced no result",
		}, nil
	}

	res := automation.AutomationResult{
		ActionName: "evaluate_leave", Model: "hr.leave", RecordID: ev.RecordID,
		Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
		ChangesMade:   map[string]interface{}{"recommendation": recommendation},
		NeedsApproval: recommendation != "reject",
	}
	if recommendation == "approve" {
		res.ActionName = "approve_leave"
		res.NeedsApproval = false
		res.Apply = func(ctx context.Context) error {
			return a.erp.Write(ctx, "hr.leave", []int64{leaveID}, erpclient.Record{"state": "validate"})
		}
	}
	return res, nil
}

// handleNewExpense mirrors hr.py's on_create_hr_expense / _process_expense.
func (a *Automation) handleNewExpense(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	employeeID, _ := ev.Payload["employee_id"].(int64)

	pastExpenses, err := a.erp.SearchRead(ctx, "hr.expense",
		erpclient.Domain{
			erpclient.Triple{Field: "employee_id", Operator: "=", Value: employeeID},
			erpclient.Triple{Field: "state", Operator: "in", Value: []interface{}{"approved", "done"}},
		},
		[]string{"total_amount", "product_id"}, erpclient.SearchOptions{Limit: 20})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("read past expenses for employee %d: %w", employeeID, err)
	}

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You categorize and validate employee expense reports against policy.",
		UserMessage:  fmt.Sprintf("Expense for employee %d, %d past approved expenses on file.", employeeID, len(pastExpenses)),
		Tools:        []llmclient.ToolDescriptor{expenseTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("process expense: %w", err)
	}

	for _, call := range result.ToolCalls {
		if call.Name != expenseTool.Name {
			continue
		}
		category, _ := call.Input["category"].(string)
		recommendation, _ := call.Input["recommendation"].(string)
		confidence, _ := call.Input["confidence"].(float64)
		reasoning, _ := call.Input["reasoning"].(string)
		return automation.AutomationResult{
			Success: true, ActionName: "process_expense", Model: "hr.expense", RecordID: ev.RecordID,
			Confidence: confidence, Reasoning: reasoning, TokensUsed: result.TokensUsed,
			ChangesMade:   map[string]interface{}{"category": category, "recommendation": recommendation},
			NeedsApproval: recommendation != "approve",
		}, nil
	}
	return automation.AutomationResult{
		Success: false, ActionName: "process_expense", Model: "hr.expense", RecordID: ev.RecordID,
		Reasoning: "expense processing produced no result",
	}, nil
}
