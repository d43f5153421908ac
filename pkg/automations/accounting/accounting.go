// Package accounting is the C10 domain automation that classifies a new
// journal entry into an analytic account/expense category using the LLM
// port, one of the automations spec.md §4.8 summarizes as "watched_models
// -> handlers -> scan methods". AutomationType "accounting".
package accounting

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

const AutomationType = "accounting"

var categorizeTool = llmclient.ToolDescriptor{
	Name:        "categorize_entry",
	Description: "Assign an analytic category to a journal entry",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"category":   map[string]interface{}{"type": "string"},
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"category", "confidence"},
	},
}

// Automation classifies newly created journal entries lacking an
// analytic account.
type Automation struct {
	erp erpclient.Client
	llm llmclient.Client
}

func New(erp erpclient.Client, llm llmclient.Client) *Automation {
	return &Automation{erp: erp, llm: llm}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"account.move.line"} }

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:account.move.line": a.handleNewLine,
	}
}

func (a *Automation) handleNewLine(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	if ev.Mode == automation.ModeExecuteApproved {
		return a.replay(ev)
	}

	description, _ := ev.Payload["name"].(string)
	lineID, _ := ev.Payload["id"].(int64)

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You classify accounting journal entries into analytic expense categories.",
		UserMessage:  fmt.Sprintf("Journal line description: %q. Propose a category.", description),
		Tools:        []llmclient.ToolDescriptor{categorizeTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("categorize entry: %w", err)
	}

	category, confidence, reasoning := extractCategorization(result)
	changes := map[string]interface{}{"analytic_category": category}

	return automation.AutomationResult{
		ActionName:  "categorize_entry",
		Model:       "account.move.line",
		RecordID:    ev.RecordID,
		Confidence:  confidence,
		Reasoning:   reasoning,
		ChangesMade: changes,
		TokensUsed:  result.TokensUsed,
		Apply: func(ctx context.Context) error {
			return a.erp.Write(ctx, "account.move.line", []int64{lineID}, erpclient.Record{"analytic_category": category})
		},
	}, nil
}

// replay rebuilds Apply from the audit row's already-approved category
// instead of re-asking the LLM (spec.md §4.7's execute_approved mode).
func (a *Automation) replay(ev automation.Event) (automation.AutomationResult, error) {
	category, _ := ev.ApprovedChanges["analytic_category"].(string)
	lineID, _ := ev.Payload["id"].(int64)
	return automation.AutomationResult{
		ActionName: "categorize_entry",
		Model:      "account.move.line",
		RecordID:   ev.RecordID,
		Apply: func(ctx context.Context) error {
			return a.erp.Write(ctx, "account.move.line", []int64{lineID}, erpclient.Record{"analytic_category": category})
		},
	}, nil
}

func extractCategorization(result *llmclient.AnalyzeResult) (category string, confidence float64, reasoning string) {
	for _, call := range result.ToolCalls {
		if call.Name != categorizeTool.Name {
			continue
		}
		category, _ = call.Input["category"].(string)
		confidence, _ = call.Input["confidence"].(float64)
		reasoning, _ = call.Input["reasoning"].(string)
		return category, confidence, reasoning
	}
	return "uncategorized", 0.0, result.Text
}
