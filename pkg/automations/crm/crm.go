// Package crm is the C10 domain automation for the "CRM" slice of
// spec.md §2's "CRM/sales/purchase/HR/project" bucket (the sales,
// purchase, HR, and project slices live in their own sibling packages):
// it qualifies a newly created lead via the LLM port and sweeps for
// leads that have gone stale without follow-up. AutomationType "crm".
package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

const AutomationType = "crm"

const StaleAfter = 14 * 24 * time.Hour

var qualifyTool = llmclient.ToolDescriptor{
	Name:        "qualify_lead",
	Description: "Assign a priority tier to a newly created sales lead",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"priority":   map[string]interface{}{"type": "string", "enum": []string{"hot", "warm", "cold"}},
			"confidence": map[string]interface{}{"type": "number"},
			"reasoning":  map[string]interface{}{"type": "string"},
		},
		"required": []string{"priority", "confidence"},
	},
}

// Automation qualifies leads and sweeps for staleness.
type Automation struct {
	erp erpclient.Client
	llm llmclient.Client
}

func New(erp erpclient.Client, llm llmclient.Client) *Automation {
	return &Automation{erp: erp, llm: llm}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"crm.lead"} }

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:crm.lead": a.handleNewLead,
	}
}

func (a *Automation) handleNewLead(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	description, _ := ev.Payload["description"].(string)
	leadID, _ := ev.Payload["id"].(int64)

	result, err := a.llm.Analyze(ctx, llmclient.AnalyzeRequest{
		SystemPrompt: "You triage inbound sales leads into hot, warm, or cold priority tiers.",
		UserMessage:  fmt.Sprintf("Lead description: %q. Assign a priority.", description),
		Tools:        []llmclient.ToolDescriptor{qualifyTool},
	})
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("qualify lead: %w", err)
	}

	priority, confidence, reasoning := extractQualification(result)
	return automation.AutomationResult{
		ActionName:  "qualify_lead",
		Model:       "crm.lead",
		RecordID:    ev.RecordID,
		Confidence:  confidence,
		Reasoning:   reasoning,
		ChangesMade: map[string]interface{}{"priority": priority},
		TokensUsed:  result.TokensUsed,
		Apply: func(ctx context.Context) error {
			return a.erp.Write(ctx, "crm.lead", []int64{leadID}, erpclient.Record{"priority": priority})
		},
	}, nil
}

func extractQualification(result *llmclient.AnalyzeResult) (priority string, confidence float64, reasoning string) {
	for _, call := range result.ToolCalls {
		if call.Name != qualifyTool.Name {
			continue
		}
		priority, _ = call.Input["priority"].(string)
		confidence, _ = call.Input["confidence"].(float64)
		reasoning, _ = call.Input["reasoning"].(string)
		return priority, confidence, reasoning
	}
	return "cold", 0.0, result.Text
}

// ScanStaleLeads flags every open lead whose last activity predates
// StaleAfter, returning how many were flagged. Idempotent: a lead
// already marked stale is skipped on a re-run the same day (spec.md
// §4.8's scan idempotency requirement).
func (a *Automation) ScanStaleLeads(ctx context.Context, asOf time.Time) (int, error) {
	records, err := a.erp.SearchRead(ctx, "crm.lead",
		erpclient.Domain{erpclient.Triple{Field: "stale", Operator: "=", Value: false}},
		[]string{"id", "last_activity_at"}, erpclient.SearchOptions{})
	if err != nil {
		return 0, fmt.Errorf("scan stale leads: %w", err)
	}

	flagged := 0
	for _, rec := range records {
		last, ok := rec["last_activity_at"].(time.Time)
		if !ok || asOf.Sub(last) < StaleAfter {
			continue
		}
		id, _ := rec["id"].(int64)
		if err := a.erp.Write(ctx, "crm.lead", []int64{id}, erpclient.Record{"stale": true}); err != nil {
			return flagged, fmt.Errorf("flag lead %d stale: %w", id, err)
		}
		flagged++
	}
	return flagged, nil
}
