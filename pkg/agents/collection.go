package agents

import (
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
)

// CollectionName is the agent name CollectionGraph registers under.
const CollectionName = "collection"

// Collection strategies, in increasing order of severity.
const (
	StrategyGentleReminder = "gentle_reminder"
	StrategyFirmNotice     = "firm_notice"
	StrategyEscalate       = "escalate"
)

// EscalationAmountThreshold forces escalate regardless of overdue_days
// once amount_due reaches it (spec.md §4.6).
const EscalationAmountThreshold = 50000.0

// SelectCollectionStrategy is the pure function spec.md §4.6 names:
// strategy is a function of (overdue_days, amount_due) alone, with a
// large-balance override that forces escalation even inside the
// firm_notice window.
func SelectCollectionStrategy(overdueDays int, amountDue float64) string {
	switch {
	case overdueDays <= 7:
		return StrategyGentleReminder
	case overdueDays <= 30:
		if amountDue >= EscalationAmountThreshold {
			return StrategyEscalate
		}
		return StrategyFirmNotice
	default:
		return StrategyEscalate
	}
}

// CollectionCreditImpact is the stepwise map on overdue_days spec.md
// §4.6 names, applied to a customer's credit score.
func CollectionCreditImpact(overdueDays int) float64 {
	switch {
	case overdueDays <= 7:
		return -1.0
	case overdueDays <= 30:
		return -3.0
	case overdueDays <= 60:
		return -8.0
	default:
		return -15.0
	}
}

// CollectionGraph builds the overdue-receivable agent: select a
// strategy and credit impact from (overdue_days, amount_due) alone, log
// the chosen action against the customer, then notify.
func CollectionGraph(erp erpclient.Client, sender notify.Sender) *agent.Graph {
	g := agent.NewGraph(CollectionName, "select_strategy")

	g.AddNode("select_strategy", selectStrategyNode).AddEdge("select_strategy", "apply_action")
	g.AddNode("apply_action", applyCollectionActionNode(erp)).AddEdge("apply_action", "notify")
	g.AddNode("notify", notifyNode(sender, "Collection action taken")).AddEdge("notify", agent.End)

	return g
}

func selectStrategyNode(_ context.Context, s agent.State) (agent.NodeResult, error) {
	overdueDays := intOf(s["overdue_days"])
	amountDue := floatOf(s["amount_due"])

	strategy := SelectCollectionStrategy(overdueDays, amountDue)
	creditImpact := CollectionCreditImpact(overdueDays)

	return agent.NodeResult{Partial: agent.State{
		"strategy":      strategy,
		"credit_impact": creditImpact,
	}}, nil
}

func applyCollectionActionNode(erp erpclient.Client) agent.NodeFunc {
	return func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
		partnerID := intOf(s["partner_id"])
		strategy, _ := s["strategy"].(string)
		creditImpact, _ := s["credit_impact"].(float64)

		if partnerID != 0 {
			if err := erp.Write(ctx, "res.partner", []int64{int64(partnerID)}, erpclient.Record{
				"credit_score_delta":   creditImpact,
				"collection_strategy":  strategy,
			}); err != nil {
				return agent.NodeResult{}, fmt.Errorf("apply collection action for partner %d: %w", partnerID, err)
			}
		}
		return agent.NodeResult{Partial: agent.State{"action_applied": true}}, nil
	}
}

func intOf(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func floatOf(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
