package agents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
)

func TestSelectCollectionStrategyBoundaries(t *testing.T) {
	assert.Equal(t, StrategyGentleReminder, SelectCollectionStrategy(0, 100))
	assert.Equal(t, StrategyGentleReminder, SelectCollectionStrategy(7, 100000))
	assert.Equal(t, StrategyFirmNotice, SelectCollectionStrategy(8, 1000))
	assert.Equal(t, StrategyFirmNotice, SelectCollectionStrategy(30, EscalationAmountThreshold-0.01))
	assert.Equal(t, StrategyEscalate, SelectCollectionStrategy(30, EscalationAmountThreshold))
	assert.Equal(t, StrategyEscalate, SelectCollectionStrategy(31, 10))
}

func TestCollectionCreditImpactBoundaries(t *testing.T) {
	assert.Equal(t, -1.0, CollectionCreditImpact(7))
	assert.Equal(t, -3.0, CollectionCreditImpact(8))
	assert.Equal(t, -3.0, CollectionCreditImpact(30))
	assert.Equal(t, -8.0, CollectionCreditImpact(31))
	assert.Equal(t, -8.0, CollectionCreditImpact(60))
	assert.Equal(t, -15.0, CollectionCreditImpact(61))
}

func TestCollectionGraphAppliesStrategyAndNotifies(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 7, erpclient.Record{})
	sender := notify.NewFake()
	g := CollectionGraph(erp, sender)
	require.NoError(t, g.Validate())

	_, _, _, runs := audit.NewFakeStore()
	runner := agent.NewRunner(runs, time.Hour)
	outcome, err := runner.Start(context.Background(), g, "res.partner", "7", agent.State{
		"partner_id":   int64(7),
		"overdue_days": 45,
		"amount_due":   2000.0,
	}, agent.Guardrails{MaxSteps: 10, MaxTokens: 1000, LoopThreshold: 5})
	require.NoError(t, err)

	assert.Equal(t, agent.StatusCompleted, outcome.Status)
	assert.Equal(t, StrategyEscalate, outcome.FinalState["strategy"])
	assert.Equal(t, -8.0, outcome.FinalState["credit_impact"])
	assert.Equal(t, 1, sender.Count())
}
