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
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
)

func TestMonthEndReadinessScoreMatchesWorkedExample(t *testing.T) {
	// total_issues=10, pending_review=8, 1 anomaly, 1 critical, 2 high:
	// 100 - 20*1 - 10*2 - 5*1 - 20*(8/10) = 100-20-20-5-16 = 39.
	score := MonthEndReadinessScore(10, 8, 1, 1, 2)
	assert.InDelta(t, 39.0, score, 0.0001)
}

func TestMonthEndReadinessScoreClampsToZero(t *testing.T) {
	score := MonthEndReadinessScore(10, 10, 10, 10, 10)
	assert.Equal(t, 0.0, score)
}

func TestMonthEndReadinessScoreNoIssuesIsFullyReady(t *testing.T) {
	assert.Equal(t, 100.0, MonthEndReadinessScore(0, 0, 0, 0, 0))
}

func TestMonthEndCloseGraphRunsEndToEnd(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("close.issue", 1, erpclient.Record{"period": "2026-07", "state": "open", "closing_step": "bank_reconciliation"})
	erp.Seed("close.issue", 2, erpclient.Record{"period": "2026-07", "state": "open", "closing_step": "ar_aging"})
	erp.Seed("close.issue", 3, erpclient.Record{"period": "2026-07", "state": "open", "closing_step": "ar_aging"})
	erp.Seed("close.issue", 4, erpclient.Record{"period": "2026-07", "state": "open", "closing_step": "misc_cleanup"})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{
		{Name: detectAnomaliesTool.Name, Input: map[string]interface{}{"anomalies": []interface{}{
			map[string]interface{}{"issue_id": float64(1), "score": 4.0},
		}}},
	}})
	llm.Enqueue(&llmclient.AnalyzeResult{Text: "Closing is mostly on track.", TokensUsed: 50})

	sender := notify.NewFake()
	g := MonthEndCloseGraph(erp, llm, sender)
	require.NoError(t, g.Validate())

	_, _, _, runs := audit.NewFakeStore()
	runner := agent.NewRunner(runs, time.Hour)
	outcome, err := runner.Start(context.Background(), g, "close.issue", "2026-07", agent.State{"period": "2026-07"}, agent.Guardrails{MaxSteps: 20, MaxTokens: 10000, LoopThreshold: 5})
	require.NoError(t, err)

	require.Equal(t, agent.StatusCompleted, outcome.Status)
	assert.Equal(t, 4, outcome.FinalState["total_issues"])
	// misc_cleanup is auto-resolved as low severity, leaving 3 pending.
	assert.Equal(t, 3, outcome.FinalState["pending_review"])
	assert.Equal(t, 1, outcome.FinalState["auto_resolved_count"])

	score, ok := outcome.FinalState["readiness_score"].(float64)
	require.True(t, ok)
	// critical=1 (bank_reconciliation), high=2 (ar_aging x2), anomalies=1,
	// pending=3/total=4: 100 - 20 - 20 - 5 - 20*(3/4) = 100-20-20-5-15 = 40.
	assert.InDelta(t, 40.0, score, 0.0001)
	assert.Equal(t, 1, sender.Count())
}
