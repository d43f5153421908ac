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

const (
	testConfidenceThreshold = 0.75
	testAutoApprove         = 0.95
)

func seedInvoiceFixture(t *testing.T, erp *erpclient.Fake, amount float64) {
	t.Helper()
	erp.Seed("account.move", 1, erpclient.Record{
		"partner_id":     int64(7),
		"amount_total":   amount,
		"invoice_origin": "PO0001",
	})
	erp.Seed("purchase.order", 100, erpclient.Record{"name": "PO0001", "amount_total": 1000.0})
	erp.Seed("res.partner", 7, erpclient.Record{})
	erp.Methods["account.move.action_post"] = func(ids []int64, args []interface{}) (interface{}, error) {
		return nil, nil
	}
}

func seedGoodsReceipt(erp *erpclient.Fake, poID int64, done bool) {
	state := "draft"
	if done {
		state = "done"
	}
	erp.Seed("stock.picking", poID+900, erpclient.Record{"purchase_id": poID, "state": state})
}

func newProcureToPayRunner() (*agent.Runner, *audit.FakeAgentRunStore) {
	_, _, _, runs := audit.NewFakeStore()
	return agent.NewRunner(runs, time.Hour), runs
}

func TestProcureToPayAutoApprovesHighConfidenceMatch(t *testing.T) {
	erp := erpclient.NewFake()
	seedInvoiceFixture(t, erp, 1000.0)
	seedGoodsReceipt(erp, 100, true)

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{
		{Name: assessMatchTool.Name, Input: map[string]interface{}{"confidence": 0.99, "reasoning": "exact match"}},
	}})

	sender := notify.NewFake()
	g := ProcureToPayGraph(erp, llm, sender, testConfidenceThreshold, testAutoApprove)
	require.NoError(t, g.Validate())

	runner, _ := newProcureToPayRunner()
	outcome, err := runner.Start(context.Background(), g, "account.move", "1", agent.State{"invoice_id": int64(1)}, agent.Guardrails{MaxSteps: 20, MaxTokens: 10000, LoopThreshold: 5})
	require.NoError(t, err)

	assert.Equal(t, agent.StatusCompleted, outcome.Status)
	assert.Equal(t, true, outcome.FinalState["bill_posted"])
	assert.Equal(t, 1, sender.Count())
}

func TestProcureToPaySuspendsForApprovalAtMidConfidence(t *testing.T) {
	erp := erpclient.NewFake()
	seedInvoiceFixture(t, erp, 1000.0)
	seedGoodsReceipt(erp, 100, true)

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{
		{Name: assessMatchTool.Name, Input: map[string]interface{}{"confidence": 0.80, "reasoning": "close enough"}},
	}})

	sender := notify.NewFake()
	g := ProcureToPayGraph(erp, llm, sender, testConfidenceThreshold, testAutoApprove)
	require.NoError(t, g.Validate())

	runner, _ := newProcureToPayRunner()
	gr := agent.Guardrails{MaxSteps: 20, MaxTokens: 10000, LoopThreshold: 5}
	outcome, err := runner.Start(context.Background(), g, "account.move", "1", agent.State{"invoice_id": int64(1)}, gr)
	require.NoError(t, err)
	require.Equal(t, agent.StatusSuspended, outcome.Status)
	require.NotEmpty(t, outcome.SuspensionID)

	resumed, err := runner.Resume(context.Background(), g, outcome.RunID, outcome.SuspensionID, agent.State{"approved_by": "controller@example.com"}, gr)
	require.NoError(t, err)
	assert.Equal(t, agent.StatusCompleted, resumed.Status)
	assert.Equal(t, true, resumed.FinalState["bill_posted"])
	assert.Equal(t, "controller@example.com", resumed.FinalState["approved_by"])
}

func TestProcureToPayEscalatesWhenGoodsNotReceived(t *testing.T) {
	erp := erpclient.NewFake()
	seedInvoiceFixture(t, erp, 1000.0)
	// No goods receipt seeded: check_goods_receipt finds zero done pickings.

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{
		{Name: assessMatchTool.Name, Input: map[string]interface{}{"confidence": 0.99, "reasoning": "amounts match"}},
	}})

	sender := notify.NewFake()
	g := ProcureToPayGraph(erp, llm, sender, testConfidenceThreshold, testAutoApprove)
	require.NoError(t, g.Validate())

	runner, _ := newProcureToPayRunner()
	outcome, err := runner.Start(context.Background(), g, "account.move", "1", agent.State{"invoice_id": int64(1)}, agent.Guardrails{MaxSteps: 20, MaxTokens: 10000, LoopThreshold: 5})
	require.NoError(t, err)
	assert.Equal(t, agent.StatusSuspended, outcome.Status)
	assert.Equal(t, false, outcome.FinalState["goods_received"])
}
