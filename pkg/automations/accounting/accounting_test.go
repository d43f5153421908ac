package accounting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

func TestHandleNewLineAppliesHighConfidenceCategory(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("account.move.line", 9, erpclient.Record{"name": "AWS hosting invoice"})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{
		ToolCalls: []llmclient.ToolCall{{
			Name:  categorizeTool.Name,
			Input: map[string]interface{}{"category": "cloud_infrastructure", "confidence": 0.97, "reasoning": "matches hosting vendor"},
		}},
	})

	a := New(erp, llm)
	result, err := a.Handlers()["create:account.move.line"](context.Background(), automation.Event{
		Model: "account.move.line", RecordID: "9",
		Payload: map[string]interface{}{"id": int64(9), "name": "AWS hosting invoice"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cloud_infrastructure", result.ChangesMade["analytic_category"])
	require.NotNil(t, result.Apply)
	require.NoError(t, result.Apply(context.Background()))

	records, err := erp.Read(context.Background(), "account.move.line", []int64{9}, []string{"analytic_category"})
	require.NoError(t, err)
	assert.Equal(t, "cloud_infrastructure", records[0]["analytic_category"])
}

func TestReplayRebuildsApplyFromApprovedChanges(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("account.move.line", 9, erpclient.Record{"name": "AWS hosting invoice"})

	a := New(erp, llmclient.NewFake())
	result, err := a.Handlers()["create:account.move.line"](context.Background(), automation.Event{
		Model: "account.move.line", RecordID: "9",
		Mode:            automation.ModeExecuteApproved,
		ApprovedChanges: map[string]interface{}{"analytic_category": "travel"},
		Payload:         map[string]interface{}{"id": int64(9)},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Apply)
	require.NoError(t, result.Apply(context.Background()))

	records, err := erp.Read(context.Background(), "account.move.line", []int64{9}, []string{"analytic_category"})
	require.NoError(t, err)
	assert.Equal(t, "travel", records[0]["analytic_category"])
}
