package crm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

func TestHandleNewLeadAppliesQualifiedPriority(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("crm.lead", 3, erpclient.Record{"description": "Enterprise RFP for 500 seats"})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{
		ToolCalls: []llmclient.ToolCall{{
			Name:  qualifyTool.Name,
			Input: map[string]interface{}{"priority": "hot", "confidence": 0.93, "reasoning": "large enterprise deal"},
		}},
	})

	a := New(erp, llm)
	result, err := a.Handlers()["create:crm.lead"](context.Background(), automation.Event{
		Model: "crm.lead", RecordID: "3",
		Payload: map[string]interface{}{"id": int64(3), "description": "Enterprise RFP for 500 seats"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hot", result.ChangesMade["priority"])
	require.NoError(t, result.Apply(context.Background()))

	records, err := erp.Read(context.Background(), "crm.lead", []int64{3}, []string{"priority"})
	require.NoError(t, err)
	assert.Equal(t, "hot", records[0]["priority"])
}

func TestScanStaleLeadsFlagsOnlyOldInactiveLeads(t *testing.T) {
	erp := erpclient.NewFake()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	erp.Seed("crm.lead", 1, erpclient.Record{"stale": false, "last_activity_at": now.Add(-20 * 24 * time.Hour)})
	erp.Seed("crm.lead", 2, erpclient.Record{"stale": false, "last_activity_at": now.Add(-2 * 24 * time.Hour)})

	a := New(erp, llmclient.NewFake())
	flagged, err := a.ScanStaleLeads(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	records, err := erp.Read(context.Background(), "crm.lead", []int64{1}, []string{"stale"})
	require.NoError(t, err)
	assert.Equal(t, true, records[0]["stale"])
}

func TestScanStaleLeadsIsIdempotentOnRerun(t *testing.T) {
	erp := erpclient.NewFake()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	erp.Seed("crm.lead", 1, erpclient.Record{"stale": false, "last_activity_at": now.Add(-20 * 24 * time.Hour)})

	a := New(erp, llmclient.NewFake())
	_, err := a.ScanStaleLeads(context.Background(), now)
	require.NoError(t, err)
	flagged, err := a.ScanStaleLeads(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)
}
