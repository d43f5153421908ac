package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

func TestHandleNewTaskAssignsWhenUnassigned(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("project.task", 1, erpclient.Record{"project_id": int64(9)})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{{
		Name:  estimateTool.Name,
		Input: map[string]interface{}{"estimated_hours": 4.0, "confidence": 0.8, "reasoning": "similar tasks took 4h"},
	}}})
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{{
		Name:  assignTool.Name,
		Input: map[string]interface{}{"user_ids": []interface{}{int64(3)}, "confidence": 0.75, "reasoning": "lowest workload"},
	}}})

	a := New(erp, llm)
	result, err := a.Handlers()["create:project.task"](context.Background(), automation.Event{
		Model: "project.task", RecordID: "1",
		Payload: map[string]interface{}{"id": int64(1), "project_id": int64(9)},
	})
	require.NoError(t, err)
	assert.Equal(t, "assign_task", result.ActionName)
	require.NotNil(t, result.Apply)
	require.NoError(t, result.Apply(context.Background()))

	records, err := erp.Read(context.Background(), "project.task", []int64{1}, []string{"planned_hours"})
	require.NoError(t, err)
	assert.Equal(t, 4.0, records[0]["planned_hours"])
}

func TestHandleNewTaskOnlyEstimatesWhenAssigned(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("project.task", 2, erpclient.Record{"project_id": int64(9)})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{{
		Name:  estimateTool.Name,
		Input: map[string]interface{}{"estimated_hours": 6.0, "confidence": 0.8, "reasoning": "medium complexity"},
	}}})

	a := New(erp, llm)
	result, err := a.Handlers()["create:project.task"](context.Background(), automation.Event{
		Model: "project.task", RecordID: "2",
		Payload: map[string]interface{}{"id": int64(2), "project_id": int64(9), "user_ids": []interface{}{int64(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "estimate_duration", result.ActionName)
}

func TestHandleTaskChangedSkipsWithoutStageChange(t *testing.T) {
	a := New(erpclient.NewFake(), llmclient.NewFake())
	result, err := a.Handlers()["write:project.task"](context.Background(), automation.Event{
		Model: "project.task", RecordID: "3",
		Payload: map[string]interface{}{},
	})
	require.NoError(t, err)
	assert.Equal(t, "no_action", result.ActionName)
}

func TestHandleTaskChangedChecksProjectHealth(t *testing.T) {
	erp := erpclient.NewFake()
	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{{
		Name:  riskTool.Name,
		Input: map[string]interface{}{"overall_health": "critical", "confidence": 0.85, "summary": "overdue tasks piling up"},
	}}})

	a := New(erp, llm)
	result, err := a.Handlers()["write:project.task"](context.Background(), automation.Event{
		Model: "project.task", RecordID: "4",
		Payload: map[string]interface{}{"stage_id": int64(2), "project_id": int64(9)},
	})
	require.NoError(t, err)
	assert.Equal(t, "project_health_check", result.ActionName)
	assert.True(t, result.NeedsApproval)
}
