package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/llmclient"
)

func TestHandleNewOrderSuggestsProductsWhenNoLines(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("sale.order", 1, erpclient.Record{"partner_id": int64(42)})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{{
		Name: suggestLinesTool.Name,
		Input: map[string]interface{}{"confidence": 0.7, "reasoning": "reorder pattern"},
	}}})

	a := New(erp, llm)
	result, err := a.Handlers()["create:sale.order"](context.Background(), automation.Event{
		Model: "sale.order", RecordID: "1",
		Payload: map[string]interface{}{"id": int64(1), "partner_id": int64(42)},
	})
	require.NoError(t, err)
	assert.Equal(t, "suggest_products", result.ActionName)
	assert.InDelta(t, 0.7, result.Confidence, 0.001)
	assert.True(t, result.NeedsApproval)
}

func TestHandleNewOrderOptimizesPricingWhenLinesExist(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("sale.order", 2, erpclient.Record{"partner_id": int64(42)})
	erp.Seed("sale.order.line", 100, erpclient.Record{"order_id": int64(2), "price_unit": 10.0})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{{
		Name: optimizePricingTool.Name,
		Input: map[string]interface{}{"confidence": 0.9, "reasoning": "margin balanced"},
	}}})

	a := New(erp, llm)
	result, err := a.Handlers()["create:sale.order"](context.Background(), automation.Event{
		Model: "sale.order", RecordID: "2",
		Payload: map[string]interface{}{"id": int64(2), "partner_id": int64(42)},
	})
	require.NoError(t, err)
	assert.Equal(t, "optimize_pricing", result.ActionName)
}

func TestHandleOrderChangedStopsOnConfirm(t *testing.T) {
	erp := erpclient.NewFake()
	a := New(erp, llmclient.NewFake())
	result, err := a.Handlers()["write:sale.order"](context.Background(), automation.Event{
		Model: "sale.order", RecordID: "3",
		Payload: map[string]interface{}{"state": "sale"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_confirmed", result.ActionName)
}

func TestScanForecastPipelineFlagsAtRiskOrders(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("sale.order", 5, erpclient.Record{"state": "draft"})

	llm := llmclient.NewFake()
	llm.Enqueue(&llmclient.AnalyzeResult{ToolCalls: []llmclient.ToolCall{{
		Name: forecastTool.Name,
		Input: map[string]interface{}{
			"at_risk_order_ids": []interface{}{int64(5)},
			"confidence":        0.8,
		},
	}}})

	a := New(erp, llm)
	summary, err := a.ScanForecastPipeline(context.Background())
	require.NoError(t, err)
	assert.Contains(t, summary, "1 flagged at risk")

	records, err := erp.Read(context.Background(), "sale.order", []int64{5}, []string{"note"})
	require.NoError(t, err)
	assert.Equal(t, "AI pipeline risk alert", records[0]["note"])
}

func TestScanForecastPipelineSkipsWhenNoOpenOrders(t *testing.T) {
	erp := erpclient.NewFake()
	a := New(erp, llmclient.NewFake())
	summary, err := a.ScanForecastPipeline(context.Background())
	require.NoError(t, err)
	assert.Contains(t, summary, "0 open orders")
}
