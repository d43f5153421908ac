package supplychain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

func TestRiskScoreIsWeightedAverageOfFactors(t *testing.T) {
	score := RiskScore([]Factor{
		{Name: "late_deliveries", Weight: 0.4, Value: 80},
		{Name: "quality_rejects", Weight: 0.35, Value: 20},
		{Name: "financial_distress", Weight: 0.25, Value: 10},
	})
	assert.InDelta(t, 41.5, score, 0.01)
}

func TestRiskScoreWithNoFactorsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, RiskScore(nil))
}

func TestScoreSupplierRaisesAlertAboveThreshold(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 5, erpclient.Record{
		"late_delivery_rate": 95.0, "quality_reject_rate": 90.0, "financial_distress_score": 85.0, "is_supplier": true,
	})

	a := New(erp, NewStore())
	score, err := a.ScoreSupplier(context.Background(), 5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, score.Composite, defaultAlertThreshold)

	alert, ok := a.store.GetAlert(5)
	require.True(t, ok)
	assert.Equal(t, AlertSeverityHigh, alert.Severity)
}

func TestScoreSupplierClearsAlertWhenRiskDrops(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 5, erpclient.Record{
		"late_delivery_rate": 95.0, "quality_reject_rate": 90.0, "financial_distress_score": 85.0,
	})

	a := New(erp, NewStore())
	_, err := a.ScoreSupplier(context.Background(), 5)
	require.NoError(t, err)
	_, ok := a.store.GetAlert(5)
	require.True(t, ok)

	erp.Write(context.Background(), "res.partner", []int64{5}, erpclient.Record{
		"late_delivery_rate": 2.0, "quality_reject_rate": 1.0, "financial_distress_score": 0.0,
	})
	_, err = a.ScoreSupplier(context.Background(), 5)
	require.NoError(t, err)
	_, ok = a.store.GetAlert(5)
	assert.False(t, ok)
}

func TestScanSupplierRiskCountsThoseOverThreshold(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 1, erpclient.Record{"is_supplier": true, "late_delivery_rate": 95.0, "quality_reject_rate": 90.0, "financial_distress_score": 85.0})
	erp.Seed("res.partner", 2, erpclient.Record{"is_supplier": true, "late_delivery_rate": 5.0, "quality_reject_rate": 2.0, "financial_distress_score": 1.0})

	a := New(erp, NewStore())
	summary, err := a.ScanSupplierRisk(context.Background())
	require.NoError(t, err)
	assert.Contains(t, summary, "2 suppliers scored, 1 over threshold")
}
