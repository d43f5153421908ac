package cashflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

func TestScenarioDelayingCustomerPaymentWorsensEndBalance(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []ARItem{
		{Amount: 10000, DueDate: asOf.AddDate(0, 0, 5), PartnerID: 42},
	}
	scenario := Scenario{delayKey(42): 30}

	impact := ScenarioImpact(items, scenario, asOf, 30)
	assert.Less(t, impact.EndBalanceChange, 0.0)
	assert.Equal(t, 10000.0, impact.BaselineEndBalance)
	assert.Equal(t, 0.0, impact.AdjustedEndBalance)
}

func TestScenarioWithNoMatchingCustomerLeavesBalanceUnchanged(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []ARItem{{Amount: 5000, DueDate: asOf.AddDate(0, 0, 5), PartnerID: 7}}
	scenario := Scenario{delayKey(99): 30}

	impact := ScenarioImpact(items, scenario, asOf, 30)
	assert.Equal(t, 0.0, impact.EndBalanceChange)
}

func TestProjectExcludesItemsPastHorizon(t *testing.T) {
	asOf := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []ARItem{
		{Amount: 1000, DueDate: asOf.AddDate(0, 0, 10)},
		{Amount: 2000, DueDate: asOf.AddDate(0, 0, 40)},
	}
	assert.Equal(t, 1000.0, Project(items, asOf, 30))
}

func TestHandleInvoiceChangedReportsSnapshotWithNoSideEffect(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("account.move", 1, erpclient.Record{
		"move_type":        "out_invoice",
		"payment_state":    "not_paid",
		"amount_residual":  2500.0,
		"invoice_date_due": "2026-03-10",
		"partner_id":       int64(42),
	})

	a := New(erp, 30, nil)
	result, err := a.Handlers()["write:account.move"](context.Background(), automation.Event{Model: "account.move", RecordID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "cashflow_snapshot_refreshed", result.ActionName)
	assert.Nil(t, result.Apply)
	assert.True(t, result.Success)
}

func TestAccuracyTracksScanSnapshotsAgainstRecordedActuals(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("account.move", 1, erpclient.Record{
		"move_type": "out_invoice", "payment_state": "not_paid",
		"amount_residual": 1000.0, "invoice_date_due": "2026-02-20", "partner_id": int64(1),
	})

	tracker := NewAccuracyTracker()
	a := New(erp, 30, tracker)
	asOf := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	projected, err := a.ScanRefreshForecast(context.Background(), asOf)
	require.NoError(t, err)

	_, samples := a.Accuracy()
	assert.Equal(t, 0, samples)

	target := asOf.AddDate(0, 0, 30)
	require.NoError(t, tracker.RecordActual(target, projected*1.1))
	mape, samples := a.Accuracy()
	require.Equal(t, 1, samples)
	// |1100 - 1000| / 1100, as a percentage.
	assert.InDelta(t, 9.09, mape, 0.01)
}
