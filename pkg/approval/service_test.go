package approval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
)

type replayAutomation struct {
	automationType string
	calls          []automation.Event
	result         automation.AutomationResult
	err            error
}

func (r *replayAutomation) AutomationType() string  { return r.automationType }
func (r *replayAutomation) WatchedModels() []string { return nil }
func (r *replayAutomation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"write:account.move": func(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
			r.calls = append(r.calls, ev)
			return r.result, r.err
		},
	}
}

func seedPendingLog(t *testing.T, logs audit.AuditLogStore) *audit.AuditLog {
	t.Helper()
	log := &audit.AuditLog{
		ID:             "log-1",
		AutomationType: "reconciliation",
		EventType:      "write",
		TargetModel:    "account.move",
		TargetRecordID: "42",
		Status:         audit.AuditStatusPending,
		Confidence:     0.88,
		InputSnapshot:  map[string]interface{}{"amount": 100},
		OutputSnapshot: map[string]interface{}{"state": "reconciled"},
	}
	require.NoError(t, logs.Create(context.Background(), log))
	return log
}

func TestDecidePendingApprovalExecutesOnApprove(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	seedPendingLog(t, logs)

	applied := false
	reg := automation.NewRegistry()
	reg.Register(&replayAutomation{
		automationType: "reconciliation",
		result: automation.AutomationResult{
			Success: true,
			Apply: func(ctx context.Context) error {
				applied = true
				return nil
			},
		},
	})
	svc := New(logs, reg, automation.NewBase(logs))

	updated, err := svc.Decide(context.Background(), Decision{AuditLogID: "log-1", Approved: true, ApprovedBy: "controller@example.com"})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, audit.AuditStatusExecuted, updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, "controller@example.com", *updated.ApprovedBy)
}

func TestDecideRejectionLeavesNoSideEffect(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	seedPendingLog(t, logs)

	called := false
	reg := automation.NewRegistry()
	reg.Register(&replayAutomation{
		automationType: "reconciliation",
		result: automation.AutomationResult{Success: true, Apply: func(ctx context.Context) error { called = true; return nil }},
	})
	svc := New(logs, reg, automation.NewBase(logs))

	updated, err := svc.Decide(context.Background(), Decision{AuditLogID: "log-1", Approved: false, ApprovedBy: "controller@example.com"})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, audit.AuditStatusRejected, updated.Status)
}

func TestDecideRejectsNonPendingLog(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	log := seedPendingLog(t, logs)
	log.Status = audit.AuditStatusExecuted
	require.NoError(t, logs.Update(context.Background(), log))

	svc := New(logs, automation.NewRegistry(), automation.NewBase(logs))
	_, err := svc.Decide(context.Background(), Decision{AuditLogID: "log-1", Approved: true, ApprovedBy: "x"})
	require.Error(t, err)
}

func TestDecideApproveMarksFailedWhenApplyErrors(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	seedPendingLog(t, logs)

	reg := automation.NewRegistry()
	reg.Register(&replayAutomation{
		automationType: "reconciliation",
		result: automation.AutomationResult{
			Apply: func(ctx context.Context) error { return assert.AnError },
		},
	})
	svc := New(logs, reg, automation.NewBase(logs))

	updated, err := svc.Decide(context.Background(), Decision{AuditLogID: "log-1", Approved: true, ApprovedBy: "x"})
	require.Error(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, audit.AuditStatusFailed, updated.Status)
}

func TestPendingListsOnlyPendingLogs(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	seedPendingLog(t, logs)
	done := &audit.AuditLog{ID: "log-2", AutomationType: "reconciliation", Status: audit.AuditStatusExecuted}
	require.NoError(t, logs.Create(context.Background(), done))

	svc := New(logs, automation.NewRegistry(), automation.NewBase(logs))
	pending, err := svc.Pending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "log-1", pending[0].ID)
}
