package digest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
)

func TestGenerateDeliversDigestForConfiguredRole(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	logs.Create(context.Background(), &audit.AuditLog{ID: "1", AutomationType: "credit", Status: audit.AuditStatusExecuted, Timestamp: time.Now()})
	logs.Create(context.Background(), &audit.AuditLog{ID: "2", AutomationType: "reconciliation", Status: audit.AuditStatusPending, Timestamp: time.Now()})

	sender := notify.NewFake()
	a := New(logs, sender, NewStore(), RoleChannel{"finance_manager": "#finance-digest"})

	d, err := a.Generate(context.Background(), time.Now(), "finance_manager")
	require.NoError(t, err)
	assert.Equal(t, 1, d.PendingApprovals)
	assert.Equal(t, 1, sender.Count())
}

func TestGenerateIsIdempotentForSameDayAndRole(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	sender := notify.NewFake()
	a := New(logs, sender, NewStore(), RoleChannel{"ops": "#ops-digest"})

	date := time.Now()
	first, err := a.Generate(context.Background(), date, "ops")
	require.NoError(t, err)
	second, err := a.Generate(context.Background(), date, "ops")
	require.NoError(t, err)

	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
	assert.Equal(t, 1, sender.Count())
}

func TestGenerateReportsChannelDisabledForUnconfiguredRole(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	a := New(logs, notify.NewFake(), NewStore(), RoleChannel{})

	d, err := a.Generate(context.Background(), time.Now(), "unknown_role")
	require.NoError(t, err)
	assert.Equal(t, "channel_disabled", string(d.Outcome))
}
