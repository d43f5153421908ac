package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
)

func TestRunNowPersistsExecutedAuditLogOnSuccess(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	s := New(logs, nil, nil)

	s.RunNow("bank_scan", func(ctx context.Context) (string, error) {
		return "3 lines matched", nil
	})

	rows, err := logs.ListByStatus(context.Background(), audit.AuditStatusExecuted, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "scheduler:bank_scan", rows[0].AutomationType)
	assert.NotNil(t, rows[0].ExecutedAt)
	assert.Equal(t, "3 lines matched", rows[0].OutputSnapshot["detail"])
}

func TestRunNowPersistsFailedAuditLogOnError(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	s := New(logs, nil, nil)

	s.RunNow("dedup_sweep", func(ctx context.Context) (string, error) {
		return "", errors.New("db unreachable")
	})

	rows, err := logs.ListByStatus(context.Background(), audit.AuditStatusFailed, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ErrorMessage)
	assert.Equal(t, "db unreachable", *rows[0].ErrorMessage)
}

func TestRegisterDefaultsSkipsUnprovidedJobs(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	s := New(logs, nil, nil)
	cfg := config.DefaultSchedulerConfig()

	err := RegisterDefaults(s, cfg, map[string]JobFunc{
		"bank_scan": func(ctx context.Context) (string, error) { return "", nil },
	})
	require.NoError(t, err)

	entries := s.cron.Entries()
	assert.Len(t, entries, 1)
}

func TestRegisterDefaultsWiresAllNamedJobsWhenProvided(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	s := New(logs, nil, nil)
	cfg := config.DefaultSchedulerConfig()

	noop := func(ctx context.Context) (string, error) { return "", nil }
	err := RegisterDefaults(s, cfg, map[string]JobFunc{
		"bank_scan":                noop,
		"dedup_sweep":              noop,
		"credit_recalc":            noop,
		"daily_digest":             noop,
		"supplier_risk":            noop,
		"suspension_timeout_sweep": noop,
		"cashflow_refresh":         noop,
		"month_end_reopen_sweep":   noop,
		"stale_lead_sweep":         noop,
		"sales_pipeline_forecast":  noop,
		"purchase_reorder_sweep":   noop,
	})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 11)
}

func TestRegisterRejectsMalformedCronExpression(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	s := New(logs, nil, nil)
	err := s.Register("bad", "not a cron string", func(ctx context.Context) (string, error) { return "", nil })
	assert.Error(t, err)
}

func TestStartAndStopDoNotBlockIndefinitely(t *testing.T) {
	logs, _, _, _ := audit.NewFakeStore()
	s := New(logs, nil, nil)
	require.NoError(t, s.Register("tick", "* * * * *", func(ctx context.Context) (string, error) { return "", nil }))

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return in time")
	}
}
