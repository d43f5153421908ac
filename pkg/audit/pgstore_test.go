package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/database"
)

// newTestClient starts a disposable Postgres container with the orchestrator
// schema applied, mirroring pkg/database's own test helper.
func newTestClient(t *testing.T) *database.Client {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("orchestrator_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	client, err := database.NewClient(database.Config{
		Host: host, Port: port.Int(), User: "test", Password: "test", Database: "orchestrator_test",
		SSLMode: "disable", MaxOpenConns: 5, MaxIdleConns: 2,
		ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 15 * time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAuditLogPGStoreCreateAndGet(t *testing.T) {
	client := newTestClient(t)
	store := NewAuditLogPGStore(client)
	ctx := context.Background()

	log := &AuditLog{
		ID: "log-1", Timestamp: time.Now().UTC(), AutomationType: "reconciliation",
		ActionName: "match_statement_line", TargetModel: "account.bank.statement.line",
		TargetRecordID: "42", Status: AuditStatusPending, Confidence: 0.92,
		InputSnapshot: map[string]interface{}{"line_id": 42},
	}
	require.NoError(t, store.Create(ctx, log))

	got, err := store.Get(ctx, "log-1")
	require.NoError(t, err)
	require.Equal(t, "reconciliation", got.AutomationType)
	require.InDelta(t, 0.92, got.Confidence, 0.0001)
	require.Equal(t, float64(42), got.InputSnapshot["line_id"])
}

func TestAuditLogPGStoreListPendingApproval(t *testing.T) {
	client := newTestClient(t)
	store := NewAuditLogPGStore(client)
	ctx := context.Background()

	for i, status := range []string{AuditStatusPending, AuditStatusExecuted, AuditStatusPending} {
		require.NoError(t, store.Create(ctx, &AuditLog{
			ID: idFor(i), Timestamp: time.Now().UTC(), AutomationType: "credit",
			ActionName: "hold", TargetModel: "res.partner", Status: status, Confidence: 0.5,
		}))
	}

	pending, err := store.ListPendingApproval(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
}

func idFor(i int) string {
	return []string{"log-a", "log-b", "log-c"}[i]
}

func TestRulePGStoreUpsertAndGetForEvent(t *testing.T) {
	client := newTestClient(t)
	store := NewRulePGStore(client)
	ctx := context.Background()

	rule := &AutomationRule{
		ID: "rule-1", Name: "bank_reconciliation", EventType: "create", Model: "account.bank.statement.line",
		Enabled: true, DefaultConfidenceThreshold: 0.85, AutoApproveThreshold: 0.95,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Upsert(ctx, rule))

	got, err := store.GetForEvent(ctx, "create", "account.bank.statement.line")
	require.NoError(t, err)
	require.Equal(t, "bank_reconciliation", got.Name)

	rule.AutoApproveThreshold = 0.97
	require.NoError(t, store.Upsert(ctx, rule))
	got, err = store.GetByName(ctx, "bank_reconciliation")
	require.NoError(t, err)
	require.InDelta(t, 0.97, got.AutoApproveThreshold, 0.0001)
}

func TestWebhookEventPGStoreRejectsDuplicate(t *testing.T) {
	client := newTestClient(t)
	store := NewWebhookEventPGStore(client)
	ctx := context.Background()

	writeDate := time.Now().UTC()
	event := &WebhookEvent{
		ID: "evt-1", EventType: "write", Model: "account.move", RecordID: "7",
		WriteDate: writeDate, ReceivedAt: time.Now().UTC(), DispatchStatus: DispatchStatusQueued,
	}
	require.NoError(t, store.Create(ctx, event))

	dup := *event
	dup.ID = "evt-2"
	err := store.Create(ctx, &dup)
	require.ErrorIs(t, err, ErrDuplicateEvent)
}

func TestAgentRunPGStoreLifecycle(t *testing.T) {
	client := newTestClient(t)
	store := NewAgentRunPGStore(client)
	ctx := context.Background()

	run := &AgentRun{
		ID: "run-1", AgentName: "procure_to_pay", Status: AgentRunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateRun(ctx, run))

	step := &AgentStep{
		ID: "step-1", AgentRunID: "run-1", Sequence: 1, NodeName: "classify_invoice",
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateStep(ctx, step))
	step2 := &AgentStep{
		ID: "step-2", AgentRunID: "run-1", Sequence: 2, NodeName: "classify_invoice",
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateStep(ctx, step2))

	count, err := store.CountSteps(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	visits, err := store.CountVisitsToNode(ctx, "run-1", "classify_invoice")
	require.NoError(t, err)
	require.Equal(t, 2, visits)

	suspension := &AgentSuspension{
		ID: "susp-1", AgentRunID: "run-1", AgentStepID: "step-1", Reason: "needs operator approval",
		Status: SuspensionStatusPending, CreatedAt: time.Now().UTC(), ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, store.CreateSuspension(ctx, suspension))

	expired, err := store.ListExpiredSuspensions(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, expired, 1)
}
