package audit

import (
	"context"
	"time"
)

// AuditLogStore persists AuditLog records. Every handler writes exactly one
// AuditLog before any approval is requested or side effect is committed
// (invariant A1).
type AuditLogStore interface {
	Create(ctx context.Context, log *AuditLog) error
	Update(ctx context.Context, log *AuditLog) error
	Get(ctx context.Context, id string) (*AuditLog, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*AuditLog, error)
	ListPendingApproval(ctx context.Context, limit int) ([]*AuditLog, error)
	// CountByAutomationType supports the daily digest's per-automation rollup.
	CountByAutomationType(ctx context.Context, since time.Time) (map[string]int, error)
}

// RuleStore persists the operator-tunable copy of automation rules.
type RuleStore interface {
	Upsert(ctx context.Context, rule *AutomationRule) error
	Get(ctx context.Context, id string) (*AutomationRule, error)
	GetByName(ctx context.Context, name string) (*AutomationRule, error)
	GetForEvent(ctx context.Context, eventType, model string) (*AutomationRule, error)
	ListAll(ctx context.Context) ([]*AutomationRule, error)
}

// WebhookEventStore persists inbound webhook deliveries and enforces
// dedup on (model, record_id, event_type, write_date).
type WebhookEventStore interface {
	// Create inserts a WebhookEvent. Implementations return
	// ErrDuplicateEvent if the (model, record_id, event_type, write_date)
	// tuple was already recorded (invariant: at-most-once dispatch).
	Create(ctx context.Context, event *WebhookEvent) error
	UpdateDispatchStatus(ctx context.Context, id, status string, auditLogID *string) error
	Get(ctx context.Context, id string) (*WebhookEvent, error)
}

// AgentRunStore persists agent runs, their steps, decisions, and
// suspensions.
type AgentRunStore interface {
	CreateRun(ctx context.Context, run *AgentRun) error
	UpdateRun(ctx context.Context, run *AgentRun) error
	GetRun(ctx context.Context, id string) (*AgentRun, error)

	CreateStep(ctx context.Context, step *AgentStep) error
	UpdateStep(ctx context.Context, step *AgentStep) error
	// CountSteps backs invariant A3 (max-step guardrail): callers compare
	// the count against the agent's resolved MaxSteps before running the
	// next node.
	CountSteps(ctx context.Context, agentRunID string) (int, error)
	// CountVisitsToNode backs the loop-detection guardrail: a node visited
	// more than the configured MaxVisitsNode times stops the run.
	CountVisitsToNode(ctx context.Context, agentRunID, nodeName string) (int, error)

	CreateDecision(ctx context.Context, decision *AgentDecision) error
	UpdateDecision(ctx context.Context, decision *AgentDecision) error

	CreateSuspension(ctx context.Context, suspension *AgentSuspension) error
	UpdateSuspension(ctx context.Context, suspension *AgentSuspension) error
	GetSuspension(ctx context.Context, id string) (*AgentSuspension, error)
	// ListExpiredSuspensions backs the suspension-timeout sweep (invariant
	// A4): pending suspensions past ExpiresAt are resolved as timed_out.
	ListExpiredSuspensions(ctx context.Context, asOf time.Time) ([]*AgentSuspension, error)
}
