// Package automation is the C5 registry and confidence-gating base: every
// concrete domain automation in pkg/automations implements Automation and
// gets audit logging and the τ_d/τ_a gate for free by routing through Base
// (spec.md §4.3), mirroring the teacher's BaseAgent/Controller split in
// pkg/agent/base_agent.go.
package automation

import "context"

// ModeExecuteApproved marks an Event as a replay of a previously pending
// decision a human just approved (spec.md §4.7): a handler that checks
// Event.Mode skips recomputing its verdict and builds Apply directly from
// ApprovedChanges instead of re-deriving ChangesMade from Payload.
const ModeExecuteApproved = "execute_approved"

// Event is one inbound ERP change, already resolved to a concrete model
// and record by the orchestrator (C8) before a handler ever sees it.
type Event struct {
	EventType string
	Model     string
	RecordID  string
	Payload   map[string]interface{}

	// Mode is ModeExecuteApproved when the approval service (C9) is
	// replaying a handler after a human approved its pending decision;
	// empty for a normal webhook-triggered dispatch.
	Mode string
	// ApprovedChanges carries the AuditLog's stored OutputSnapshot when
	// Mode is ModeExecuteApproved.
	ApprovedChanges map[string]interface{}
}

// AutomationResult is a handler's verdict (spec.md §4.3). Apply, when
// non-nil, commits ChangesMade's side effects to the ERP; Base.Dispatch
// calls it only when confidence clears the auto-approve threshold, and
// Base.ExecuteApproved calls it unconditionally after a human approval.
type AutomationResult struct {
	Success    bool
	// AuditLogID is filled in by Base.Dispatch once the AuditLog row
	// exists, so callers (the orchestrator) can attach it to the
	// WebhookEvent that triggered this result.
	AuditLogID string
	ActionName string
	Model         string
	RecordID      string
	Confidence    float64
	Reasoning     string
	ChangesMade   map[string]interface{}
	NeedsApproval bool
	ErrorMessage  string
	TokensUsed    int

	Apply func(ctx context.Context) error
}

// HandlerFunc computes an AutomationResult for one event without committing
// any side effect itself; Base decides whether Apply runs.
type HandlerFunc func(ctx context.Context, ev Event) (AutomationResult, error)

// Automation declares the handlers a domain automation exposes, keyed per
// spec.md §4.3's resolution rule.
type Automation interface {
	AutomationType() string
	WatchedModels() []string
	// Handlers is keyed by "event_type:model" for a model-specific
	// handler, or bare "event_type" for a generic one.
	Handlers() map[string]HandlerFunc
}
