// Package audit is the C3 persistence boundary: every AI decision, webhook
// delivery, and agent run is written here before any side effect reaches
// the ERP, matching spec.md §3's data model and the invariants that depend
// on it (A1-A5).
package audit

import "time"

// AuditLog statuses.
const (
	AuditStatusPending  = "pending"
	AuditStatusApproved = "approved"
	AuditStatusExecuted = "executed"
	AuditStatusRejected = "rejected"
	AuditStatusFailed   = "failed"
)

// AuditLog is one attempted AI decision.
type AuditLog struct {
	ID              string
	Timestamp       time.Time
	AutomationType  string
	EventType       string
	ActionName      string
	TargetModel     string
	TargetRecordID  string
	Status          string
	Confidence      float64
	Reasoning       string
	InputSnapshot   map[string]interface{}
	OutputSnapshot  map[string]interface{}
	ErrorMessage    *string
	ExecutedAt      *time.Time
	ApprovedBy      *string
	TokensUsed      int
}

// AutomationRule is the persisted configuration for a (event_type, model)
// automation binding, distinct from pkg/config's static YAML-loaded
// AutomationConfig: this table holds the operator-tunable, runtime-editable
// copy seeded from config at startup.
type AutomationRule struct {
	ID                         string
	Name                       string
	EventType                  string
	Model                      string
	Enabled                    bool
	DefaultConfidenceThreshold float64
	AutoApproveThreshold       float64
	Config                     map[string]interface{}
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// WebhookEvent dispatch statuses.
const (
	DispatchStatusQueued     = "queued"
	DispatchStatusDispatched = "dispatched"
	DispatchStatusIgnored    = "ignored"
	DispatchStatusDuplicate  = "duplicate"
)

// WebhookEvent is one inbound ERP webhook delivery.
type WebhookEvent struct {
	ID             string
	EventType      string
	Model          string
	RecordID       string
	WriteDate      time.Time
	ReceivedAt     time.Time
	Payload        map[string]interface{}
	DispatchStatus string
	AuditLogID     *string
}

// AgentRun statuses.
const (
	AgentRunStatusRunning   = "running"
	AgentRunStatusSuspended = "suspended"
	AgentRunStatusCompleted = "completed"
	AgentRunStatusFailed    = "failed"
	AgentRunStatusCancelled = "cancelled"
)

// AgentRun is one invocation of a multi-step agent graph.
type AgentRun struct {
	ID              string
	AgentName       string
	TriggerModel    string
	TriggerRecordID string
	Status          string
	StepCount       int
	TokensUsed      int
	TerminalReason  string
	Context         map[string]interface{}
	StartedAt       time.Time
	FinishedAt      *time.Time
}

// AgentStep is a single node execution within an AgentRun's graph.
type AgentStep struct {
	ID           string
	AgentRunID   string
	Sequence     int
	NodeName     string
	Input        map[string]interface{}
	Output       map[string]interface{}
	TokensUsed   int
	StartedAt    time.Time
	FinishedAt   *time.Time
	ErrorMessage *string
}

// AgentDecision statuses.
const (
	DecisionStatusPending  = "pending"
	DecisionStatusApproved = "approved"
	DecisionStatusExecuted = "executed"
	DecisionStatusRejected = "rejected"
	DecisionStatusSkipped  = "skipped"
)

// AgentDecision is a tool-call or write decision made by an agent step.
type AgentDecision struct {
	ID          string
	AgentStepID string
	ToolName    string
	Arguments   map[string]interface{}
	Confidence  float64
	Status      string
	Result      map[string]interface{}
	CreatedAt   time.Time
}

// AgentSuspension statuses.
const (
	SuspensionStatusPending   = "pending"
	SuspensionStatusApproved  = "approved"
	SuspensionStatusRejected  = "rejected"
	SuspensionStatusTimedOut  = "timed_out"
)

// AgentSuspension is a human-in-the-loop pause point.
type AgentSuspension struct {
	ID            string
	AgentRunID    string
	AgentStepID   string
	Reason        string
	PromptPayload map[string]interface{}
	Status        string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	ResolvedAt    *time.Time
	ResolvedBy    *string
	ResumeInput   map[string]interface{}
}
