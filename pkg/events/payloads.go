package events

// AutomationStatusPayload reports an automation handler's dispatch outcome
// (spec.md §4.3): one per AuditLog write.
type AutomationStatusPayload struct {
	Type           string  `json:"type"`
	AutomationType string  `json:"automation_type"`
	Model          string  `json:"model"`
	RecordID       string  `json:"record_id"`
	Status         string  `json:"status"`
	Confidence     float64 `json:"confidence"`
	Timestamp      string  `json:"timestamp"`
}

// AgentRunStatusPayload reports an AgentRun lifecycle transition (spec.md
// §4.6): running, suspended, completed, failed, cancelled, or
// guardrail_stopped.
type AgentRunStatusPayload struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	AgentName string `json:"agent_name"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// SchedulerRunPayload reports one scheduler job invocation (spec.md §4.5):
// a scan_*, batch recalculation, or digest generation.
type SchedulerRunPayload struct {
	Type      string `json:"type"`
	JobName   string `json:"job_name"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}
