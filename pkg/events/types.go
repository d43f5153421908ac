// Package events is the in-process dashboard broadcast channel: the
// scheduler (C6) and orchestrator (C8) publish lifecycle transitions
// here, and any connected operator dashboard
// receives them over WebSocket. Adapted from tarsy's pkg/events, but
// single-process: this module runs one orchestrator binary rather than
// tarsy's multi-pod deployment, so the cross-pod PostgreSQL NOTIFY/LISTEN
// fanout and DB-backed catchup have no role here (see DESIGN.md).
package events

// Event types broadcast over the dashboard channel.
const (
	EventTypeAutomationStatus = "automation.status"
	EventTypeAgentRunStatus   = "agent_run.status"
	EventTypeSchedulerRun     = "scheduler.run"
)

// GlobalChannel carries every lifecycle event; dashboards that want the
// full activity feed subscribe here.
const GlobalChannel = "lifecycle"

// RecordChannel returns the channel name scoped to one ERP record, for
// dashboards watching a single document.
func RecordChannel(model, recordID string) string {
	return "record:" + model + ":" + recordID
}

// ClientMessage is the JSON structure for client → server WebSocket
// messages (subscribe/unsubscribe/ping).
type ClientMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}
