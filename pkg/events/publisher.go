package events

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Publisher marshals typed lifecycle payloads and broadcasts them over a
// ConnectionManager, mirroring tarsy's EventPublisher shape minus the
// database persistence step (see ConnectionManager's doc comment).
type Publisher struct {
	manager *ConnectionManager
	log     *zap.Logger
	now     func() time.Time
}

// NewPublisher wires a Publisher against manager.
func NewPublisher(manager *ConnectionManager, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{manager: manager, log: log, now: time.Now}
}

// PublishAutomationStatus broadcasts an automation dispatch outcome to
// both the global channel and the record-scoped channel.
func (p *Publisher) PublishAutomationStatus(payload AutomationStatusPayload) {
	payload.Type = EventTypeAutomationStatus
	payload.Timestamp = p.now().UTC().Format(time.RFC3339Nano)
	p.broadcastToAll(payload, GlobalChannel, RecordChannel(payload.Model, payload.RecordID))
}

// PublishAgentRunStatus broadcasts an agent run lifecycle transition.
func (p *Publisher) PublishAgentRunStatus(payload AgentRunStatusPayload) {
	payload.Type = EventTypeAgentRunStatus
	payload.Timestamp = p.now().UTC().Format(time.RFC3339Nano)
	p.broadcastToAll(payload, GlobalChannel)
}

// PublishSchedulerRun broadcasts one scheduler job invocation's outcome.
func (p *Publisher) PublishSchedulerRun(payload SchedulerRunPayload) {
	payload.Type = EventTypeSchedulerRun
	payload.Timestamp = p.now().UTC().Format(time.RFC3339Nano)
	p.broadcastToAll(payload, GlobalChannel)
}

func (p *Publisher) broadcastToAll(payload interface{}, channels ...string) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.log.Warn("failed to marshal event payload", zap.Error(err))
		return
	}
	for _, ch := range channels {
		p.manager.Broadcast(ch, data)
	}
}
