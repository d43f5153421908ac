// Package orchestrator is the C8 webhook ingestion and dispatch boundary
// (spec.md §4.7): it receives one ERP webhook payload, deduplicates it
// against pkg/audit.WebhookEventStore, decides whether the (event_type,
// model) pair belongs to an agent graph (C7) or a domain automation (C5),
// serializes same-record dispatches through a KeyedMutex, and broadcasts
// a lifecycle event on every transition via pkg/events — generalizing the
// teacher's worker-pool practice of wrapping each unit of work in a fresh
// record and a status event (pkg/queue/pool.go) from "one alert session"
// to "one webhook delivery."
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/events"
)

// WebhookPayload is one inbound ERP change notification, already parsed
// from the wire format by pkg/api before it reaches the orchestrator.
type WebhookPayload struct {
	EventType string
	Model     string
	RecordID  string
	WriteDate time.Time
	Values    map[string]interface{}
	OldValues map[string]interface{}
}

// DispatchResult reports how Ingest handled one webhook delivery.
type DispatchResult struct {
	WebhookEventID   string
	Status           string // one of audit.DispatchStatus*
	AutomationResult *automation.AutomationResult
	AgentOutcome     *agent.Outcome
}

// Orchestrator wires the webhook/dedup/dispatch/broadcast pipeline
// together. Construct one per process at startup.
type Orchestrator struct {
	webhooks    audit.WebhookEventStore
	rules       *config.AutomationRegistry
	agentCfgs   *config.AgentRegistry
	defaults    *config.Defaults
	automations *automation.Registry
	base        *automation.Base
	agents      *agent.Registry
	runner      *agent.Runner
	pub         *events.Publisher
	locks       *KeyedMutex
	now         func() time.Time
	log         *zap.Logger
}

// New wires an Orchestrator. pub may be nil to disable dashboard
// broadcast (e.g. in tests).
func New(
	webhooks audit.WebhookEventStore,
	rules *config.AutomationRegistry,
	agentCfgs *config.AgentRegistry,
	defaults *config.Defaults,
	automations *automation.Registry,
	base *automation.Base,
	agents *agent.Registry,
	runner *agent.Runner,
	pub *events.Publisher,
	log *zap.Logger,
) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		webhooks:    webhooks,
		rules:       rules,
		agentCfgs:   agentCfgs,
		defaults:    defaults,
		automations: automations,
		base:        base,
		agents:      agents,
		runner:      runner,
		pub:         pub,
		locks:       NewKeyedMutex(),
		now:         time.Now,
		log:         log,
	}
}

// Ingest records payload as a WebhookEvent (or detects it as a duplicate
// delivery), then serializes dispatch against any other delivery for the
// same (model, record_id) before routing it to an agent graph or a
// domain automation (spec.md §5's per-record serialization guarantee).
func (o *Orchestrator) Ingest(ctx context.Context, payload WebhookPayload) (*DispatchResult, error) {
	event := &audit.WebhookEvent{
		ID:             uuid.NewString(),
		EventType:      payload.EventType,
		Model:          payload.Model,
		RecordID:       payload.RecordID,
		WriteDate:      payload.WriteDate,
		ReceivedAt:     o.now(),
		Payload:        payload.Values,
		DispatchStatus: audit.DispatchStatusQueued,
	}

	if err := o.webhooks.Create(ctx, event); err != nil {
		if errors.Is(err, audit.ErrDuplicateEvent) {
			o.log.Info("duplicate webhook event dropped",
				zap.String("model", payload.Model), zap.String("record_id", payload.RecordID), zap.String("event_type", payload.EventType))
			return &DispatchResult{Status: audit.DispatchStatusDuplicate}, nil
		}
		return nil, err
	}

	key := Key(payload.Model, payload.RecordID)
	var result *DispatchResult
	var dispatchErr error
	o.locks.With(key, func() {
		result, dispatchErr = o.dispatch(ctx, event, payload)
	})
	return result, dispatchErr
}

func (o *Orchestrator) dispatch(ctx context.Context, event *audit.WebhookEvent, payload WebhookPayload) (*DispatchResult, error) {
	if agentName, err := o.agentCfgs.NameForTrigger(payload.EventType, payload.Model); err == nil {
		return o.dispatchToAgent(ctx, event, agentName, payload)
	}

	if ruleName, err := o.rules.NameForEvent(payload.EventType, payload.Model); err == nil {
		return o.dispatchToAutomation(ctx, event, ruleName, payload)
	}

	status := audit.DispatchStatusIgnored
	if err := o.webhooks.UpdateDispatchStatus(ctx, event.ID, status, nil); err != nil {
		return nil, err
	}
	return &DispatchResult{WebhookEventID: event.ID, Status: status}, nil
}

func (o *Orchestrator) dispatchToAutomation(ctx context.Context, event *audit.WebhookEvent, ruleName string, payload WebhookPayload) (*DispatchResult, error) {
	rule, err := o.rules.Get(ruleName)
	if err != nil {
		return nil, err
	}

	handler, err := o.automations.Resolve(ruleName, payload.EventType, payload.Model)
	if errors.Is(err, automation.ErrNoHandler) {
		status := audit.DispatchStatusIgnored
		if updErr := o.webhooks.UpdateDispatchStatus(ctx, event.ID, status, nil); updErr != nil {
			return nil, updErr
		}
		return &DispatchResult{WebhookEventID: event.ID, Status: status}, nil
	}
	if err != nil {
		return nil, err
	}

	ev := automation.Event{EventType: payload.EventType, Model: payload.Model, RecordID: payload.RecordID, Payload: payload.Values}
	result, dispatchErr := o.base.Dispatch(ctx, ruleName, ev, handler, rule, o.defaults)
	o.publishAutomationStatus(ruleName, payload, automationLifecycleStatus(result, dispatchErr), result.Confidence)

	status := audit.DispatchStatusDispatched
	var auditLogID *string
	if result.AuditLogID != "" {
		id := result.AuditLogID
		auditLogID = &id
	}
	if updErr := o.webhooks.UpdateDispatchStatus(ctx, event.ID, status, auditLogID); updErr != nil {
		return nil, updErr
	}

	res := result
	return &DispatchResult{WebhookEventID: event.ID, Status: status, AutomationResult: &res}, dispatchErr
}

func (o *Orchestrator) dispatchToAgent(ctx context.Context, event *audit.WebhookEvent, agentName string, payload WebhookPayload) (*DispatchResult, error) {
	agentCfg, err := o.agentCfgs.Get(agentName)
	if err != nil {
		return nil, err
	}
	graph, err := o.agents.Compile(agentName)
	if err != nil {
		return nil, err
	}

	maxSteps, maxTokens, loopThreshold := config.ResolvedGuardrails(agentCfg, o.defaults)
	gr := agent.Guardrails{MaxSteps: maxSteps, MaxTokens: maxTokens, LoopThreshold: loopThreshold}

	initial := agent.State{}
	initial.Merge(payload.Values)

	o.publishAgentStatus(agentName, "", "started")
	outcome, err := o.runner.Start(ctx, graph, payload.Model, payload.RecordID, initial, gr)
	if err != nil {
		return nil, err
	}
	o.publishAgentStatus(agentName, outcome.RunID, string(outcome.Status))

	status := audit.DispatchStatusDispatched
	if updErr := o.webhooks.UpdateDispatchStatus(ctx, event.ID, status, nil); updErr != nil {
		return nil, updErr
	}
	return &DispatchResult{WebhookEventID: event.ID, Status: status, AgentOutcome: outcome}, nil
}

func automationLifecycleStatus(result automation.AutomationResult, err error) string {
	switch {
	case err != nil:
		return "failed"
	case result.NeedsApproval:
		return "pending_approval"
	case result.Success:
		return "completed"
	default:
		return "noted"
	}
}

func (o *Orchestrator) publishAutomationStatus(automationType string, payload WebhookPayload, status string, confidence float64) {
	if o.pub == nil {
		return
	}
	o.pub.PublishAutomationStatus(events.AutomationStatusPayload{
		AutomationType: automationType,
		Model:          payload.Model,
		RecordID:       payload.RecordID,
		Status:         status,
		Confidence:     confidence,
	})
}

func (o *Orchestrator) publishAgentStatus(agentName, runID, status string) {
	if o.pub == nil {
		return
	}
	o.pub.PublishAgentRunStatus(events.AgentRunStatusPayload{
		RunID:     runID,
		AgentName: agentName,
		Status:    status,
	})
}
