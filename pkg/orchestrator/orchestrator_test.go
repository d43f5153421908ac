package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agent"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
)

type stubAutomation struct {
	automationType string
	handlers       map[string]automation.HandlerFunc
}

func (s *stubAutomation) AutomationType() string  { return s.automationType }
func (s *stubAutomation) WatchedModels() []string { return nil }
func (s *stubAutomation) Handlers() map[string]automation.HandlerFunc {
	return s.handlers
}

func defaultsFixture() *config.Defaults {
	return &config.Defaults{
		DefaultConfidenceThreshold: 0.85,
		AutoApproveThreshold:       0.95,
		MaxAgentSteps:              20,
		MaxAgentTokens:             10000,
		LoopThreshold:              5,
	}
}

func newTestOrchestrator(t *testing.T, rules map[string]*config.AutomationConfig, agentCfgs map[string]*config.AgentConfig, automations *automation.Registry, agents *agent.Registry) (*Orchestrator, *audit.FakeWebhookEventStore, *audit.FakeAgentRunStore) {
	t.Helper()
	logs, _, webhooks, runs := audit.NewFakeStore()
	base := automation.NewBase(logs)
	runner := agent.NewRunner(runs, time.Hour)
	o := New(
		webhooks,
		config.NewAutomationRegistry(rules),
		config.NewAgentRegistry(agentCfgs),
		defaultsFixture(),
		automations,
		base,
		agents,
		runner,
		nil,
		nil,
	)
	return o, webhooks, runs
}

func TestIngestDeduplicatesSameWebhookDelivery(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, nil, nil, automation.NewRegistry(), agent.NewRegistry())
	payload := WebhookPayload{EventType: "write", Model: "account.move", RecordID: "1", WriteDate: time.Unix(0, 0)}

	first, err := o.Ingest(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, audit.DispatchStatusIgnored, first.Status)

	second, err := o.Ingest(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, audit.DispatchStatusDuplicate, second.Status)
}

func TestIngestIgnoresEventWithNoMatchingHandler(t *testing.T) {
	o, webhooks, _ := newTestOrchestrator(t, nil, nil, automation.NewRegistry(), agent.NewRegistry())
	result, err := o.Ingest(context.Background(), WebhookPayload{EventType: "write", Model: "res.partner", RecordID: "1"})
	require.NoError(t, err)
	assert.Equal(t, audit.DispatchStatusIgnored, result.Status)

	ev, err := webhooks.Get(context.Background(), result.WebhookEventID)
	require.NoError(t, err)
	assert.Equal(t, audit.DispatchStatusIgnored, ev.DispatchStatus)
}

func TestIngestDispatchesToMatchingAutomation(t *testing.T) {
	applied := false
	automations := automation.NewRegistry()
	automations.Register(&stubAutomation{
		automationType: "reconciliation",
		handlers: map[string]automation.HandlerFunc{
			"write:account.move": func(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
				return automation.AutomationResult{
					ActionName:  "auto_match",
					Confidence:  0.99,
					ChangesMade: map[string]interface{}{"state": "reconciled"},
					Apply: func(ctx context.Context) error {
						applied = true
						return nil
					},
				}, nil
			},
		},
	})

	rules := map[string]*config.AutomationConfig{
		"reconciliation": {EventType: "write", Model: "account.move", Enabled: true},
	}

	o, webhooks, _ := newTestOrchestrator(t, rules, nil, automations, agent.NewRegistry())
	result, err := o.Ingest(context.Background(), WebhookPayload{EventType: "write", Model: "account.move", RecordID: "42"})
	require.NoError(t, err)

	assert.Equal(t, audit.DispatchStatusDispatched, result.Status)
	assert.True(t, applied)
	require.NotNil(t, result.AutomationResult)
	assert.True(t, result.AutomationResult.Success)

	ev, err := webhooks.Get(context.Background(), result.WebhookEventID)
	require.NoError(t, err)
	require.NotNil(t, ev.AuditLogID)
}

func TestIngestDispatchesToMatchingAgentGraph(t *testing.T) {
	agents := agent.NewRegistry()
	agents.Register("procure_to_pay", func() *agent.Graph {
		g := agent.NewGraph("procure_to_pay", "only")
		g.AddNode("only", func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
			return agent.NodeResult{Partial: agent.State{"done": true}}, nil
		}).AddEdge("only", agent.End)
		return g
	})

	agentCfgs := map[string]*config.AgentConfig{
		"procure_to_pay": {TriggerModel: "account.move", TriggerEvent: "create"},
	}

	o, webhooks, runs := newTestOrchestrator(t, nil, agentCfgs, automation.NewRegistry(), agents)
	result, err := o.Ingest(context.Background(), WebhookPayload{EventType: "create", Model: "account.move", RecordID: "7"})
	require.NoError(t, err)

	assert.Equal(t, audit.DispatchStatusDispatched, result.Status)
	require.NotNil(t, result.AgentOutcome)
	assert.Equal(t, agent.StatusCompleted, result.AgentOutcome.Status)

	run, err := runs.GetRun(context.Background(), result.AgentOutcome.RunID)
	require.NoError(t, err)
	assert.Equal(t, audit.AgentRunStatusCompleted, run.Status)

	ev, err := webhooks.Get(context.Background(), result.WebhookEventID)
	require.NoError(t, err)
	assert.Equal(t, audit.DispatchStatusDispatched, ev.DispatchStatus)
}

func TestIngestPrefersAgentGraphOverAutomationForSameTrigger(t *testing.T) {
	automationCalled := false
	automations := automation.NewRegistry()
	automations.Register(&stubAutomation{
		automationType: "reconciliation",
		handlers: map[string]automation.HandlerFunc{
			"create:account.move": func(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
				automationCalled = true
				return automation.AutomationResult{Confidence: 0.99}, nil
			},
		},
	})
	rules := map[string]*config.AutomationConfig{
		"reconciliation": {EventType: "create", Model: "account.move", Enabled: true},
	}

	agents := agent.NewRegistry()
	agents.Register("procure_to_pay", func() *agent.Graph {
		g := agent.NewGraph("procure_to_pay", "only")
		g.AddNode("only", func(ctx context.Context, s agent.State) (agent.NodeResult, error) {
			return agent.NodeResult{}, nil
		}).AddEdge("only", agent.End)
		return g
	})
	agentCfgs := map[string]*config.AgentConfig{
		"procure_to_pay": {TriggerModel: "account.move", TriggerEvent: "create"},
	}

	o, _, _ := newTestOrchestrator(t, rules, agentCfgs, automations, agents)
	result, err := o.Ingest(context.Background(), WebhookPayload{EventType: "create", Model: "account.move", RecordID: "7"})
	require.NoError(t, err)
	require.NotNil(t, result.AgentOutcome)
	assert.Nil(t, result.AutomationResult)
	assert.False(t, automationCalled)
}
