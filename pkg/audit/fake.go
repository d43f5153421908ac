package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeState is the shared in-memory backing store behind the four Fake*
// types below. It is split the same way the pgx-backed stores are (see
// pkg/audit/pgcommon.go): AuditLogStore and WebhookEventStore both declare
// Create/Get with different signatures, so one type cannot implement both;
// every Fake* type instead holds a pointer to the same fakeState and
// implements exactly one repository interface.
type fakeState struct {
	mu sync.Mutex

	logs        map[string]*AuditLog
	rules       map[string]*AutomationRule
	webhooks    map[string]*WebhookEvent
	runs        map[string]*AgentRun
	steps       map[string]*AgentStep
	decisions   map[string]*AgentDecision
	suspensions map[string]*AgentSuspension
}

func newFakeState() *fakeState {
	return &fakeState{
		logs:        make(map[string]*AuditLog),
		rules:       make(map[string]*AutomationRule),
		webhooks:    make(map[string]*WebhookEvent),
		runs:        make(map[string]*AgentRun),
		steps:       make(map[string]*AgentStep),
		decisions:   make(map[string]*AgentDecision),
		suspensions: make(map[string]*AgentSuspension),
	}
}

// FakeAuditLogStore, FakeRuleStore, FakeWebhookEventStore, and
// FakeAgentRunStore are in-memory implementations of the four C3
// repository interfaces, used by unit tests across pkg/automation,
// pkg/scheduler, and pkg/agent instead of a mocking framework (matching
// the fakes-over-mocks idiom already used by erpclient.Fake and
// llmclient.Fake).
type FakeAuditLogStore struct{ s *fakeState }
type FakeRuleStore struct{ s *fakeState }
type FakeWebhookEventStore struct{ s *fakeState }
type FakeAgentRunStore struct{ s *fakeState }

// NewFakeStore creates one shared in-memory backing store and returns the
// four typed views onto it.
func NewFakeStore() (*FakeAuditLogStore, *FakeRuleStore, *FakeWebhookEventStore, *FakeAgentRunStore) {
	s := newFakeState()
	return &FakeAuditLogStore{s}, &FakeRuleStore{s}, &FakeWebhookEventStore{s}, &FakeAgentRunStore{s}
}

// --- FakeAuditLogStore ---

func (f *FakeAuditLogStore) Create(_ context.Context, log *AuditLog) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *log
	f.s.logs[log.ID] = &cp
	return nil
}

func (f *FakeAuditLogStore) Update(_ context.Context, log *AuditLog) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.logs[log.ID]; !ok {
		return ErrNotFound
	}
	cp := *log
	f.s.logs[log.ID] = &cp
	return nil
}

func (f *FakeAuditLogStore) Get(_ context.Context, id string) (*AuditLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	log, ok := f.s.logs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *log
	return &cp, nil
}

func (f *FakeAuditLogStore) ListByStatus(_ context.Context, status string, limit int) ([]*AuditLog, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*AuditLog
	for _, log := range f.s.logs {
		if log.Status != status {
			continue
		}
		cp := *log
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *FakeAuditLogStore) ListPendingApproval(ctx context.Context, limit int) ([]*AuditLog, error) {
	return f.ListByStatus(ctx, AuditStatusPending, limit)
}

func (f *FakeAuditLogStore) CountByAutomationType(_ context.Context, since time.Time) (map[string]int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make(map[string]int)
	for _, log := range f.s.logs {
		if log.Timestamp.Before(since) {
			continue
		}
		out[log.AutomationType]++
	}
	return out, nil
}

// --- FakeRuleStore ---

func (f *FakeRuleStore) Upsert(_ context.Context, rule *AutomationRule) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	cp := *rule
	f.s.rules[rule.ID] = &cp
	return nil
}

func (f *FakeRuleStore) Get(_ context.Context, id string) (*AutomationRule, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *FakeRuleStore) GetByName(_ context.Context, name string) (*AutomationRule, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, r := range f.s.rules {
		if r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *FakeRuleStore) GetForEvent(_ context.Context, eventType, model string) (*AutomationRule, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var generic *AutomationRule
	for _, r := range f.s.rules {
		if r.EventType != eventType {
			continue
		}
		if r.Model == model && model != "" {
			cp := *r
			return &cp, nil
		}
		if r.Model == "" {
			generic = r
		}
	}
	if generic != nil {
		cp := *generic
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (f *FakeRuleStore) ListAll(_ context.Context) ([]*AutomationRule, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]*AutomationRule, 0, len(f.s.rules))
	for _, r := range f.s.rules {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// --- FakeWebhookEventStore ---

func (f *FakeWebhookEventStore) Create(_ context.Context, event *WebhookEvent) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, e := range f.s.webhooks {
		if e.Model == event.Model && e.RecordID == event.RecordID &&
			e.EventType == event.EventType && e.WriteDate.Equal(event.WriteDate) {
			return ErrDuplicateEvent
		}
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	cp := *event
	f.s.webhooks[event.ID] = &cp
	return nil
}

func (f *FakeWebhookEventStore) UpdateDispatchStatus(_ context.Context, id, status string, auditLogID *string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e, ok := f.s.webhooks[id]
	if !ok {
		return ErrNotFound
	}
	e.DispatchStatus = status
	e.AuditLogID = auditLogID
	return nil
}

func (f *FakeWebhookEventStore) Get(_ context.Context, id string) (*WebhookEvent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	e, ok := f.s.webhooks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// --- FakeAgentRunStore ---

func (f *FakeAgentRunStore) CreateRun(_ context.Context, run *AgentRun) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	cp := *run
	f.s.runs[run.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) UpdateRun(_ context.Context, run *AgentRun) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.runs[run.ID]; !ok {
		return ErrNotFound
	}
	cp := *run
	f.s.runs[run.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) GetRun(_ context.Context, id string) (*AgentRun, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r, ok := f.s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *FakeAgentRunStore) CreateStep(_ context.Context, step *AgentStep) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if step.ID == "" {
		step.ID = uuid.NewString()
	}
	cp := *step
	f.s.steps[step.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) UpdateStep(_ context.Context, step *AgentStep) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.steps[step.ID]; !ok {
		return ErrNotFound
	}
	cp := *step
	f.s.steps[step.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) CountSteps(_ context.Context, agentRunID string) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, s := range f.s.steps {
		if s.AgentRunID == agentRunID {
			n++
		}
	}
	return n, nil
}

func (f *FakeAgentRunStore) CountVisitsToNode(_ context.Context, agentRunID, nodeName string) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := 0
	for _, s := range f.s.steps {
		if s.AgentRunID == agentRunID && s.NodeName == nodeName {
			n++
		}
	}
	return n, nil
}

func (f *FakeAgentRunStore) CreateDecision(_ context.Context, decision *AgentDecision) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}
	cp := *decision
	f.s.decisions[decision.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) UpdateDecision(_ context.Context, decision *AgentDecision) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.decisions[decision.ID]; !ok {
		return ErrNotFound
	}
	cp := *decision
	f.s.decisions[decision.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) CreateSuspension(_ context.Context, suspension *AgentSuspension) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if suspension.ID == "" {
		suspension.ID = uuid.NewString()
	}
	cp := *suspension
	f.s.suspensions[suspension.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) UpdateSuspension(_ context.Context, suspension *AgentSuspension) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.suspensions[suspension.ID]; !ok {
		return ErrNotFound
	}
	cp := *suspension
	f.s.suspensions[suspension.ID] = &cp
	return nil
}

func (f *FakeAgentRunStore) GetSuspension(_ context.Context, id string) (*AgentSuspension, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	s, ok := f.s.suspensions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *FakeAgentRunStore) ListExpiredSuspensions(_ context.Context, asOf time.Time) ([]*AgentSuspension, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*AgentSuspension
	for _, s := range f.s.suspensions {
		if s.Status == SuspensionStatusPending && s.ExpiresAt.Before(asOf) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}
