// Package monthend is the C10 automation backing the MonthEndClosing +
// ClosingStep domain tables (spec.md §3, §6's POST /api/close/start and
// GET /api/close/{period}/status). It is distinct from
// pkg/agents.MonthEndCloseGraph (C7): the agent runs the multi-step
// scan/classify/score/report workflow for one closing; this package owns
// the closing's lifecycle record and the per-step detail rows the
// operator API reads, and reuses the agent's pure readiness-score formula
// rather than duplicating it. AutomationType "monthend".
package monthend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/agents"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/periodutil"
)

const AutomationType = "monthend"

const (
	ClosingOpen      = "open"
	ClosingClosing   = "closing"
	ClosingClosed    = "closed"
	ClosingReopened  = "reopened"
)

// ClosingStep is one named stage of a closing (scan_issues,
// anomaly_detection, classify_severity, ...), tracked independently of
// the agent's in-memory AgentStep rows so the status survives the agent
// run's completion.
type ClosingStep struct {
	Name      string
	Status    string
	Detail    string
	UpdatedAt time.Time
}

// Closing is the MonthEndClosing parent record.
type Closing struct {
	Period         periodutil.Period
	Status         string
	ReadinessScore float64
	Steps          []ClosingStep
	StartedAt      time.Time
	ClosedAt       *time.Time
}

// Store holds one closing per period, append-only: a period is never
// deleted once opened, matching spec.md §3's "retained indefinitely" for
// domain-specific parent records.
type Store struct {
	mu       sync.Mutex
	closings map[string]*Closing
}

func NewStore() *Store {
	return &Store{closings: make(map[string]*Closing)}
}

func (s *Store) Get(period periodutil.Period) (*Closing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.closings[period.String()]
	return c, ok
}

func (s *Store) start(period periodutil.Period) *Closing {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Closing{Period: period, Status: ClosingClosing, StartedAt: time.Now()}
	s.closings[period.String()] = c
	return c
}

func (s *Store) recordStep(period periodutil.Period, step ClosingStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.closings[period.String()]
	if !ok {
		return
	}
	c.Steps = append(c.Steps, step)
}

func (s *Store) finish(period periodutil.Period, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.closings[period.String()]
	if !ok {
		return
	}
	now := time.Now()
	c.Status = ClosingClosed
	c.ReadinessScore = score
	c.ClosedAt = &now
}

// Automation owns the closing lifecycle; it does not run
// pkg/agents.MonthEndCloseGraph. It makes one pass of issue counting
// against the ERP and hands the counts to the agent's pure scoring
// formula, agents.MonthEndReadinessScore.
type Automation struct {
	erp   erpclient.Client
	store *Store
}

func New(erp erpclient.Client, store *Store) *Automation {
	return &Automation{erp: erp, store: store}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return nil }

// Handlers is empty: closings are operator-initiated (POST
// /api/close/start), not webhook-triggered.
func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{}
}

// Get returns period's closing, for GET /api/close/{period}/status.
func (a *Automation) Get(period periodutil.Period) (*Closing, bool) {
	return a.store.Get(period)
}

// StartClose opens a closing for period, scans open issues against the
// ERP, and computes the readiness score via the same pure formula the
// agent graph uses (spec.md §4.6/seed scenario 5).
func (a *Automation) StartClose(ctx context.Context, period periodutil.Period) (*Closing, error) {
	closing := a.store.start(period)

	issues, err := a.erp.SearchRead(ctx, "account.move",
		erpclient.Domain{erpclient.Triple{Field: "state", Operator: "=", Value: "draft"}},
		[]string{"id", "review_status"}, erpclient.SearchOptions{})
	if err != nil {
		return nil, fmt.Errorf("scan closing issues for %s: %w", period, err)
	}
	a.store.recordStep(period, ClosingStep{Name: "scan_issues", Status: "completed", Detail: fmt.Sprintf("%d issues found", len(issues)), UpdatedAt: time.Now()})

	pendingReview := 0
	for _, issue := range issues {
		if status, _ := issue["review_status"].(string); status == "pending" {
			pendingReview++
		}
	}
	a.store.recordStep(period, ClosingStep{Name: "classify_severity", Status: "completed", UpdatedAt: time.Now()})

	score := agents.MonthEndReadinessScore(len(issues), pendingReview, 0, 0, 0)
	a.store.finish(period, score)
	a.store.recordStep(period, ClosingStep{Name: "calculate_readiness_score", Status: "completed", Detail: fmt.Sprintf("score=%.1f", score), UpdatedAt: time.Now()})

	closing, _ = a.store.Get(period)
	return closing, nil
}

// ScanReopenedClosings is the scheduler-registered sweep that flags any
// closed period whose account moves have slipped back into "draft",
// matching spec.md §4.8's idempotency requirement: running this twice the
// same day without new draft moves leaves every closing's status
// untouched, since it only ever transitions closed -> reopened and never
// the reverse.
func (a *Automation) ScanReopenedClosings(ctx context.Context) (string, error) {
	a.store.mu.Lock()
	periods := make([]periodutil.Period, 0, len(a.store.closings))
	for _, c := range a.store.closings {
		if c.Status == ClosingClosed {
			periods = append(periods, c.Period)
		}
	}
	a.store.mu.Unlock()

	draftMoves, err := a.erp.SearchRead(ctx, "account.move",
		erpclient.Domain{erpclient.Triple{Field: "state", Operator: "=", Value: "draft"}},
		[]string{"id", "date"}, erpclient.SearchOptions{})
	if err != nil {
		return "", fmt.Errorf("check reopened moves: %w", err)
	}

	reopened := 0
	for _, period := range periods {
		inPeriod := false
		for _, move := range draftMoves {
			d, ok := move["date"].(time.Time)
			if ok && period.Contains(d) {
				inPeriod = true
				break
			}
		}
		if inPeriod {
			a.store.mu.Lock()
			if c, ok := a.store.closings[period.String()]; ok && c.Status == ClosingClosed {
				c.Status = ClosingReopened
				reopened++
			}
			a.store.mu.Unlock()
		}
	}
	return fmt.Sprintf("%d closings reopened across %d closed periods", reopened, len(periods)), nil
}
