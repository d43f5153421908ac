// Package reconciliation is the C10 automation wrapping pkg/reconcile (C4)
// into the dispatch pipeline: it scores a newly imported bank statement
// line against open journal entries and either auto-matches an exact hit
// or leaves it pending for the interactive reconciliation session the
// operator API exposes. AutomationType "reconciliation".
package reconciliation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/reconcile"
)

const AutomationType = "reconciliation"

// Session is the interactive batch spec.md §3 names
// (ReconciliationSession): an operator works a journal's unreconciled
// lines one at a time, with auto-matched/manually-matched/skipped counts
// and a pool of learned rules it accumulates as it goes.
type Session struct {
	ID              string
	UserID          int64
	JournalID       int64
	Status          string
	TotalLines      int
	AutoMatched     int
	ManuallyMatched int
	Skipped         int
	LearnedRules    []reconcile.LearnedRule
	StartedAt       time.Time
}

const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// Remaining is the derived invariant A5: total minus every disposition,
// never negative.
func (s *Session) Remaining() int {
	r := s.TotalLines - s.AutoMatched - s.ManuallyMatched - s.Skipped
	if r < 0 {
		return 0
	}
	return r
}

// SessionStore holds in-progress reconciliation sessions. Unlike AuditLog
// and friends (pkg/audit, backed by pgx), sessions are read at session
// start and persisted at session close only (spec.md §5's shared-resource
// policy), so a small in-memory store behind a mutex is sufficient scope
// for this module rather than a dedicated table-backed repository.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	seq      int
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

func (s *SessionStore) Start(userID, journalID int64, totalLines int) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	sess := &Session{
		ID:         fmt.Sprintf("recon-%d", s.seq),
		UserID:     userID,
		JournalID:  journalID,
		Status:     SessionActive,
		TotalLines: totalLines,
		StartedAt:  time.Now(),
	}
	s.sessions[sess.ID] = sess
	return sess
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Match records a manual match, generating a LearnedRule from the pair's
// lower-cased stripped field patterns (spec.md §4.4.1's "a learned rule
// is generated on every manual match").
func (s *SessionStore) Match(id string, line reconcile.BankLine, entry reconcile.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("reconciliation session %s not found", id)
	}
	sess.ManuallyMatched++
	sess.LearnedRules = append(sess.LearnedRules, reconcile.LearnedRule{
		BankRefPattern:      strings.ToLower(strings.TrimSpace(line.Ref)),
		BankPartnerPattern:  strings.ToLower(strings.TrimSpace(line.Partner)),
		EntryRefPattern:     strings.ToLower(strings.TrimSpace(entry.Ref)),
		EntryPartnerPattern: strings.ToLower(strings.TrimSpace(entry.Partner)),
		CreatedAt:           time.Now(),
	})
	return nil
}

func (s *SessionStore) Skip(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("reconciliation session %s not found", id)
	}
	sess.Skipped++
	return nil
}

// Automation auto-matches a single newly imported bank line against the
// open candidates in its journal.
type Automation struct {
	erp erpclient.Client
}

func New(erp erpclient.Client) *Automation {
	return &Automation{erp: erp}
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return []string{"account.bank.statement.line"} }

// OpenLineCount counts unreconciled bank statement lines for journalID,
// the total POST /api/reconciliation/start seeds a new Session with.
func (a *Automation) OpenLineCount(ctx context.Context, journalID int64) (int, error) {
	return a.erp.SearchCount(ctx, "account.bank.statement.line", erpclient.Domain{
		erpclient.Triple{Field: "journal_id", Operator: "=", Value: journalID},
		erpclient.Triple{Field: "reconciled", Operator: "=", Value: false},
	})
}

// Suggestions scores every open bank line in journalID against every open
// journal entry, applying sess's learned rules, for GET
// /api/reconciliation/{id}/suggestions.
func (a *Automation) Suggestions(ctx context.Context, journalID int64, rules []reconcile.LearnedRule) ([]reconcile.Suggestion, error) {
	lineRecs, err := a.erp.SearchRead(ctx, "account.bank.statement.line",
		erpclient.Domain{
			erpclient.Triple{Field: "journal_id", Operator: "=", Value: journalID},
			erpclient.Triple{Field: "reconciled", Operator: "=", Value: false},
		},
		[]string{"id", "ref", "amount", "partner_name"}, erpclient.SearchOptions{})
	if err != nil {
		return nil, fmt.Errorf("load open bank lines: %w", err)
	}
	lines := make([]reconcile.BankLine, 0, len(lineRecs))
	for _, rec := range lineRecs {
		id, _ := rec["id"].(int64)
		ref, _ := rec["ref"].(string)
		amount, _ := rec["amount"].(float64)
		partner, _ := rec["partner_name"].(string)
		lines = append(lines, reconcile.BankLine{ID: strconv.FormatInt(id, 10), Ref: ref, Amount: amount, Partner: partner})
	}

	entryRecs, err := a.erp.SearchRead(ctx, "account.move.line",
		erpclient.Domain{erpclient.Triple{Field: "reconciled", Operator: "=", Value: false}},
		[]string{"id", "ref", "amount_residual", "partner_name"}, erpclient.SearchOptions{})
	if err != nil {
		return nil, fmt.Errorf("load open entries: %w", err)
	}
	candidates := make([]reconcile.Candidate, 0, len(entryRecs))
	for _, rec := range entryRecs {
		id, _ := rec["id"].(int64)
		ref, _ := rec["ref"].(string)
		resid, _ := rec["amount_residual"].(float64)
		partner, _ := rec["partner_name"].(string)
		candidates = append(candidates, reconcile.Candidate{ID: strconv.FormatInt(id, 10), Ref: ref, AmountResidual: resid, Partner: partner})
	}

	return reconcile.Allocate(lines, candidates, rules), nil
}

// ScanAutoMatch is the scheduler-registered sweep that re-checks every
// bank journal's open lines for exact matches the per-line webhook
// handler may have missed (e.g. a candidate entry that didn't exist yet
// when the line first arrived), auto-applying any MatchExact suggestion
// and leaving everything else for the interactive session.
func (a *Automation) ScanAutoMatch(ctx context.Context) (string, error) {
	journals, err := a.erp.SearchRead(ctx, "account.journal",
		erpclient.Domain{erpclient.Triple{Field: "type", Operator: "=", Value: "bank"}},
		[]string{"id"}, erpclient.SearchOptions{})
	if err != nil {
		return "", fmt.Errorf("list bank journals: %w", err)
	}

	matched := 0
	for _, j := range journals {
		journalID, _ := j["id"].(int64)
		suggestions, err := a.Suggestions(ctx, journalID, nil)
		if err != nil {
			return "", fmt.Errorf("scan journal %d: %w", journalID, err)
		}
		for _, s := range suggestions {
			if s.MatchType != reconcile.MatchExact {
				continue
			}
			lineID, err1 := strconv.ParseInt(s.LineID, 10, 64)
			entryID, err2 := strconv.ParseInt(s.MatchedEntryID, 10, 64)
			if err1 != nil || err2 != nil {
				continue
			}
			if err := a.erp.Write(ctx, "account.bank.statement.line", []int64{lineID}, erpclient.Record{"reconciled": true}); err != nil {
				return "", fmt.Errorf("auto-match line %d: %w", lineID, err)
			}
			if err := a.erp.Write(ctx, "account.move.line", []int64{entryID}, erpclient.Record{"reconciled": true}); err != nil {
				return "", fmt.Errorf("auto-match entry %d: %w", entryID, err)
			}
			matched++
		}
	}
	return fmt.Sprintf("%d lines auto-matched across %d bank journals", matched, len(journals)), nil
}

func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{
		"create:account.bank.statement.line": a.handleNewLine,
	}
}

func (a *Automation) handleNewLine(ctx context.Context, ev automation.Event) (automation.AutomationResult, error) {
	ref, _ := ev.Payload["ref"].(string)
	amount, _ := ev.Payload["amount"].(float64)
	partner, _ := ev.Payload["partner_name"].(string)
	lineID, _ := ev.Payload["id"].(int64)

	line := reconcile.BankLine{ID: ev.RecordID, Ref: ref, Amount: amount, Partner: partner}

	records, err := a.erp.SearchRead(ctx, "account.move.line",
		erpclient.Domain{erpclient.Triple{Field: "reconciled", Operator: "=", Value: false}},
		[]string{"id", "ref", "amount_residual", "partner_name"},
		erpclient.SearchOptions{},
	)
	if err != nil {
		return automation.AutomationResult{}, fmt.Errorf("load open entries: %w", err)
	}

	candidates := make([]reconcile.Candidate, 0, len(records))
	for _, rec := range records {
		id, _ := rec["id"].(int64)
		cref, _ := rec["ref"].(string)
		cresid, _ := rec["amount_residual"].(float64)
		cpartner, _ := rec["partner_name"].(string)
		candidates = append(candidates, reconcile.Candidate{ID: strconv.FormatInt(id, 10), Ref: cref, AmountResidual: cresid, Partner: cpartner})
	}

	suggestions := reconcile.Allocate([]reconcile.BankLine{line}, candidates, nil)
	if len(suggestions) == 0 {
		return automation.AutomationResult{
			Success:    true,
			ActionName: "no_match_found",
			Model:      ev.Model,
			RecordID:   ev.RecordID,
			Confidence: 0.0,
			Reasoning:  "no candidate cleared the partial-match floor",
		}, nil
	}

	s := suggestions[0]
	entryID, _ := strconv.ParseInt(s.MatchedEntryID, 10, 64)
	changes := map[string]interface{}{"matched_entry_id": entryID, "match_type": string(s.MatchType)}
	return automation.AutomationResult{
		ActionName:  "reconcile_bank_line",
		Model:       ev.Model,
		RecordID:    ev.RecordID,
		Confidence:  s.Confidence,
		Reasoning:   fmt.Sprintf("%s match against entry %d", s.MatchType, entryID),
		ChangesMade: changes,
		Apply: func(ctx context.Context) error {
			if err := a.erp.Write(ctx, "account.bank.statement.line", []int64{lineID}, erpclient.Record{"reconciled": true}); err != nil {
				return err
			}
			return a.erp.Write(ctx, "account.move.line", []int64{entryID}, erpclient.Record{"reconciled": true})
		},
	}, nil
}
