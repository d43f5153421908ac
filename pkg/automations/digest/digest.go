// Package digest is the C10 automation behind the DailyDigest table
// (spec.md §3's "daily_digests(digest_date, user_role)" and §4.5's
// "generate daily digests per configured role"). It rolls up the day's
// automation activity via pkg/audit.AuditLogStore.CountByAutomationType
// and the pending-approval queue, then delivers the summary through
// pkg/notify. AutomationType "digest".
package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/notify"
)

const AutomationType = "digest"

// Digest is the DailyDigest parent record.
type Digest struct {
	Date             time.Time
	Role             string
	ActivityByType   map[string]int
	PendingApprovals int
	Outcome          notify.Outcome
	GeneratedAt      time.Time
}

func key(date time.Time, role string) string {
	return fmt.Sprintf("%s|%s", date.Format("2006-01-02"), role)
}

// Store holds one digest per (date, role), the idempotency key spec.md
// §4.8 requires: regenerating the same day's digest for the same role
// must not re-deliver it.
type Store struct {
	mu      sync.Mutex
	digests map[string]*Digest
}

func NewStore() *Store {
	return &Store{digests: make(map[string]*Digest)}
}

func (s *Store) get(date time.Time, role string) (*Digest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.digests[key(date, role)]
	return d, ok
}

func (s *Store) put(d *Digest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests[key(d.Date, d.Role)] = d
}

// RoleChannel maps a configured role to the notification channel its
// digest is delivered to.
type RoleChannel map[string]string

// Automation generates and delivers one role's daily digest.
type Automation struct {
	logs    audit.AuditLogStore
	sender  notify.Sender
	store   *Store
	roles   RoleChannel
}

func New(logs audit.AuditLogStore, sender notify.Sender, store *Store, roles RoleChannel) *Automation {
	return &Automation{logs: logs, sender: sender, store: store, roles: roles}
}

func (a *Automation) AutomationType() string                      { return AutomationType }
func (a *Automation) WatchedModels() []string                     { return nil }
func (a *Automation) Handlers() map[string]automation.HandlerFunc { return map[string]automation.HandlerFunc{} }

// Generate builds and delivers role's digest for date, returning the
// already-delivered digest unchanged if one exists for the same
// (date, role) (idempotent re-run, spec.md §4.8).
func (a *Automation) Generate(ctx context.Context, date time.Time, role string) (*Digest, error) {
	day := date.Truncate(24 * time.Hour)
	if existing, ok := a.store.get(day, role); ok {
		return existing, nil
	}

	activity, err := a.logs.CountByAutomationType(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("count automation activity for digest %s/%s: %w", day.Format("2006-01-02"), role, err)
	}

	pending, err := a.logs.ListPendingApproval(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("count pending approvals for digest: %w", err)
	}

	channel, ok := a.roles[role]
	outcome := notify.OutcomeChannelDisabled
	if ok {
		total := 0
		for _, count := range activity {
			total += count
		}
		body := fmt.Sprintf("%d automations ran, %d pending approvals", total, len(pending))
		var sendErr error
		outcome, sendErr = a.sender.Notify(ctx, notify.Message{Channel: channel, Subject: "Daily automation digest", Body: body})
		if sendErr != nil && outcome != notify.OutcomeDeliveryFailed {
			return nil, sendErr
		}
	}

	d := &Digest{
		Date: day, Role: role, ActivityByType: activity, PendingApprovals: len(pending),
		Outcome: outcome, GeneratedAt: time.Now(),
	}
	a.store.put(d)
	return d, nil
}

// ScanDailyDigests generates every configured role's digest for today,
// matching pkg/scheduler.JobFunc's shape for cron registration.
func (a *Automation) ScanDailyDigests(ctx context.Context) (string, error) {
	today := time.Now().UTC()
	generated := 0
	for role := range a.roles {
		if _, err := a.Generate(ctx, today, role); err != nil {
			return "", fmt.Errorf("generate digest for role %s: %w", role, err)
		}
		generated++
	}
	return fmt.Sprintf("%d role digests generated for %s", generated, today.Format("2006-01-02")), nil
}
