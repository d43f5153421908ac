// Package approval is the C9 pending-decision queue: it lists AuditLog
// rows awaiting a human verdict, records that verdict, and on approval
// replays the original automation handler in execute_approved mode
// (spec.md §4.7), reusing pkg/automation.Base the same way the
// orchestrator does rather than touching pkg/audit directly.
package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
)

// Decision is the (audit_log_id, approved, approved_by) payload spec.md
// §4.7 and §6's POST /api/approvals endpoint names.
type Decision struct {
	AuditLogID string
	Approved   bool
	ApprovedBy string
}

// Service implements the approval workflow against one AuditLogStore and
// one automation Registry, sharing the Base that the orchestrator uses so
// the confidence-gate bookkeeping (AuditLogID propagation, Now) stays in
// one place.
type Service struct {
	logs        audit.AuditLogStore
	automations *automation.Registry
	base        *automation.Base
}

// New wires a Service.
func New(logs audit.AuditLogStore, automations *automation.Registry, base *automation.Base) *Service {
	return &Service{logs: logs, automations: automations, base: base}
}

// Pending lists AuditLog rows awaiting a verdict, most recent first (the
// order pkg/audit's ListPendingApproval is expected to return).
func (s *Service) Pending(ctx context.Context, limit int) ([]*audit.AuditLog, error) {
	return s.logs.ListPendingApproval(ctx, limit)
}

// Decide resolves one pending AuditLog row. A rejection only flips the
// row's status; an approval re-invokes the original handler via
// Base.ExecuteApproved, which transitions the row to EXECUTED or FAILED.
func (s *Service) Decide(ctx context.Context, d Decision) (*audit.AuditLog, error) {
	log, err := s.logs.Get(ctx, d.AuditLogID)
	if err != nil {
		return nil, err
	}
	if log.Status != audit.AuditStatusPending {
		return nil, apperrors.NewBusinessInvariant(
			fmt.Sprintf("audit log %s is not pending (status=%s)", log.ID, log.Status))
	}

	approvedBy := d.ApprovedBy
	log.ApprovedBy = &approvedBy

	if !d.Approved {
		log.Status = audit.AuditStatusRejected
		if err := s.logs.Update(ctx, log); err != nil {
			return nil, err
		}
		return log, nil
	}

	log.Status = audit.AuditStatusApproved
	if err := s.logs.Update(ctx, log); err != nil {
		return nil, err
	}

	handler, err := s.automations.Resolve(log.AutomationType, log.EventType, log.TargetModel)
	if err != nil {
		if errors.Is(err, automation.ErrNoHandler) {
			return nil, apperrors.NewBusinessInvariant(
				fmt.Sprintf("no handler registered to replay audit log %s (automation_type=%s event_type=%s model=%s)",
					log.ID, log.AutomationType, log.EventType, log.TargetModel))
		}
		return nil, err
	}

	if err := s.base.ExecuteApproved(ctx, log, handler); err != nil {
		return log, err
	}
	return log, nil
}
