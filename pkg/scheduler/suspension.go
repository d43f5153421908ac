package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
)

// SuspensionTimeoutSweep returns a JobFunc that resolves every pending
// AgentSuspension past its ExpiresAt as timed_out and marks the owning
// AgentRun FAILED (spec.md §7's SuspensionTimeout taxonomy entry;
// §5.11's supplementation of the "Cancellation / timeouts" behaviour
// spec.md names but leaves unmechanized). The original AgentSuspension
// is never reopened as pending, matching the propagation policy's
// "approval-apply failures mark the audit row FAILED; they do not
// re-open it as pending" rule extended to timeouts.
func SuspensionTimeoutSweep(runs audit.AgentRunStore, now func() time.Time) JobFunc {
	return func(ctx context.Context) (string, error) {
		expired, err := runs.ListExpiredSuspensions(ctx, now())
		if err != nil {
			return "", err
		}

		for _, s := range expired {
			resolvedAt := now()
			s.Status = audit.SuspensionStatusTimedOut
			s.ResolvedAt = &resolvedAt
			if err := runs.UpdateSuspension(ctx, s); err != nil {
				return "", err
			}

			run, err := runs.GetRun(ctx, s.AgentRunID)
			if err != nil {
				return "", err
			}
			run.Status = audit.AgentRunStatusFailed
			run.TerminalReason = apperrors.NewSuspensionTimeout(
				fmt.Sprintf("suspension %s expired at %s", s.ID, s.ExpiresAt.Format(time.RFC3339)),
			).Error()
			finishedAt := now()
			run.FinishedAt = &finishedAt
			if err := runs.UpdateRun(ctx, run); err != nil {
				return "", err
			}
		}

		return fmt.Sprintf("%d suspension(s) timed out", len(expired)), nil
	}
}
