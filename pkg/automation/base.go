package automation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
)

// Base embeds confidence gating and audit logging so no concrete
// automation talks to pkg/audit directly (spec.md §5.10's enforcement
// note). It owns the only AuditLogStore reference any handler-dispatching
// code needs.
type Base struct {
	Store audit.AuditLogStore
	// Now is overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// NewBase wires a Base against store, grounded on the teacher's
// BaseAgent/Controller composition in pkg/agent/base_agent.go.
func NewBase(store audit.AuditLogStore) *Base {
	return &Base{Store: store, Now: time.Now}
}

// Dispatch runs handler, applies the τ_d/τ_a confidence gate, and persists
// exactly one AuditLog row before any ERP side effect is attempted
// (invariant A1). The row is created before handler.Apply ever runs and
// updated afterward, so a crash mid-apply still leaves an auditable trail.
func (b *Base) Dispatch(
	ctx context.Context,
	automationType string,
	ev Event,
	handler HandlerFunc,
	rule *config.AutomationConfig,
	defaults *config.Defaults,
) (AutomationResult, error) {
	result, err := handler(ctx, ev)
	now := b.Now()

	log := &audit.AuditLog{
		ID:             uuid.NewString(),
		Timestamp:      now,
		AutomationType: automationType,
		EventType:      ev.EventType,
		TargetModel:    ev.Model,
		TargetRecordID: ev.RecordID,
		InputSnapshot:  ev.Payload,
	}

	if err != nil {
		msg := err.Error()
		log.Status = audit.AuditStatusFailed
		log.ErrorMessage = &msg
		if createErr := b.Store.Create(ctx, log); createErr != nil {
			return AutomationResult{}, createErr
		}
		return AutomationResult{Success: false, ErrorMessage: msg, AuditLogID: log.ID}, err
	}

	log.ActionName = result.ActionName
	log.Confidence = result.Confidence
	log.Reasoning = result.Reasoning
	log.TokensUsed = result.TokensUsed

	confidenceThreshold, autoApprove := config.ResolvedThresholds(rule, defaults)

	var apply func(ctx context.Context) error
	switch {
	case result.Confidence >= autoApprove:
		// A2: side effect attempted in the same invocation. The row is
		// created as pending and flipped to executed/failed below, so it
		// still exists before Apply runs.
		log.Status = audit.AuditStatusPending
		log.OutputSnapshot = result.ChangesMade
		apply = result.Apply
		if apply == nil {
			// Nothing to commit: the verdict is executed as it stands.
			log.Status = audit.AuditStatusExecuted
			log.ExecutedAt = &now
		}
	case result.Confidence >= confidenceThreshold:
		log.Status = audit.AuditStatusPending
		log.OutputSnapshot = result.ChangesMade
		result.NeedsApproval = true
	default:
		// Below τ_d: recorded as a note, no side effect, no approval
		// request (spec.md §4.3, invariant A2's third clause).
		log.Status = audit.AuditStatusExecuted
		log.OutputSnapshot = map[string]interface{}{}
		log.ExecutedAt = &now
		result.ChangesMade = nil
		result.NeedsApproval = false
	}

	if createErr := b.Store.Create(ctx, log); createErr != nil {
		return AutomationResult{}, createErr
	}
	result.AuditLogID = log.ID

	if apply == nil {
		return result, nil
	}

	if applyErr := apply(ctx); applyErr != nil {
		msg := applyErr.Error()
		log.Status = audit.AuditStatusFailed
		log.ErrorMessage = &msg
		if updateErr := b.Store.Update(ctx, log); updateErr != nil {
			return AutomationResult{}, updateErr
		}
		result.Success = false
		result.ErrorMessage = msg
		return result, applyErr
	}

	executedAt := b.Now()
	log.Status = audit.AuditStatusExecuted
	log.ExecutedAt = &executedAt
	if updateErr := b.Store.Update(ctx, log); updateErr != nil {
		return AutomationResult{}, updateErr
	}
	result.Success = true
	return result, nil
}

// ExecuteApproved re-invokes handler in ModeExecuteApproved carrying log's
// stored OutputSnapshot as ApprovedChanges, then transitions log to
// EXECUTED or FAILED (spec.md §4.7's approval replay). Unlike Dispatch,
// no confidence gate runs: a human already approved this row, so Apply
// always fires when the handler returns one.
func (b *Base) ExecuteApproved(ctx context.Context, log *audit.AuditLog, handler HandlerFunc) error {
	ev := Event{
		EventType:       log.EventType,
		Model:           log.TargetModel,
		RecordID:        log.TargetRecordID,
		Payload:         log.InputSnapshot,
		Mode:            ModeExecuteApproved,
		ApprovedChanges: log.OutputSnapshot,
	}
	result, err := handler(ctx, ev)
	if err != nil {
		return b.failApproved(ctx, log, err)
	}
	if result.Apply != nil {
		if applyErr := result.Apply(ctx); applyErr != nil {
			return b.failApproved(ctx, log, applyErr)
		}
	}
	executedAt := b.Now()
	log.Status = audit.AuditStatusExecuted
	log.ExecutedAt = &executedAt
	return b.Store.Update(ctx, log)
}

func (b *Base) failApproved(ctx context.Context, log *audit.AuditLog, cause error) error {
	msg := cause.Error()
	log.Status = audit.AuditStatusFailed
	log.ErrorMessage = &msg
	if err := b.Store.Update(ctx, log); err != nil {
		return err
	}
	return cause
}
