package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/apperrors"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
)

// suspensionNodeKey is the reserved key under which Runner records which
// node requested suspension, inside the AgentSuspension's PromptPayload.
// It never appears in the business State the node functions see.
const suspensionNodeKey = "__node__"

// Runner executes compiled graphs, persisting an AgentRun, one AgentStep
// per node, and an AgentSuspension whenever a node asks to pause for
// human input.
type Runner struct {
	runs              audit.AgentRunStore
	now               func() time.Time
	suspensionTimeout time.Duration
}

// NewRunner creates a Runner. suspensionTimeout sizes the ExpiresAt window
// on every AgentSuspension it creates (spec.md §2's configured suspension
// timeout, resolved by the caller from config.Defaults.SuspensionTimeout).
func NewRunner(runs audit.AgentRunStore, suspensionTimeout time.Duration) *Runner {
	return &Runner{runs: runs, now: time.Now, suspensionTimeout: suspensionTimeout}
}

// Start begins a new run of g from its Start node with the given initial
// state, persisting an AgentRun row before executing anything.
func (r *Runner) Start(
	ctx context.Context,
	g *Graph,
	triggerModel, triggerRecordID string,
	initial State,
	gr Guardrails,
) (*Outcome, error) {
	state := initial.Clone()
	run := &audit.AgentRun{
		ID:              uuid.NewString(),
		AgentName:       g.Name,
		TriggerModel:    triggerModel,
		TriggerRecordID: triggerRecordID,
		Status:          audit.AgentRunStatusRunning,
		Context:         state,
		StartedAt:       r.now(),
	}
	if err := r.runs.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return r.loop(ctx, g, run, state, gr, g.Start)
}

// Resume continues a SUSPENDED run past the suspension identified by
// suspensionID: event_data is merged into the frozen state, the
// suspension is marked resolved, and execution follows the suspended
// node's outgoing edge (spec.md §4.6's resume algorithm).
func (r *Runner) Resume(
	ctx context.Context,
	g *Graph,
	runID, suspensionID string,
	eventData State,
	gr Guardrails,
) (*Outcome, error) {
	run, err := r.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != audit.AgentRunStatusSuspended {
		return nil, fmt.Errorf("agent run %s is not suspended (status=%s)", runID, run.Status)
	}

	suspension, err := r.runs.GetSuspension(ctx, suspensionID)
	if err != nil {
		return nil, err
	}
	if suspension.AgentRunID != runID {
		return nil, fmt.Errorf("suspension %s does not belong to run %s", suspensionID, runID)
	}
	if suspension.Status != audit.SuspensionStatusPending {
		return nil, fmt.Errorf("suspension %s is not pending (status=%s)", suspensionID, suspension.Status)
	}
	node, _ := suspension.PromptPayload[suspensionNodeKey].(string)
	if node == "" {
		return nil, fmt.Errorf("suspension %s has no recorded node to resume from", suspensionID)
	}

	state := State(run.Context)
	if state == nil {
		state = State{}
	}
	state.Merge(eventData)

	resolvedAt := r.now()
	suspension.Status = audit.SuspensionStatusApproved
	suspension.ResolvedAt = &resolvedAt
	suspension.ResumeInput = eventData
	if err := r.runs.UpdateSuspension(ctx, suspension); err != nil {
		return nil, err
	}

	run.Status = audit.AgentRunStatusRunning
	run.Context = state
	if err := r.runs.UpdateRun(ctx, run); err != nil {
		return nil, err
	}

	next, err := g.next(node, state)
	if err != nil {
		return r.finishFailed(ctx, run, state, err.Error())
	}
	return r.loop(ctx, g, run, state, gr, next)
}

func (r *Runner) loop(ctx context.Context, g *Graph, run *audit.AgentRun, state State, gr Guardrails, currentNode string) (*Outcome, error) {
	for {
		if currentNode == End {
			return r.finishCompleted(ctx, run, state)
		}

		fn, ok := g.nodes[currentNode]
		if !ok {
			return r.finishFailed(ctx, run, state, fmt.Sprintf("node %q is not registered", currentNode))
		}

		stepInput := state.Clone()
		startedAt := r.now()
		result, err := fn(ctx, stepInput)
		if err != nil {
			// Node failure: the partial state and the last completed step
			// are preserved, no AgentStep is recorded for this attempt.
			return r.finishFailed(ctx, run, state, err.Error())
		}

		state.Merge(result.Partial)
		run.TokensUsed += result.TokensUsed
		run.StepCount++
		sequence := run.StepCount - 1

		finishedAt := r.now()
		step := &audit.AgentStep{
			ID:         uuid.NewString(),
			AgentRunID: run.ID,
			Sequence:   sequence,
			NodeName:   currentNode,
			Input:      stepInput,
			Output:     result.Partial,
			TokensUsed: result.TokensUsed,
			StartedAt:  startedAt,
			FinishedAt: &finishedAt,
		}
		if err := r.runs.CreateStep(ctx, step); err != nil {
			return nil, err
		}

		if run.StepCount > gr.MaxSteps {
			return r.finishGuardrail(ctx, run, state, fmt.Sprintf("Step limit exceeded: step_count %d > max_steps %d", run.StepCount, gr.MaxSteps))
		}
		if run.TokensUsed > gr.MaxTokens {
			return r.finishGuardrail(ctx, run, state, fmt.Sprintf("Token limit exceeded: token_count %d > max_tokens %d", run.TokensUsed, gr.MaxTokens))
		}
		visits, err := r.runs.CountVisitsToNode(ctx, run.ID, currentNode)
		if err != nil {
			return nil, err
		}
		if visits > gr.LoopThreshold {
			return r.finishGuardrail(ctx, run, state, fmt.Sprintf("Loop threshold exceeded: node %q visited %d times > %d", currentNode, visits, gr.LoopThreshold))
		}

		if result.NeedsSuspension {
			return r.suspend(ctx, run, state, step, currentNode, result.SuspensionReason)
		}

		next, err := g.next(currentNode, state)
		if err != nil {
			return r.finishFailed(ctx, run, state, err.Error())
		}
		currentNode = next
	}
}

func (r *Runner) suspend(ctx context.Context, run *audit.AgentRun, state State, step *audit.AgentStep, node, reason string) (*Outcome, error) {
	now := r.now()
	suspension := &audit.AgentSuspension{
		ID:          uuid.NewString(),
		AgentRunID:  run.ID,
		AgentStepID: step.ID,
		Reason:      reason,
		PromptPayload: map[string]interface{}{
			suspensionNodeKey: node,
		},
		Status:    audit.SuspensionStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(r.suspensionTimeout),
	}
	if err := r.runs.CreateSuspension(ctx, suspension); err != nil {
		return nil, err
	}

	run.Status = audit.AgentRunStatusSuspended
	run.Context = state
	if err := r.runs.UpdateRun(ctx, run); err != nil {
		return nil, err
	}

	return &Outcome{
		RunID:        run.ID,
		Status:       StatusSuspended,
		FinalState:   state,
		TokensUsed:   run.TokensUsed,
		StepCount:    run.StepCount,
		SuspensionID: suspension.ID,
	}, nil
}

func (r *Runner) finishCompleted(ctx context.Context, run *audit.AgentRun, state State) (*Outcome, error) {
	finishedAt := r.now()
	run.Status = audit.AgentRunStatusCompleted
	run.Context = state
	run.FinishedAt = &finishedAt
	if err := r.runs.UpdateRun(ctx, run); err != nil {
		return nil, err
	}
	return &Outcome{
		RunID:      run.ID,
		Status:     StatusCompleted,
		FinalState: state,
		TokensUsed: run.TokensUsed,
		StepCount:  run.StepCount,
	}, nil
}

func (r *Runner) finishFailed(ctx context.Context, run *audit.AgentRun, state State, reason string) (*Outcome, error) {
	finishedAt := r.now()
	run.Status = audit.AgentRunStatusFailed
	run.Context = state
	run.FinishedAt = &finishedAt
	run.TerminalReason = reason
	if err := r.runs.UpdateRun(ctx, run); err != nil {
		return nil, err
	}
	return &Outcome{
		RunID:      run.ID,
		Status:     StatusFailed,
		FinalState: state,
		Error:      reason,
		TokensUsed: run.TokensUsed,
		StepCount:  run.StepCount,
	}, nil
}

// finishGuardrail terminates the run FAILED with a apperrors.Guardrail
// error as the reason (spec.md §4.6: "a GuardrailViolation is a terminal
// FAILED outcome with the guardrail reason as the error message").
func (r *Runner) finishGuardrail(ctx context.Context, run *audit.AgentRun, state State, detail string) (*Outcome, error) {
	return r.finishFailed(ctx, run, state, apperrors.NewGuardrail(detail).Error())
}
