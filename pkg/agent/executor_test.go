package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
)

// stepSpy wraps audit.AgentRunStore and records every AgentStep's
// Sequence, used to assert invariant A3 (gapless 0..N-1 step indices)
// without needing a ListSteps method on the fake.
type stepSpy struct {
	audit.AgentRunStore
	sequences []int
}

func (s *stepSpy) CreateStep(ctx context.Context, step *audit.AgentStep) error {
	s.sequences = append(s.sequences, step.Sequence)
	return s.AgentRunStore.CreateStep(ctx, step)
}

func generousGuardrails() Guardrails {
	return Guardrails{MaxSteps: 100, MaxTokens: 100000, LoopThreshold: 10}
}

func threeNodeLinearGraph() *Graph {
	g := NewGraph("linear3", "a")
	g.AddNode("a", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{"visited_a": true}}, nil
	}).AddEdge("a", "b")
	g.AddNode("b", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{"visited_b": true}}, nil
	}).AddEdge("b", "c")
	g.AddNode("c", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{"visited_c": true}}, nil
	}).AddEdge("c", End)
	return g
}

func TestStartRunsLinearGraphToCompletion(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	spy := &stepSpy{AgentRunStore: runs}
	r := NewRunner(spy, time.Hour)
	g := threeNodeLinearGraph()
	require.NoError(t, g.Validate())

	outcome, err := r.Start(context.Background(), g, "res.partner", "42", State{}, generousGuardrails())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 3, outcome.StepCount)
	assert.Equal(t, true, outcome.FinalState["visited_a"])
	assert.Equal(t, true, outcome.FinalState["visited_c"])

	// Invariant A3: step count matches persisted AgentStep rows, and
	// sequence numbers are gapless starting at 0.
	n, err := runs.CountSteps(context.Background(), outcome.RunID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{0, 1, 2}, spy.sequences)

	run, err := runs.GetRun(context.Background(), outcome.RunID)
	require.NoError(t, err)
	assert.Equal(t, audit.AgentRunStatusCompleted, run.Status)
	require.NotNil(t, run.FinishedAt)
}

func TestStepLimitGuardrailFailsRunWithStepLimitMessage(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	r := NewRunner(runs, time.Hour)
	g := threeNodeLinearGraph()
	require.NoError(t, g.Validate())

	gr := Guardrails{MaxSteps: 2, MaxTokens: 100000, LoopThreshold: 10}
	outcome, err := r.Start(context.Background(), g, "res.partner", "42", State{}, gr)
	require.NoError(t, err)

	assert.Equal(t, string(StatusFailed), string(outcome.Status))
	assert.Contains(t, outcome.Error, "Step limit")

	run, err := runs.GetRun(context.Background(), outcome.RunID)
	require.NoError(t, err)
	assert.Equal(t, audit.AgentRunStatusFailed, run.Status)
	assert.Contains(t, run.TerminalReason, "Step limit")
}

func TestTokenBudgetGuardrailFailsRun(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	r := NewRunner(runs, time.Hour)
	g := NewGraph("spendy", "a")
	g.AddNode("a", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{}, TokensUsed: 1000}, nil
	}).AddEdge("a", End)
	require.NoError(t, g.Validate())

	gr := Guardrails{MaxSteps: 100, MaxTokens: 500, LoopThreshold: 10}
	outcome, err := r.Start(context.Background(), g, "", "", State{}, gr)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "Token limit")
}

func TestLoopThresholdGuardrailFailsRun(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	r := NewRunner(runs, time.Hour)
	g := NewGraph("looping", "a")
	g.AddNode("a", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{}}, nil
	}).AddEdge("a", "a")
	require.NoError(t, g.Validate())

	gr := Guardrails{MaxSteps: 100, MaxTokens: 100000, LoopThreshold: 2}
	outcome, err := r.Start(context.Background(), g, "", "", State{}, gr)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "Loop threshold")
}

func TestNodeErrorFailsRunAndPreservesLastCompletedStep(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	r := NewRunner(runs, time.Hour)
	g := NewGraph("erroring", "a")
	g.AddNode("a", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{"step_a": "done"}}, nil
	}).AddEdge("a", "b")
	g.AddNode("b", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{}, assertingError{"boom"}
	}).AddEdge("b", End)
	require.NoError(t, g.Validate())

	outcome, err := r.Start(context.Background(), g, "", "", State{}, generousGuardrails())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "boom")
	assert.Equal(t, "done", outcome.FinalState["step_a"])

	n, err := runs.CountSteps(context.Background(), outcome.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only node a's step is recorded; b's failed attempt is not")
}

type assertingError struct{ msg string }

func (e assertingError) Error() string { return e.msg }

func TestSuspensionCreatesExactlyOneUnresolvedSuspensionRow(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	r := NewRunner(runs, 48*time.Hour)
	g := NewGraph("approval", "a")
	g.AddNode("a", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{
			Partial:          State{"draft_bill_id": 7},
			NeedsSuspension:  true,
			SuspensionReason: "awaiting_bill_approval",
		}, nil
	}).AddEdge("a", "b")
	g.AddNode("b", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{"posted": true}}, nil
	}).AddEdge("b", End)
	require.NoError(t, g.Validate())

	outcome, err := r.Start(context.Background(), g, "account.move", "7", State{}, generousGuardrails())
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, outcome.Status)
	require.NotEmpty(t, outcome.SuspensionID)

	run, err := runs.GetRun(context.Background(), outcome.RunID)
	require.NoError(t, err)
	assert.Equal(t, audit.AgentRunStatusSuspended, run.Status)

	suspension, err := runs.GetSuspension(context.Background(), outcome.SuspensionID)
	require.NoError(t, err)
	assert.Equal(t, audit.SuspensionStatusPending, suspension.Status)
	assert.Nil(t, suspension.ResolvedAt)
	assert.Equal(t, "awaiting_bill_approval", suspension.Reason)

	// Every pending suspension expires within 48h, so listing past that
	// point returns all unresolved rows.
	unresolved, err := runs.ListExpiredSuspensions(context.Background(), time.Now().Add(49*time.Hour))
	require.NoError(t, err)
	assert.Len(t, unresolved, 1)
}

func TestResumeMergesEventDataAndContinuesFromSuspendedNode(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	r := NewRunner(runs, 48*time.Hour)
	g := NewGraph("approval", "a")
	g.AddNode("a", func(ctx context.Context, s State) (NodeResult, error) {
		return NodeResult{Partial: State{"draft_bill_id": 7}, NeedsSuspension: true, SuspensionReason: "awaiting_bill_approval"}, nil
	}).AddEdge("a", "b")
	g.AddNode("b", func(ctx context.Context, s State) (NodeResult, error) {
		approved, _ := s["approved"].(bool)
		return NodeResult{Partial: State{"posted": approved}}, nil
	}).AddEdge("b", End)
	require.NoError(t, g.Validate())

	first, err := r.Start(context.Background(), g, "account.move", "7", State{}, generousGuardrails())
	require.NoError(t, err)
	require.Equal(t, StatusSuspended, first.Status)

	second, err := r.Resume(context.Background(), g, first.RunID, first.SuspensionID, State{"approved": true}, generousGuardrails())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Equal(t, true, second.FinalState["posted"])
	assert.Equal(t, 7, second.FinalState["draft_bill_id"])

	resolved, err := runs.GetSuspension(context.Background(), first.SuspensionID)
	require.NoError(t, err)
	assert.Equal(t, audit.SuspensionStatusApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
}

func TestResumeRejectsRunThatIsNotSuspended(t *testing.T) {
	_, _, _, runs := audit.NewFakeStore()
	r := NewRunner(runs, time.Hour)
	g := threeNodeLinearGraph()
	require.NoError(t, g.Validate())

	outcome, err := r.Start(context.Background(), g, "", "", State{}, generousGuardrails())
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, outcome.Status)

	_, err = r.Resume(context.Background(), g, outcome.RunID, "whatever", State{}, generousGuardrails())
	assert.ErrorContains(t, err, "not suspended")
}
