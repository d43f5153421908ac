package audit

import (
	stdsql "database/sql"
	"context"
	"fmt"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/database"
)

// AgentRunPGStore is the pgx/database-sql-backed AgentRunStore, covering
// AgentRun, AgentStep, AgentDecision, and AgentSuspension — the four
// entities a single agent graph execution touches.
type AgentRunPGStore struct {
	db *stdsql.DB
}

// NewAgentRunPGStore builds an AgentRunPGStore backed by client.
func NewAgentRunPGStore(client *database.Client) *AgentRunPGStore {
	return &AgentRunPGStore{db: client.DB()}
}

// --- AgentRun ---

func (s *AgentRunPGStore) CreateRun(ctx context.Context, run *AgentRun) error {
	context_, err := marshalJSON(run.Context)
	if err != nil {
		return fmt.Errorf("audit: marshal agent run context: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_runs (id, agent_name, trigger_model, trigger_record_id, status,
			step_count, tokens_used, terminal_reason, context, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		run.ID, run.AgentName, run.TriggerModel, run.TriggerRecordID, run.Status,
		run.StepCount, run.TokensUsed, run.TerminalReason, context_, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert agent run: %w", err)
	}
	return nil
}

func (s *AgentRunPGStore) UpdateRun(ctx context.Context, run *AgentRun) error {
	context_, err := marshalJSON(run.Context)
	if err != nil {
		return fmt.Errorf("audit: marshal agent run context: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE agent_runs SET status=$1, step_count=$2, tokens_used=$3, terminal_reason=$4,
			context=$5, finished_at=$6 WHERE id=$7`,
		run.Status, run.StepCount, run.TokensUsed, run.TerminalReason, context_, run.FinishedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("audit: update agent run: %w", err)
	}
	return nil
}

func (s *AgentRunPGStore) GetRun(ctx context.Context, id string) (*AgentRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, agent_name, trigger_model, trigger_record_id, status, step_count, tokens_used,
			terminal_reason, context, started_at, finished_at
		FROM agent_runs WHERE id=$1`, id)
	var run AgentRun
	var context_ []byte
	if err := row.Scan(&run.ID, &run.AgentName, &run.TriggerModel, &run.TriggerRecordID, &run.Status,
		&run.StepCount, &run.TokensUsed, &run.TerminalReason, &context_, &run.StartedAt, &run.FinishedAt); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("audit: scan agent run: %w", err)
	}
	var err error
	if run.Context, err = unmarshalJSON(context_); err != nil {
		return nil, err
	}
	return &run, nil
}

// --- AgentStep ---

func (s *AgentRunPGStore) CreateStep(ctx context.Context, step *AgentStep) error {
	input, err := marshalJSON(step.Input)
	if err != nil {
		return fmt.Errorf("audit: marshal agent step input: %w", err)
	}
	output, err := marshalJSON(step.Output)
	if err != nil {
		return fmt.Errorf("audit: marshal agent step output: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_steps (id, agent_run_id, sequence, node_name, input, output,
			tokens_used, started_at, finished_at, error_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		step.ID, step.AgentRunID, step.Sequence, step.NodeName, input, output,
		step.TokensUsed, step.StartedAt, step.FinishedAt, step.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("audit: insert agent step: %w", err)
	}
	return nil
}

func (s *AgentRunPGStore) UpdateStep(ctx context.Context, step *AgentStep) error {
	output, err := marshalJSON(step.Output)
	if err != nil {
		return fmt.Errorf("audit: marshal agent step output: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE agent_steps SET output=$1, tokens_used=$2, finished_at=$3, error_message=$4
		WHERE id=$5`,
		output, step.TokensUsed, step.FinishedAt, step.ErrorMessage, step.ID,
	)
	if err != nil {
		return fmt.Errorf("audit: update agent step: %w", err)
	}
	return nil
}

func (s *AgentRunPGStore) CountSteps(ctx context.Context, agentRunID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM agent_steps WHERE agent_run_id=$1`, agentRunID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("audit: count agent steps: %w", err)
	}
	return count, nil
}

func (s *AgentRunPGStore) CountVisitsToNode(ctx context.Context, agentRunID, nodeName string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM agent_steps WHERE agent_run_id=$1 AND node_name=$2`, agentRunID, nodeName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("audit: count node visits: %w", err)
	}
	return count, nil
}

// --- AgentDecision ---

func (s *AgentRunPGStore) CreateDecision(ctx context.Context, decision *AgentDecision) error {
	args, err := marshalJSON(decision.Arguments)
	if err != nil {
		return fmt.Errorf("audit: marshal decision arguments: %w", err)
	}
	result, err := marshalJSON(decision.Result)
	if err != nil {
		return fmt.Errorf("audit: marshal decision result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_decisions (id, agent_step_id, tool_name, arguments, confidence, status, result, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		decision.ID, decision.AgentStepID, decision.ToolName, args, decision.Confidence,
		decision.Status, result, decision.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: insert agent decision: %w", err)
	}
	return nil
}

func (s *AgentRunPGStore) UpdateDecision(ctx context.Context, decision *AgentDecision) error {
	result, err := marshalJSON(decision.Result)
	if err != nil {
		return fmt.Errorf("audit: marshal decision result: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE agent_decisions SET status=$1, result=$2 WHERE id=$3`,
		decision.Status, result, decision.ID)
	if err != nil {
		return fmt.Errorf("audit: update agent decision: %w", err)
	}
	return nil
}

// --- AgentSuspension ---

func (s *AgentRunPGStore) CreateSuspension(ctx context.Context, suspension *AgentSuspension) error {
	prompt, err := marshalJSON(suspension.PromptPayload)
	if err != nil {
		return fmt.Errorf("audit: marshal suspension prompt: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_suspensions (id, agent_run_id, agent_step_id, reason, prompt_payload,
			status, created_at, expires_at, resolved_at, resolved_by, resume_input)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		suspension.ID, suspension.AgentRunID, suspension.AgentStepID, suspension.Reason, prompt,
		suspension.Status, suspension.CreatedAt, suspension.ExpiresAt, suspension.ResolvedAt,
		suspension.ResolvedBy, mustMarshalOptional(suspension.ResumeInput),
	)
	if err != nil {
		return fmt.Errorf("audit: insert agent suspension: %w", err)
	}
	return nil
}

func mustMarshalOptional(v map[string]interface{}) []byte {
	b, _ := marshalJSON(v)
	return b
}

func (s *AgentRunPGStore) UpdateSuspension(ctx context.Context, suspension *AgentSuspension) error {
	resumeInput, err := marshalJSON(suspension.ResumeInput)
	if err != nil {
		return fmt.Errorf("audit: marshal suspension resume_input: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE agent_suspensions SET status=$1, resolved_at=$2, resolved_by=$3, resume_input=$4
		WHERE id=$5`,
		suspension.Status, suspension.ResolvedAt, suspension.ResolvedBy, resumeInput, suspension.ID,
	)
	if err != nil {
		return fmt.Errorf("audit: update agent suspension: %w", err)
	}
	return nil
}

func scanSuspension(row scannable) (*AgentSuspension, error) {
	var suspension AgentSuspension
	var prompt, resumeInput []byte
	if err := row.Scan(&suspension.ID, &suspension.AgentRunID, &suspension.AgentStepID, &suspension.Reason,
		&prompt, &suspension.Status, &suspension.CreatedAt, &suspension.ExpiresAt,
		&suspension.ResolvedAt, &suspension.ResolvedBy, &resumeInput); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("audit: scan agent suspension: %w", err)
	}
	var err error
	if suspension.PromptPayload, err = unmarshalJSON(prompt); err != nil {
		return nil, err
	}
	if suspension.ResumeInput, err = unmarshalJSON(resumeInput); err != nil {
		return nil, err
	}
	return &suspension, nil
}

const suspensionSelectColumns = `id, agent_run_id, agent_step_id, reason, prompt_payload,
		status, created_at, expires_at, resolved_at, resolved_by, resume_input`

func (s *AgentRunPGStore) GetSuspension(ctx context.Context, id string) (*AgentSuspension, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+suspensionSelectColumns+` FROM agent_suspensions WHERE id=$1`, id)
	return scanSuspension(row)
}

func (s *AgentRunPGStore) ListExpiredSuspensions(ctx context.Context, asOf time.Time) ([]*AgentSuspension, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+suspensionSelectColumns+`
		FROM agent_suspensions WHERE status=$1 AND expires_at <= $2`, SuspensionStatusPending, asOf)
	if err != nil {
		return nil, fmt.Errorf("audit: list expired suspensions: %w", err)
	}
	defer rows.Close()

	var out []*AgentSuspension
	for rows.Next() {
		suspension, err := scanSuspension(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, suspension)
	}
	return out, rows.Err()
}
