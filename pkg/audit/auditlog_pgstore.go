package audit

import (
	stdsql "database/sql"
	"context"
	"fmt"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/database"
)

// AuditLogPGStore is the pgx/database-sql-backed AuditLogStore, built
// directly on pkg/database.Client (which wraps *sql.DB rather than a
// generated ent.Client, per the divergence recorded for pkg/database) and
// hand-written SQL matching the embedded migrations field-for-field.
type AuditLogPGStore struct {
	db *stdsql.DB
}

// NewAuditLogPGStore builds an AuditLogPGStore backed by client.
func NewAuditLogPGStore(client *database.Client) *AuditLogPGStore {
	return &AuditLogPGStore{db: client.DB()}
}

func (s *AuditLogPGStore) Create(ctx context.Context, log *AuditLog) error {
	input, err := marshalJSON(log.InputSnapshot)
	if err != nil {
		return fmt.Errorf("audit: marshal input_snapshot: %w", err)
	}
	output, err := marshalJSON(log.OutputSnapshot)
	if err != nil {
		return fmt.Errorf("audit: marshal output_snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, timestamp, automation_type, action_name, target_model, target_record_id,
			status, confidence, reasoning, input_snapshot, output_snapshot, error_message,
			executed_at, approved_by, tokens_used
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		log.ID, log.Timestamp, log.AutomationType, log.ActionName, log.TargetModel, log.TargetRecordID,
		log.Status, log.Confidence, log.Reasoning, input, output, log.ErrorMessage,
		log.ExecutedAt, log.ApprovedBy, log.TokensUsed,
	)
	if err != nil {
		return fmt.Errorf("audit: insert audit log: %w", err)
	}
	return nil
}

func (s *AuditLogPGStore) Update(ctx context.Context, log *AuditLog) error {
	output, err := marshalJSON(log.OutputSnapshot)
	if err != nil {
		return fmt.Errorf("audit: marshal output_snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE audit_logs SET status=$1, output_snapshot=$2, error_message=$3,
			executed_at=$4, approved_by=$5, tokens_used=$6
		WHERE id=$7`,
		log.Status, output, log.ErrorMessage, log.ExecutedAt, log.ApprovedBy, log.TokensUsed, log.ID,
	)
	if err != nil {
		return fmt.Errorf("audit: update audit log: %w", err)
	}
	return nil
}

const auditLogSelectColumns = `id, timestamp, automation_type, action_name, target_model, target_record_id,
		status, confidence, reasoning, input_snapshot, output_snapshot, error_message,
		executed_at, approved_by, tokens_used`

func scanAuditLog(row scannable) (*AuditLog, error) {
	var log AuditLog
	var input, output []byte
	if err := row.Scan(
		&log.ID, &log.Timestamp, &log.AutomationType, &log.ActionName, &log.TargetModel, &log.TargetRecordID,
		&log.Status, &log.Confidence, &log.Reasoning, &input, &output, &log.ErrorMessage,
		&log.ExecutedAt, &log.ApprovedBy, &log.TokensUsed,
	); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("audit: scan audit log: %w", err)
	}
	var err error
	if log.InputSnapshot, err = unmarshalJSON(input); err != nil {
		return nil, err
	}
	if log.OutputSnapshot, err = unmarshalJSON(output); err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *AuditLogPGStore) Get(ctx context.Context, id string) (*AuditLog, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+auditLogSelectColumns+` FROM audit_logs WHERE id=$1`, id)
	return scanAuditLog(row)
}

func (s *AuditLogPGStore) ListByStatus(ctx context.Context, status string, limit int) ([]*AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+auditLogSelectColumns+`
		FROM audit_logs WHERE status=$1 ORDER BY timestamp DESC LIMIT $2`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list by status: %w", err)
	}
	defer rows.Close()

	var out []*AuditLog
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, log)
	}
	return out, rows.Err()
}

func (s *AuditLogPGStore) ListPendingApproval(ctx context.Context, limit int) ([]*AuditLog, error) {
	return s.ListByStatus(ctx, AuditStatusPending, limit)
}

func (s *AuditLogPGStore) CountByAutomationType(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT automation_type, count(*) FROM audit_logs
		WHERE timestamp >= $1 GROUP BY automation_type`, since)
	if err != nil {
		return nil, fmt.Errorf("audit: count by automation type: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var automationType string
		var count int
		if err := rows.Scan(&automationType, &count); err != nil {
			return nil, err
		}
		out[automationType] = count
	}
	return out, rows.Err()
}
