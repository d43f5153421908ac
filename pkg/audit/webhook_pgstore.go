package audit

import (
	stdsql "database/sql"
	"context"
	"fmt"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/database"
)

// WebhookEventPGStore is the pgx/database-sql-backed WebhookEventStore.
type WebhookEventPGStore struct {
	db *stdsql.DB
}

// NewWebhookEventPGStore builds a WebhookEventPGStore backed by client.
func NewWebhookEventPGStore(client *database.Client) *WebhookEventPGStore {
	return &WebhookEventPGStore{db: client.DB()}
}

func (s *WebhookEventPGStore) Create(ctx context.Context, event *WebhookEvent) error {
	payload, err := marshalJSON(event.Payload)
	if err != nil {
		return fmt.Errorf("audit: marshal webhook payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO webhook_events (id, event_type, model, record_id, write_date, received_at, payload, dispatch_status, audit_log_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		event.ID, event.EventType, event.Model, event.RecordID, event.WriteDate, event.ReceivedAt,
		payload, event.DispatchStatus, event.AuditLogID,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEvent
	}
	if err != nil {
		return fmt.Errorf("audit: insert webhook event: %w", err)
	}
	return nil
}

func (s *WebhookEventPGStore) UpdateDispatchStatus(ctx context.Context, id, status string, auditLogID *string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE webhook_events SET dispatch_status=$1, audit_log_id=$2 WHERE id=$3`,
		status, auditLogID, id)
	if err != nil {
		return fmt.Errorf("audit: update webhook dispatch status: %w", err)
	}
	return nil
}

func (s *WebhookEventPGStore) Get(ctx context.Context, id string) (*WebhookEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, event_type, model, record_id, write_date, received_at, payload, dispatch_status, audit_log_id
		FROM webhook_events WHERE id=$1`, id)
	var event WebhookEvent
	var payload []byte
	if err := row.Scan(&event.ID, &event.EventType, &event.Model, &event.RecordID, &event.WriteDate,
		&event.ReceivedAt, &payload, &event.DispatchStatus, &event.AuditLogID); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("audit: scan webhook event: %w", err)
	}
	var err error
	if event.Payload, err = unmarshalJSON(payload); err != nil {
		return nil, err
	}
	return &event, nil
}
