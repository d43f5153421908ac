package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// WebhookEvent holds the schema definition for the WebhookEvent entity: an
// inbound ERP webhook delivery, deduplicated on (model, record_id, event_type,
// write_date) per spec.md §6.
type WebhookEvent struct {
	ent.Schema
}

// Fields of the WebhookEvent.
func (WebhookEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("event_type"),
		field.String("model"),
		field.String("record_id"),
		field.Time("write_date"),
		field.Time("received_at").
			Default(time.Now).
			Immutable(),
		field.JSON("payload", map[string]interface{}{}).
			Optional(),
		field.Enum("dispatch_status").
			Values("queued", "dispatched", "ignored", "duplicate").
			Default("queued"),
		field.String("audit_log_id").
			Optional().
			Nillable(),
	}
}

// Indexes of the WebhookEvent.
func (WebhookEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("model", "record_id", "event_type", "write_date").
			Unique(),
		index.Fields("received_at"),
	}
}
