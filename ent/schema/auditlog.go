package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AuditLog holds the schema definition for the AuditLog entity: one record
// per attempted AI decision (spec.md §3).
type AuditLog struct {
	ent.Schema
}

// Fields of the AuditLog.
func (AuditLog) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.Time("timestamp").
			Default(time.Now).
			Immutable(),
		field.String("automation_type").
			Comment("e.g. 'reconciliation', 'credit', 'dedup'"),
		field.String("action_name"),
		field.String("target_model").
			Comment("ERP model the decision targets"),
		field.String("target_record_id").
			Optional(),
		field.Enum("status").
			Values("pending", "approved", "executed", "rejected", "failed").
			Default("pending"),
		field.Float("confidence").
			Range(0, 1),
		field.Text("reasoning").
			Optional(),
		field.JSON("input_snapshot", map[string]interface{}{}).
			Optional(),
		field.JSON("output_snapshot", map[string]interface{}{}).
			Optional(),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Time("executed_at").
			Optional().
			Nillable(),
		field.String("approved_by").
			Optional().
			Nillable(),
		field.Int("tokens_used").
			Default(0),
	}
}

// Indexes of the AuditLog.
func (AuditLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
		index.Fields("status"),
		index.Fields("automation_type", "action_name"),
	}
}
