package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ReconciliationSession holds the schema definition for the
// ReconciliationSession entity: one bank-statement-to-ledger matching run
// (spec.md §4.4, C4.1).
type ReconciliationSession struct {
	ent.Schema
}

// Fields of the ReconciliationSession.
func (ReconciliationSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("bank_statement_line_id"),
		field.String("journal_id").
			Optional(),
		field.Enum("classification").
			Values("exact", "learned_rule", "fuzzy", "partial", "none"),
		field.Float("score").
			Range(0, 1),
		field.JSON("candidate_move_ids", []string{}).
			Optional(),
		field.String("matched_move_id").
			Optional().
			Nillable(),
		field.JSON("signal_breakdown", map[string]interface{}{}).
			Optional().
			Comment("per-signal contribution for explainability"),
		field.Enum("status").
			Values("proposed", "auto_matched", "approved", "rejected").
			Default("proposed"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the ReconciliationSession.
func (ReconciliationSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("bank_statement_line_id"),
		index.Fields("status"),
	}
}
