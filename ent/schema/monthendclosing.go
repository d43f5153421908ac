package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// MonthEndClosing holds the schema definition for the MonthEndClosing
// entity: the orchestrated checklist for closing a fiscal period (spec.md
// §5, MonthEndCloseAgent).
type MonthEndClosing struct {
	ent.Schema
}

// Fields of the MonthEndClosing.
func (MonthEndClosing) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("period").
			Comment("YYYY-MM, see pkg/periodutil"),
		field.Enum("status").
			Values("not_started", "in_progress", "blocked", "closed").
			Default("not_started"),
		field.Float("readiness_score").
			Range(0, 1).
			Default(0),
		field.String("agent_run_id").
			Optional().
			Nillable(),
		field.Time("started_at").
			Optional().
			Nillable(),
		field.Time("closed_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the MonthEndClosing.
func (MonthEndClosing) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("period").
			Unique(),
	}
}

// ClosingStep holds the schema definition for the ClosingStep entity: one
// checklist item within a MonthEndClosing (e.g. "bank reconciliation
// complete", "depreciation posted").
type ClosingStep struct {
	ent.Schema
}

// Fields of the ClosingStep.
func (ClosingStep) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("closing_id"),
		field.String("name"),
		field.Float("weight").
			Range(0, 1).
			Comment("contribution to the readiness score"),
		field.Bool("complete").
			Default(false),
		field.Text("blocking_reason").
			Optional(),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the ClosingStep.
func (ClosingStep) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("closing_id"),
	}
}
