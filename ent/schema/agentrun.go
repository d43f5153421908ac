package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AgentRun holds the schema definition for the AgentRun entity: one
// invocation of a multi-step agent graph (spec.md §5, C7).
type AgentRun struct {
	ent.Schema
}

// Fields of the AgentRun.
func (AgentRun) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("agent_name").
			Comment("e.g. 'procure_to_pay', 'collection', 'month_end_close'"),
		field.String("trigger_model").
			Optional(),
		field.String("trigger_record_id").
			Optional(),
		field.Enum("status").
			Values("running", "suspended", "completed", "failed", "cancelled", "guardrail_stopped").
			Default("running"),
		field.Int("step_count").
			Default(0),
		field.Int("tokens_used").
			Default(0),
		field.Text("terminal_reason").
			Optional(),
		field.JSON("context", map[string]interface{}{}).
			Optional().
			Comment("accumulated graph state"),
		field.Time("started_at").
			Default(time.Now).
			Immutable(),
		field.Time("finished_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the AgentRun.
func (AgentRun) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("agent_name", "started_at"),
	}
}
