package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AgentDecision holds the schema definition for the AgentDecision entity: a
// tool-call or write decision made by an agent step, subject to the same
// confidence gating as top-level automations (spec.md §5, invariant A2).
type AgentDecision struct {
	ent.Schema
}

// Fields of the AgentDecision.
func (AgentDecision) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("agent_step_id"),
		field.String("tool_name"),
		field.JSON("arguments", map[string]interface{}{}).
			Optional(),
		field.Float("confidence").
			Range(0, 1),
		field.Enum("status").
			Values("pending", "approved", "executed", "rejected", "skipped").
			Default("pending"),
		field.JSON("result", map[string]interface{}{}).
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the AgentDecision.
func (AgentDecision) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("agent_step_id"),
		index.Fields("status"),
	}
}
