package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AgentSuspension holds the schema definition for the AgentSuspension
// entity: a human-in-the-loop pause point, resumable by operator approval
// or expiring after a timeout (spec.md §5, invariant A4).
type AgentSuspension struct {
	ent.Schema
}

// Fields of the AgentSuspension.
func (AgentSuspension) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("agent_run_id"),
		field.String("agent_step_id"),
		field.String("reason"),
		field.JSON("prompt_payload", map[string]interface{}{}).
			Optional().
			Comment("what was shown to the approving operator"),
		field.Enum("status").
			Values("pending", "approved", "rejected", "timed_out").
			Default("pending"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("expires_at"),
		field.Time("resolved_at").
			Optional().
			Nillable(),
		field.String("resolved_by").
			Optional().
			Nillable(),
		field.JSON("resume_input", map[string]interface{}{}).
			Optional(),
	}
}

// Indexes of the AgentSuspension.
func (AgentSuspension) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status", "expires_at").
			Comment("supports the timeout sweep"),
		index.Fields("agent_run_id"),
	}
}
