package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AgentStep holds the schema definition for the AgentStep entity: a single
// node execution within an AgentRun's graph, used for loop/visit-count
// guardrail detection (spec.md §5, invariant A3).
type AgentStep struct {
	ent.Schema
}

// Fields of the AgentStep.
func (AgentStep) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("agent_run_id"),
		field.Int("sequence"),
		field.String("node_name"),
		field.JSON("input", map[string]interface{}{}).
			Optional(),
		field.JSON("output", map[string]interface{}{}).
			Optional(),
		field.Int("tokens_used").
			Default(0),
		field.Time("started_at").
			Default(time.Now).
			Immutable(),
		field.Time("finished_at").
			Optional().
			Nillable(),
		field.String("error_message").
			Optional().
			Nillable(),
	}
}

// Indexes of the AgentStep.
func (AgentStep) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("agent_run_id", "sequence").
			Unique(),
		index.Fields("agent_run_id", "node_name").
			Comment("supports visit-count lookups for loop guardrails"),
	}
}
