package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AutomationRule holds the schema definition for the AutomationRule entity:
// configuration for a single (event_type, model) automation binding,
// including confidence thresholds (spec.md §2).
type AutomationRule struct {
	ent.Schema
}

// Fields of the AutomationRule.
func (AutomationRule) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name").
			Unique(),
		field.String("event_type"),
		field.String("model").
			Optional().
			Comment("empty matches any model for this event_type"),
		field.Bool("enabled").
			Default(true),
		field.Float("default_confidence_threshold").
			Range(0, 1),
		field.Float("auto_approve_threshold").
			Range(0, 1),
		field.JSON("config", map[string]interface{}{}).
			Optional().
			Comment("automation-specific tuning, e.g. reconciliation weights"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}

// Indexes of the AutomationRule.
func (AutomationRule) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("event_type", "model").
			Unique(),
	}
}
