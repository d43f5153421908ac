package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DailyDigest holds the schema definition for the DailyDigest entity: the
// end-of-day automation activity summary delivered via notify.Sender
// (spec.md §4, C10 digest automation).
type DailyDigest struct {
	ent.Schema
}

// Fields of the DailyDigest.
func (DailyDigest) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("period_date").
			Comment("YYYY-MM-DD"),
		field.Int("automations_run"),
		field.Int("auto_approved"),
		field.Int("pending_approval"),
		field.Int("failed"),
		field.JSON("highlights", []string{}).
			Optional(),
		field.Enum("delivery_outcome").
			Values("delivered", "channel_disabled", "delivery_failed").
			Optional(),
		field.Time("generated_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the DailyDigest.
func (DailyDigest) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("period_date").
			Unique(),
	}
}
