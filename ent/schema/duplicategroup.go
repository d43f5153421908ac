package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DuplicateGroup holds the schema definition for the DuplicateGroup entity:
// a cluster of likely-duplicate records produced by a DeduplicationScan,
// pending operator merge approval (spec.md §4.4, invariant A6).
type DuplicateGroup struct {
	ent.Schema
}

// Fields of the DuplicateGroup.
func (DuplicateGroup) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("scan_id"),
		field.String("model"),
		field.JSON("member_record_ids", []string{}),
		field.String("master_record_id").
			Comment("heuristically selected survivor"),
		field.Float("composite_score").
			Range(0, 1),
		field.JSON("field_scores", map[string]interface{}{}).
			Optional(),
		field.Bool("strong_signal_override").
			Default(false),
		field.Enum("status").
			Values("pending", "approved", "rejected", "merged").
			Default("pending"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("resolved_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the DuplicateGroup.
func (DuplicateGroup) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("scan_id"),
		index.Fields("status"),
	}
}
