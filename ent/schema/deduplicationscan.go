package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DeduplicationScan holds the schema definition for the DeduplicationScan
// entity: one sweep over an ERP model looking for duplicate clusters
// (spec.md §4.4, C4.2).
type DeduplicationScan struct {
	ent.Schema
}

// Fields of the DeduplicationScan.
func (DeduplicationScan) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("model"),
		field.Enum("status").
			Values("running", "completed", "failed").
			Default("running"),
		field.Int("records_scanned").
			Default(0),
		field.Int("groups_found").
			Default(0),
		field.Time("started_at").
			Default(time.Now).
			Immutable(),
		field.Time("finished_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the DeduplicationScan.
func (DeduplicationScan) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("model", "started_at"),
	}
}
