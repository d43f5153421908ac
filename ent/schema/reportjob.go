package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ReportJob holds the schema definition for the ReportJob entity: a
// scheduled or on-demand generated report (spec.md §4, C10 report-builder
// automation).
type ReportJob struct {
	ent.Schema
}

// Fields of the ReportJob.
func (ReportJob) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("report_type"),
		field.JSON("parameters", map[string]interface{}{}).
			Optional(),
		field.Enum("status").
			Values("queued", "running", "completed", "failed").
			Default("queued"),
		field.String("output_ref").
			Optional().
			Nillable(),
		field.Time("requested_at").
			Default(time.Now).
			Immutable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the ReportJob.
func (ReportJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("report_type", "requested_at"),
	}
}
