package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// DocumentProcessingJob holds the schema definition for the
// DocumentProcessingJob entity: an LLM-assisted extraction run over an
// inbound document (e.g. vendor invoice) (spec.md §4, C10 document
// processing automation).
type DocumentProcessingJob struct {
	ent.Schema
}

// Fields of the DocumentProcessingJob.
func (DocumentProcessingJob) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("document_type").
			Comment("e.g. 'vendor_invoice', 'purchase_order'"),
		field.String("source_attachment_id"),
		field.Enum("status").
			Values("queued", "extracting", "needs_review", "completed", "failed").
			Default("queued"),
		field.JSON("extracted_fields", map[string]interface{}{}).
			Optional(),
		field.Float("confidence").
			Range(0, 1).
			Optional(),
		field.String("target_record_id").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the DocumentProcessingJob.
func (DocumentProcessingJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
	}
}

// ExtractionCorrection holds the schema definition for the
// ExtractionCorrection entity: an operator-supplied correction to an
// extracted field, retained to build a calibration dataset over time.
type ExtractionCorrection struct {
	ent.Schema
}

// Fields of the ExtractionCorrection.
func (ExtractionCorrection) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("job_id"),
		field.String("field_name"),
		field.String("extracted_value").
			Optional(),
		field.String("corrected_value"),
		field.String("corrected_by"),
		field.Time("corrected_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the ExtractionCorrection.
func (ExtractionCorrection) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("job_id"),
	}
}
