package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SupplierRiskScore holds the schema definition for the SupplierRiskScore
// entity: a computed disruption-risk snapshot for a supplier (spec.md §4,
// C10 supply-chain automation).
type SupplierRiskScore struct {
	ent.Schema
}

// Fields of the SupplierRiskScore.
func (SupplierRiskScore) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("partner_id"),
		field.Float("score").
			Range(0, 100),
		field.Enum("risk_band").
			Values("low", "medium", "high", "severe"),
		field.Time("computed_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the SupplierRiskScore.
func (SupplierRiskScore) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("partner_id", "computed_at"),
	}
}

// SupplierRiskFactor holds the schema definition for the
// SupplierRiskFactor entity: a single weighted input into a
// SupplierRiskScore (e.g. late-delivery rate, geographic exposure).
type SupplierRiskFactor struct {
	ent.Schema
}

// Fields of the SupplierRiskFactor.
func (SupplierRiskFactor) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("score_id"),
		field.String("factor_name"),
		field.Float("value"),
		field.Float("weight").
			Range(0, 1),
	}
}

// Indexes of the SupplierRiskFactor.
func (SupplierRiskFactor) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("score_id"),
	}
}

// DisruptionPrediction holds the schema definition for the
// DisruptionPrediction entity: an LLM-assisted forward-looking prediction
// of a likely supply disruption for a partner/category.
type DisruptionPrediction struct {
	ent.Schema
}

// Fields of the DisruptionPrediction.
func (DisruptionPrediction) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("partner_id"),
		field.Text("prediction"),
		field.Float("confidence").
			Range(0, 1),
		field.Time("predicted_at").
			Default(time.Now).
			Immutable(),
	}
}

// SupplyChainAlert holds the schema definition for the SupplyChainAlert
// entity: an actionable alert raised when a SupplierRiskScore crosses a
// threshold or a DisruptionPrediction exceeds its confidence gate.
type SupplyChainAlert struct {
	ent.Schema
}

// Fields of the SupplyChainAlert.
func (SupplyChainAlert) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("partner_id"),
		field.String("severity"),
		field.Text("message"),
		field.Enum("status").
			Values("open", "acknowledged", "resolved").
			Default("open"),
		field.Time("raised_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the SupplyChainAlert.
func (SupplyChainAlert) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("partner_id"),
	}
}
