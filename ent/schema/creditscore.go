package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CreditScore holds the schema definition for the CreditScore entity: a
// computed creditworthiness snapshot for a partner, gating order-hold
// decisions (spec.md §4, C10 credit automation).
type CreditScore struct {
	ent.Schema
}

// Fields of the CreditScore.
func (CreditScore) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("partner_id"),
		field.Float("score").
			Range(0, 100),
		field.Enum("risk_band").
			Values("low", "medium", "high", "severe"),
		field.JSON("factors", map[string]interface{}{}).
			Optional().
			Comment("payment history, DSO, outstanding balance ratio, etc."),
		field.Bool("hold_recommended").
			Default(false),
		field.Time("computed_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the CreditScore.
func (CreditScore) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("partner_id", "computed_at"),
	}
}
