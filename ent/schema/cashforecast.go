package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// CashForecast holds the schema definition for the CashForecast entity: a
// projected cash position for a future period under a given scenario
// (spec.md §4, C10 cashflow automation).
type CashForecast struct {
	ent.Schema
}

// Fields of the CashForecast.
func (CashForecast) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("period").
			Comment("YYYY-MM, see pkg/periodutil"),
		field.String("scenario").
			Default("baseline"),
		field.Float("projected_inflow"),
		field.Float("projected_outflow"),
		field.Float("projected_balance"),
		field.JSON("assumptions", map[string]interface{}{}).
			Optional(),
		field.Time("generated_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the CashForecast.
func (CashForecast) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("period", "scenario").
			Unique(),
	}
}

// ForecastScenario holds the schema definition for the ForecastScenario
// entity: a named what-if variant (e.g. "optimistic", "stress") applied on
// top of the baseline cash forecast.
type ForecastScenario struct {
	ent.Schema
}

// Fields of the ForecastScenario.
func (ForecastScenario) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name").
			Unique(),
		field.Text("description").
			Optional(),
		field.JSON("adjustments", map[string]interface{}{}).
			Comment("multipliers/offsets applied to baseline line items"),
	}
}

// ForecastAccuracyLog holds the schema definition for the
// ForecastAccuracyLog entity: the realized-vs-projected delta recorded once
// a forecasted period closes, used to track model drift over time.
type ForecastAccuracyLog struct {
	ent.Schema
}

// Fields of the ForecastAccuracyLog.
func (ForecastAccuracyLog) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("period"),
		field.String("scenario"),
		field.Float("projected_balance"),
		field.Float("actual_balance"),
		field.Float("error_ratio"),
		field.Time("recorded_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the ForecastAccuracyLog.
func (ForecastAccuracyLog) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("period", "scenario"),
	}
}
