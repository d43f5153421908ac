// Package dedup is the C4.2 deduplication clusterer: given a set of
// records of one entity type, score every pair with per-field similarity
// functions, cluster above an overall threshold with union-find, and pick
// a master record per cluster (spec.md §4.4.2).
package dedup

// FieldKind selects which similarity function applies to a field.
type FieldKind string

const (
	FieldNameLike   FieldKind = "name_like" // token-sort ratio / 100
	FieldEmail      FieldKind = "email"
	FieldPhone      FieldKind = "phone"
	FieldIdentifier FieldKind = "identifier" // VAT / product code / barcode: exact or nothing
)

// FieldConfig declares one match field's kind and weight.
type FieldConfig struct {
	Name   string
	Kind   FieldKind
	Weight float64
}

// IsIdentifier reports whether this field is one of the "identifier
// fields" (email, phone, VAT/code/barcode) eligible for the strong-signal
// override; name-like fields never trigger it (spec.md §4.4.2).
func (f FieldConfig) IsIdentifier() bool {
	return f.Kind == FieldEmail || f.Kind == FieldPhone || f.Kind == FieldIdentifier
}

// EntityConfig is the per-entity-type dedup configuration: its match
// fields (weights must sum to 1.0) and the per-field thresholds a field
// must clear to contribute to the weight-normalized composite.
type EntityConfig struct {
	EntityType string
	Fields     []FieldConfig
}

// Record is a loosely-typed entity record keyed by field name, the same
// shape a dedup scan reads out of erpclient.Record.
type Record struct {
	ID     int64
	Values map[string]string
}

// PairScore is the composite score and per-field breakdown for one pair.
type PairScore struct {
	Total            float64
	FieldScores      map[string]float64
	StrongSignalUsed bool
	MatchedFields    []string
}

// Group is a cluster of size ≥ 2 that crossed the overall threshold.
type Group struct {
	MemberIDs       []int64
	MasterID        int64
	CompositeScore  float64
	FieldScores     map[string]float64
}

// Per-field thresholds a field must clear to count toward the composite
// (spec.md §4.4.2): email ≥ 0.90, name-like ≥ 0.70. Identifier fields
// either hit the strong-signal override or contribute nothing (see
// strongSignalThreshold).
const (
	emailFieldThreshold    = 0.90
	nameLikeFieldThreshold = 0.70
)

// strongSignalThreshold: any identifier field scoring at or above this
// immediately marks the pair a duplicate (score forced to 1.0).
const strongSignalThreshold = 0.95

// DefaultOverallThreshold is the union-find clustering cutoff.
const DefaultOverallThreshold = 0.65
