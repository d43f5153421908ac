package dedup

import (
	"github.com/a96506/odoo-ai-platform-sub000/pkg/strmatch"
)

// fieldSimilarity dispatches to the per-field-kind similarity function from
// spec.md §4.4.2, returning a 0.0-1.0 score.
func fieldSimilarity(kind FieldKind, a, b string) float64 {
	switch kind {
	case FieldNameLike:
		return float64(strmatch.TokenSortRatio(a, b)) / 100.0
	case FieldEmail:
		return strmatch.EmailSimilarity(a, b)
	case FieldPhone:
		return strmatch.PhoneSimilarity(a, b)
	case FieldIdentifier:
		return strmatch.ExactSimilarity(a, b)
	}
	return 0
}

func fieldThreshold(kind FieldKind) float64 {
	switch kind {
	case FieldEmail:
		return emailFieldThreshold
	case FieldNameLike:
		return nameLikeFieldThreshold
	default:
		return 0 // identifier fields contribute only via exact match or the override
	}
}

// ScorePair computes the composite similarity between two records under
// cfg, applying the strong-signal override (spec.md §4.4.2, and the
// narrow-rule decision recorded in DESIGN.md for the open question of
// whether two sub-threshold identifier fields should jointly override —
// they do not, here).
func ScorePair(cfg EntityConfig, a, b Record) PairScore {
	fieldScores := make(map[string]float64, len(cfg.Fields))
	var matched []string

	for _, f := range cfg.Fields {
		sim := fieldSimilarity(f.Kind, a.Values[f.Name], b.Values[f.Name])
		fieldScores[f.Name] = sim

		if f.IsIdentifier() && sim >= strongSignalThreshold {
			return PairScore{
				Total:            1.0,
				FieldScores:      fieldScores,
				StrongSignalUsed: true,
				MatchedFields:    []string{f.Name},
			}
		}
	}

	var weightedSum, weightUsed float64
	for _, f := range cfg.Fields {
		sim := fieldScores[f.Name]
		if sim >= fieldThreshold(f.Kind) && sim > 0 {
			weightedSum += sim * f.Weight
			weightUsed += f.Weight
			matched = append(matched, f.Name)
		}
	}

	var total float64
	if weightUsed > 0 {
		total = weightedSum / weightUsed
	}

	return PairScore{Total: total, FieldScores: fieldScores, MatchedFields: matched}
}
