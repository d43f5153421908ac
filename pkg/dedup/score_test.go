package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func partnerConfig() EntityConfig {
	return EntityConfig{
		EntityType: "res.partner",
		Fields: []FieldConfig{
			{Name: "name", Kind: FieldNameLike, Weight: 0.5},
			{Name: "email", Kind: FieldEmail, Weight: 0.3},
			{Name: "phone", Kind: FieldPhone, Weight: 0.2},
		},
	}
}

// Seed scenario 2 from spec.md §8: identical emails, dissimilar names →
// one group, similarity_score=1.0, matched_fields includes "email".
func TestScorePairSeedScenarioStrongSignalOverride(t *testing.T) {
	cfg := partnerConfig()
	a := Record{ID: 1, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com"}}
	b := Record{ID: 2, Values: map[string]string{"name": "ACME Corporation Ltd", "email": "info@acme.com"}}

	score := ScorePair(cfg, a, b)
	assert.True(t, score.StrongSignalUsed)
	assert.Equal(t, 1.0, score.Total)
	assert.Contains(t, score.MatchedFields, "email")
}

func TestScorePairTwoSubThresholdIdentifiersDoNotOverride(t *testing.T) {
	// Narrow-rule open-question decision (DESIGN.md): two identifier
	// fields each below 0.95 do not jointly trigger the override, even
	// if both are suggestive.
	cfg := EntityConfig{Fields: []FieldConfig{
		{Name: "email", Kind: FieldEmail, Weight: 0.5},
		{Name: "phone", Kind: FieldPhone, Weight: 0.5},
	}}
	a := Record{ID: 1, Values: map[string]string{"email": "a@example.com", "phone": "555-0100"}}
	b := Record{ID: 2, Values: map[string]string{"email": "a@other.com", "phone": "555-0199"}}

	score := ScorePair(cfg, a, b)
	assert.False(t, score.StrongSignalUsed)
}

func TestScorePairWeightNormalizesAcrossClearedFieldsOnly(t *testing.T) {
	cfg := partnerConfig()
	// Name clears threshold, phone/email don't (blank on b) — composite
	// should equal the name's own ratio, not diluted by absent fields.
	a := Record{ID: 1, Values: map[string]string{"name": "Acme Corp"}}
	b := Record{ID: 2, Values: map[string]string{"name": "Acme Corp"}}

	score := ScorePair(cfg, a, b)
	assert.InDelta(t, 1.0, score.Total, 0.0001)
	assert.Equal(t, []string{"name"}, score.MatchedFields)
}
