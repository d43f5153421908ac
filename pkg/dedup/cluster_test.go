package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterGroupsStrongSignalPair(t *testing.T) {
	cfg := partnerConfig()
	records := []Record{
		{ID: 1, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com"}},
		{ID: 2, Values: map[string]string{"name": "ACME Corporation Ltd", "email": "info@acme.com"}},
		{ID: 3, Values: map[string]string{"name": "Unrelated Inc", "email": "hi@unrelated.com"}},
	}

	groups := Cluster(cfg, records, DefaultOverallThreshold)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []int64{1, 2}, groups[0].MemberIDs)
	assert.InDelta(t, 1.0, groups[0].CompositeScore, 0.0001)
}

func TestClusterMasterSelectionPrefersMostFilledFieldsThenLowestID(t *testing.T) {
	cfg := partnerConfig()
	records := []Record{
		{ID: 5, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com", "phone": "555-0100"}},
		{ID: 2, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com"}},
	}
	groups := Cluster(cfg, records, DefaultOverallThreshold)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(5), groups[0].MasterID, "record 5 has more filled fields")
}

func TestClusterMasterSelectionTiesBreakByLowestID(t *testing.T) {
	cfg := partnerConfig()
	records := []Record{
		{ID: 9, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com"}},
		{ID: 3, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com"}},
	}
	groups := Cluster(cfg, records, DefaultOverallThreshold)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(3), groups[0].MasterID)
}

// Invariant A6: clustering is idempotent across repeated runs on the same snapshot.
func TestClusterIsIdempotent(t *testing.T) {
	cfg := partnerConfig()
	records := []Record{
		{ID: 1, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com"}},
		{ID: 2, Values: map[string]string{"name": "ACME Corporation Ltd", "email": "info@acme.com"}},
		{ID: 3, Values: map[string]string{"name": "Globex", "email": "info@globex.com"}},
		{ID: 4, Values: map[string]string{"name": "Globex Inc", "email": "info@globex.com"}},
	}

	first := Cluster(cfg, records, DefaultOverallThreshold)
	second := Cluster(cfg, records, DefaultOverallThreshold)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].MemberIDs, second[i].MemberIDs)
		assert.Equal(t, first[i].MasterID, second[i].MasterID)
	}
}

func TestClusterOmitsSingletonClusters(t *testing.T) {
	cfg := partnerConfig()
	records := []Record{
		{ID: 1, Values: map[string]string{"name": "Acme Corp", "email": "info@acme.com"}},
		{ID: 2, Values: map[string]string{"name": "Totally Different", "email": "x@y.com"}},
	}
	groups := Cluster(cfg, records, DefaultOverallThreshold)
	assert.Empty(t, groups)
}
