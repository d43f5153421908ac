package dedup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/dedup"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

func partnerConfig() EntityScanConfig {
	return EntityScanConfig{
		Model:  "res.partner",
		Fields: []string{"name", "email"},
		Config: dedup.EntityConfig{
			EntityType: "res.partner",
			Fields: []dedup.FieldConfig{
				{Name: "name", Kind: dedup.FieldNameLike, Weight: 0.4},
				{Name: "email", Kind: dedup.FieldEmail, Weight: 0.6},
			},
		},
	}
}

func TestScanEntityGroupsIdenticalEmailsDespiteDifferentNames(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 1, erpclient.Record{"name": "Acme Corp", "email": "info@acme.com"})
	erp.Seed("res.partner", 2, erpclient.Record{"name": "ACME Corporation Ltd", "email": "info@acme.com"})

	a := New(erp, NewStore(), partnerConfig())
	scan, err := a.ScanEntity(context.Background(), "res.partner")
	require.NoError(t, err)

	require.Len(t, scan.Groups, 1)
	group := scan.Groups[0]
	assert.ElementsMatch(t, []int64{1, 2}, group.MemberIDs)
	assert.InDelta(t, 1.0, group.CompositeScore, 0.001)
	assert.Contains(t, group.FieldScores, "email")
}

func TestScanEntityUnknownTypeErrors(t *testing.T) {
	a := New(erpclient.NewFake(), NewStore(), partnerConfig())
	_, err := a.ScanEntity(context.Background(), "res.company")
	require.Error(t, err)
}

func TestScanAllReportsTotalAcrossEntityTypes(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 1, erpclient.Record{"name": "Acme Corp", "email": "info@acme.com"})
	erp.Seed("res.partner", 2, erpclient.Record{"name": "ACME Corporation Ltd", "email": "info@acme.com"})

	a := New(erp, NewStore(), partnerConfig())
	summary, err := a.ScanAll(context.Background())
	require.NoError(t, err)
	assert.Contains(t, summary, "1 duplicate groups")
}

func TestHandlersIsEmpty(t *testing.T) {
	a := New(erpclient.NewFake(), NewStore(), partnerConfig())
	assert.Empty(t, a.Handlers())
}

func TestScanPersistsScanAndGroupForLaterLookup(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 1, erpclient.Record{"name": "Acme Corp", "email": "info@acme.com"})
	erp.Seed("res.partner", 2, erpclient.Record{"name": "ACME Corporation Ltd", "email": "info@acme.com"})

	store := NewStore()
	a := New(erp, store, partnerConfig())
	_, err := a.ScanEntity(context.Background(), "res.partner")
	require.NoError(t, err)

	scans := store.ListScans()
	require.Len(t, scans, 1)
	require.Len(t, scans[0].GroupIDs, 1)

	group, ok := store.GetGroup(scans[0].GroupIDs[0])
	require.True(t, ok)
	assert.Equal(t, GroupStatusPending, group.Status)
}

func TestMergeArchivesLosersAndMarksGroupMerged(t *testing.T) {
	erp := erpclient.NewFake()
	erp.Seed("res.partner", 1, erpclient.Record{"name": "Acme Corp", "email": "info@acme.com"})
	erp.Seed("res.partner", 2, erpclient.Record{"name": "ACME Corporation Ltd", "email": "info@acme.com"})

	store := NewStore()
	a := New(erp, store, partnerConfig())
	scan, err := a.ScanEntity(context.Background(), "res.partner")
	require.NoError(t, err)
	groupID := store.ListScans()[0].GroupIDs[0]

	master := scan.Groups[0].MemberIDs[0]
	merged, err := a.Merge(context.Background(), groupID, master)
	require.NoError(t, err)
	assert.Equal(t, GroupStatusMerged, merged.Status)

	_, err = a.Merge(context.Background(), groupID, master)
	assert.Error(t, err)
}
