// Package dedup is the C10 automation wrapping pkg/dedup (C4.2) into a
// scheduled scan: it reads every active record of a configured entity
// type, clusters duplicates, and leaves the resulting groups pending for
// an operator to merge or dismiss via the operator API (spec.md §6's
// POST /api/dedup/scan, GET /api/dedup/groups/{id}). AutomationType
// "dedup". Dedup never auto-merges — merge is always an explicit operator
// decision — so this automation exposes no webhook handlers, only scans.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/dedup"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

const AutomationType = "dedup"

// Scan is one run's result: the groups found plus which entity type and
// model they came from, the shape spec.md §3's DeduplicationScan +
// DuplicateGroup pair.
type Scan struct {
	EntityType string
	Model      string
	Groups     []dedup.Group
}

const (
	GroupStatusPending   = "pending"
	GroupStatusMerged    = "merged"
	GroupStatusDismissed = "dismissed"
)

// ScanRecord is one persisted ScanEntity run, the shape GET
// /api/dedup/scans lists.
type ScanRecord struct {
	ID         string
	EntityType string
	Model      string
	GroupIDs   []string
	CreatedAt  time.Time
}

// GroupRecord is one persisted duplicate group, addressable by ID for GET
// /api/dedup/groups/{id} and POST /api/dedup/groups/{id}/merge.
type GroupRecord struct {
	ID             string
	ScanID         string
	EntityType     string
	Model          string
	MemberIDs      []int64
	MasterID       int64
	CompositeScore float64
	FieldScores    map[string]float64
	Status         string
}

// Store holds completed scans and their groups in memory so operators can
// page through history and resolve groups after the scan that found them
// has finished (spec.md §6's GET /api/dedup/scans, GET
// /api/dedup/groups/{id}).
type Store struct {
	mu     sync.Mutex
	scans  []*ScanRecord
	groups map[string]*GroupRecord
}

func NewStore() *Store {
	return &Store{groups: make(map[string]*GroupRecord)}
}

func (s *Store) record(scan Scan) *ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &ScanRecord{ID: uuid.NewString(), EntityType: scan.EntityType, Model: scan.Model, CreatedAt: time.Now()}
	for _, g := range scan.Groups {
		gr := &GroupRecord{
			ID: uuid.NewString(), ScanID: rec.ID, EntityType: scan.EntityType, Model: scan.Model,
			MemberIDs: g.MemberIDs, MasterID: g.MasterID, CompositeScore: g.CompositeScore,
			FieldScores: g.FieldScores, Status: GroupStatusPending,
		}
		s.groups[gr.ID] = gr
		rec.GroupIDs = append(rec.GroupIDs, gr.ID)
	}
	s.scans = append(s.scans, rec)
	return rec
}

// ListScans returns every persisted scan, most recent first.
func (s *Store) ListScans() []*ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ScanRecord, len(s.scans))
	for i, rec := range s.scans {
		out[len(s.scans)-1-i] = rec
	}
	return out
}

// GetGroup returns the group by ID.
func (s *Store) GetGroup(id string) (*GroupRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	return g, ok
}

func (s *Store) markMerged(id string, masterID int64) (*GroupRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil, fmt.Errorf("dedup: no group %q", id)
	}
	if g.Status != GroupStatusPending {
		return nil, fmt.Errorf("dedup: group %q already %s", id, g.Status)
	}
	g.MasterID = masterID
	g.Status = GroupStatusMerged
	return g, nil
}

// Automation scans one or more entity types for duplicate clusters.
type Automation struct {
	erp     erpclient.Client
	store   *Store
	configs map[string]entityScanConfig
}

type entityScanConfig struct {
	model  string
	fields []string
	cfg    dedup.EntityConfig
}

// New wires an Automation with the given per-entity-type scan configs,
// keyed by EntityConfig.EntityType.
func New(erp erpclient.Client, store *Store, configs ...EntityScanConfig) *Automation {
	a := &Automation{erp: erp, store: store, configs: make(map[string]entityScanConfig, len(configs))}
	for _, c := range configs {
		a.configs[c.Config.EntityType] = entityScanConfig{model: c.Model, fields: c.Fields, cfg: c.Config}
	}
	return a
}

// EntityScanConfig is the caller-supplied binding between an ERP model
// and a pkg/dedup.EntityConfig, since dedup's EntityConfig only describes
// field weights, not which ERP model or fields to read them from.
type EntityScanConfig struct {
	Model  string
	Fields []string
	Config dedup.EntityConfig
}

func (a *Automation) AutomationType() string  { return AutomationType }
func (a *Automation) WatchedModels() []string { return nil }

// Handlers is empty: dedup groups are always operator-merged, never
// auto-applied by a webhook handler.
func (a *Automation) Handlers() map[string]automation.HandlerFunc {
	return map[string]automation.HandlerFunc{}
}

// Scans returns every persisted scan, most recent first, for GET
// /api/dedup/scans.
func (a *Automation) Scans() []*ScanRecord {
	if a.store == nil {
		return nil
	}
	return a.store.ListScans()
}

// Group returns a persisted duplicate group by ID, for GET
// /api/dedup/groups/{id}.
func (a *Automation) Group(id string) (*GroupRecord, bool) {
	if a.store == nil {
		return nil, false
	}
	return a.store.GetGroup(id)
}

// ScanEntity runs one entity type's dedup scan (spec.md §4.4.2's
// idempotent clustering, invariant A6: the same snapshot always produces
// the same groups).
func (a *Automation) ScanEntity(ctx context.Context, entityType string) (Scan, error) {
	c, ok := a.configs[entityType]
	if !ok {
		return Scan{}, fmt.Errorf("dedup: no scan config for entity type %q", entityType)
	}

	records, err := a.erp.SearchRead(ctx, c.model, erpclient.Domain{}, c.fields, erpclient.SearchOptions{})
	if err != nil {
		return Scan{}, fmt.Errorf("dedup scan %s: %w", entityType, err)
	}

	dedupRecords := make([]dedup.Record, 0, len(records))
	for _, rec := range records {
		id, _ := rec["id"].(int64)
		values := make(map[string]string, len(c.fields))
		for _, f := range c.fields {
			if v, ok := rec[f]; ok {
				values[f] = fmt.Sprint(v)
			}
		}
		dedupRecords = append(dedupRecords, dedup.Record{ID: id, Values: values})
	}

	groups := dedup.Cluster(c.cfg, dedupRecords, dedup.DefaultOverallThreshold)
	scan := Scan{EntityType: entityType, Model: c.model, Groups: groups}
	if a.store != nil {
		a.store.record(scan)
	}
	return scan, nil
}

// ScanAll runs ScanEntity for every configured entity type, matching
// pkg/scheduler.JobFunc's shape for cron registration.
func (a *Automation) ScanAll(ctx context.Context) (string, error) {
	total := 0
	for entityType := range a.configs {
		scan, err := a.ScanEntity(ctx, entityType)
		if err != nil {
			return "", err
		}
		total += len(scan.Groups)
	}
	return fmt.Sprintf("%d duplicate groups found across %d entity types", total, len(a.configs)), nil
}

// Merge applies an operator's merge decision for one pending group: every
// member other than masterRecordID is archived (active=false) and
// stamped with merged_into, and the group is marked merged. Calling Merge
// on an already-resolved group is a BusinessInvariantViolation (spec.md
// §7); dedup never re-opens a merged or dismissed group.
func (a *Automation) Merge(ctx context.Context, groupID string, masterRecordID int64) (*GroupRecord, error) {
	if a.store == nil {
		return nil, fmt.Errorf("dedup: no store configured")
	}
	group, ok := a.store.GetGroup(groupID)
	if !ok {
		return nil, fmt.Errorf("dedup: no group %q", groupID)
	}

	var losers []int64
	for _, id := range group.MemberIDs {
		if id != masterRecordID {
			losers = append(losers, id)
		}
	}
	if len(losers) > 0 {
		if err := a.erp.Write(ctx, group.Model, losers, erpclient.Record{"active": false, "merged_into": masterRecordID}); err != nil {
			return nil, fmt.Errorf("dedup merge %s: %w", groupID, err)
		}
	}

	return a.store.markMerged(groupID, masterRecordID)
}
