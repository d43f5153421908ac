// Package reportbuilder is the C10 automation backing the ReportJob
// table (spec.md §3, §4.8) and the round-trip law R1: `parse_query ->
// execute_query` must produce rows whose column set equals
// `parsed_query.fields ∪ parsed_query.group_by`. AutomationType
// "reportbuilder".
package reportbuilder

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/automation"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/erpclient"
)

const AutomationType = "reportbuilder"

const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// Query is the caller-facing request: an ERP model, the fields to
// project, an optional group-by set, and equality filters (the
// glossary's "domain" in its simplest form — scalar equality triples).
type Query struct {
	Model   string
	Fields  []string
	GroupBy []string
	Filters map[string]interface{}
}

// ParsedQuery is Query normalized into the shape ExecuteQuery consumes:
// a de-duplicated column list and a proper erpclient.Domain.
type ParsedQuery struct {
	Model   string
	Fields  []string
	GroupBy []string
	Domain  erpclient.Domain
}

// Columns returns Fields ∪ GroupBy, the exact column set R1 requires
// ExecuteQuery's output rows to match.
func (p ParsedQuery) Columns() []string {
	seen := make(map[string]bool, len(p.Fields)+len(p.GroupBy))
	var out []string
	for _, f := range append(append([]string{}, p.Fields...), p.GroupBy...) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

// ParseQuery normalizes a Query into a ParsedQuery.
func ParseQuery(q Query) (ParsedQuery, error) {
	if q.Model == "" {
		return ParsedQuery{}, fmt.Errorf("reportbuilder: query has no model")
	}
	if len(q.Fields) == 0 && len(q.GroupBy) == 0 {
		return ParsedQuery{}, fmt.Errorf("reportbuilder: query has no fields or group_by")
	}

	domain := make(erpclient.Domain, 0, len(q.Filters))
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		domain = append(domain, erpclient.Triple{Field: k, Operator: erpclient.OpEquals, Value: q.Filters[k]})
	}

	return ParsedQuery{Model: q.Model, Fields: append([]string{}, q.Fields...), GroupBy: append([]string{}, q.GroupBy...), Domain: domain}, nil
}

// Row is one result row, keyed by column name.
type Row map[string]interface{}

// Job is the ReportJob parent record.
type Job struct {
	ID          string
	Query       ParsedQuery
	Status      string
	Rows        []Row
	GeneratedAt time.Time
}

// Store holds report jobs in memory.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	seq  int
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

func (s *Store) create(pq ParsedQuery) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	j := &Job{ID: fmt.Sprintf("report-%d", s.seq), Query: pq, Status: JobRunning}
	s.jobs[j.ID] = j
	return j
}

func (s *Store) finish(id string, rows []Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = JobCompleted
		j.Rows = rows
		j.GeneratedAt = time.Now()
	}
}

func (s *Store) fail(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = JobFailed
	}
}

func (s *Store) Get(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

// Automation executes parsed queries against the ERP.
type Automation struct {
	erp   erpclient.Client
	store *Store
}

func New(erp erpclient.Client, store *Store) *Automation {
	return &Automation{erp: erp, store: store}
}

func (a *Automation) AutomationType() string                      { return AutomationType }
func (a *Automation) WatchedModels() []string                     { return nil }
func (a *Automation) Handlers() map[string]automation.HandlerFunc { return map[string]automation.HandlerFunc{} }

// ExecuteQuery runs pq against the ERP and projects every row onto
// exactly pq.Columns() — the column set R1 pins down — regardless of
// what the underlying record happened to carry.
func ExecuteQuery(ctx context.Context, erp erpclient.Client, pq ParsedQuery) ([]Row, error) {
	columns := pq.Columns()
	records, err := erp.SearchRead(ctx, pq.Model, pq.Domain, columns, erpclient.SearchOptions{})
	if err != nil {
		return nil, fmt.Errorf("execute report query on %s: %w", pq.Model, err)
	}

	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, len(columns))
		for _, c := range columns {
			row[c] = rec[c]
		}
		rows[i] = row
	}
	return rows, nil
}

// Get returns a report job by ID, for GET /api/reports/{id}.
func (a *Automation) Get(id string) (*Job, bool) {
	return a.store.Get(id)
}

// Run parses and executes query, persisting a ReportJob for it.
func (a *Automation) Run(ctx context.Context, query Query) (*Job, error) {
	pq, err := ParseQuery(query)
	if err != nil {
		return nil, err
	}
	job := a.store.create(pq)

	rows, err := ExecuteQuery(ctx, a.erp, pq)
	if err != nil {
		a.store.fail(job.ID)
		return nil, err
	}
	a.store.finish(job.ID, rows)
	return a.store.mustGet(job.ID), nil
}

func (s *Store) mustGet(id string) *Job {
	j, _ := s.Get(id)
	return j
}
