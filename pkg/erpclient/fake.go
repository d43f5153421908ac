package erpclient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Fake is an in-memory Client implementation used by automation and agent
// unit tests, avoiding any network dependency.
type Fake struct {
	mu      sync.Mutex
	tables  map[string]map[int64]Record
	nextID  map[string]int64
	Methods map[string]func(ids []int64, args []interface{}) (interface{}, error)
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{
		tables:  make(map[string]map[int64]Record),
		nextID:  make(map[string]int64),
		Methods: make(map[string]func(ids []int64, args []interface{}) (interface{}, error)),
	}
}

// Seed inserts a record with a caller-chosen ID, used to set up fixtures.
func (f *Fake) Seed(model string, id int64, record Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tables[model] == nil {
		f.tables[model] = make(map[int64]Record)
	}
	rec := Record{}
	for k, v := range record {
		rec[k] = v
	}
	rec["id"] = id
	f.tables[model][id] = rec
	if id >= f.nextID[model] {
		f.nextID[model] = id + 1
	}
}

// Search implements Client.
func (f *Fake) Search(_ context.Context, model string, domain Domain, opts SearchOptions) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []int64
	for id, rec := range f.tables[model] {
		if matches(rec, domain) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if opts.Offset > 0 && opts.Offset < len(ids) {
		ids = ids[opts.Offset:]
	} else if opts.Offset >= len(ids) {
		ids = nil
	}
	if opts.Limit > 0 && opts.Limit < len(ids) {
		ids = ids[:opts.Limit]
	}
	return ids, nil
}

// Read implements Client.
func (f *Fake) Read(_ context.Context, model string, ids []int64, fields []string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Record
	for _, id := range ids {
		rec, ok := f.tables[model][id]
		if !ok {
			continue
		}
		out = append(out, projectFields(rec, fields))
	}
	return out, nil
}

// SearchRead implements Client.
func (f *Fake) SearchRead(ctx context.Context, model string, domain Domain, fields []string, opts SearchOptions) ([]Record, error) {
	ids, err := f.Search(ctx, model, domain, opts)
	if err != nil {
		return nil, err
	}
	return f.Read(ctx, model, ids, fields)
}

// SearchCount implements Client.
func (f *Fake) SearchCount(ctx context.Context, model string, domain Domain) (int, error) {
	ids, err := f.Search(ctx, model, domain, SearchOptions{})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Create implements Client.
func (f *Fake) Create(_ context.Context, model string, values Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID[model] + 1
	if f.tables[model] == nil {
		f.tables[model] = make(map[int64]Record)
		id = 1
	}
	rec := Record{}
	for k, v := range values {
		rec[k] = v
	}
	rec["id"] = id
	f.tables[model][id] = rec
	f.nextID[model] = id
	return id, nil
}

// Write implements Client.
func (f *Fake) Write(_ context.Context, model string, ids []int64, values Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range ids {
		rec, ok := f.tables[model][id]
		if !ok {
			return fmt.Errorf("fake erp: no such record %s[%d]", model, id)
		}
		for k, v := range values {
			rec[k] = v
		}
		f.tables[model][id] = rec
	}
	return nil
}

// ExecuteMethod implements Client, delegating to a caller-registered
// handler in Methods, keyed "model.method".
func (f *Fake) ExecuteMethod(_ context.Context, model, method string, ids []int64, args []interface{}) (interface{}, error) {
	f.mu.Lock()
	handler, ok := f.Methods[model+"."+method]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("fake erp: no handler registered for %s.%s", model, method)
	}
	return handler(ids, args)
}

func projectFields(rec Record, fields []string) Record {
	if len(fields) == 0 {
		out := Record{}
		for k, v := range rec {
			out[k] = v
		}
		return out
	}
	out := Record{"id": rec["id"]}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

// matches evaluates a polish-notation Domain against rec. Leading &/|/!
// elements combine the expressions that follow them; any leaves left
// uncombined at the top level are implicitly ANDed together, matching the
// ERP's own domain-parsing convention. This is intentionally a small
// evaluator, sufficient for the domains automations construct — not a full
// reimplementation of the ERP's ORM.
func matches(rec Record, domain Domain) bool {
	var stack []bool
	// Walk right to left so operators (which precede their operands) can
	// pop already-evaluated operands off the stack.
	for i := len(domain) - 1; i >= 0; i-- {
		switch v := domain[i].(type) {
		case Triple:
			stack = append(stack, matchRecord(rec, v))
		case string:
			switch v {
			case Not:
				if len(stack) < 1 {
					continue
				}
				a := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				stack = append(stack, !a)
			case And, Or:
				if len(stack) < 2 {
					continue
				}
				a, b := stack[len(stack)-1], stack[len(stack)-2]
				stack = stack[:len(stack)-2]
				if v == And {
					stack = append(stack, a && b)
				} else {
					stack = append(stack, a || b)
				}
			}
		}
	}
	result := true
	for _, v := range stack {
		result = result && v
	}
	return result
}

// matchRecord evaluates a single Triple leaf against rec.
func matchRecord(rec Record, t Triple) bool {
	val, ok := rec[t.Field]
	if !ok {
		return t.Operator == OpNotEquals || t.Operator == OpNotIn
	}
	switch t.Operator {
	case OpEquals:
		return fmt.Sprint(val) == fmt.Sprint(t.Value)
	case OpNotEquals:
		return fmt.Sprint(val) != fmt.Sprint(t.Value)
	case OpILike, OpLike:
		return strings.Contains(strings.ToLower(fmt.Sprint(val)), strings.ToLower(fmt.Sprint(t.Value)))
	case OpGreaterThan, OpLessThan, OpGTE, OpLTE:
		return compareNumeric(val, t.Value, t.Operator)
	case OpIn:
		return containsAny(t.Value, val)
	case OpNotIn:
		return !containsAny(t.Value, val)
	}
	return false
}

func compareNumeric(a, b interface{}, op string) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	switch op {
	case OpGreaterThan:
		return af > bf
	case OpLessThan:
		return af < bf
	case OpGTE:
		return af >= bf
	case OpLTE:
		return af <= bf
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func containsAny(haystack interface{}, needle interface{}) bool {
	list, ok := haystack.([]interface{})
	if !ok {
		return false
	}
	for _, item := range list {
		if fmt.Sprint(item) == fmt.Sprint(needle) {
			return true
		}
	}
	return false
}
