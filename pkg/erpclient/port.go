// Package erpclient is the C1 port to the upstream ERP's external API: a
// small RPC surface (search / read / search_read / search_count / create /
// write / execute_method) addressed by model name and a polish-notation
// domain filter, plus an HTTP implementation guarded by a circuit breaker
// and a fake in-memory implementation for tests.
package erpclient

import "context"

// Client is the port every automation and agent talks to instead of the
// ERP's HTTP API directly.
type Client interface {
	// Search returns record IDs matching domain, honoring limit/offset/order.
	Search(ctx context.Context, model string, domain Domain, opts SearchOptions) ([]int64, error)

	// Read fetches the given fields for the given record IDs.
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]Record, error)

	// SearchRead combines Search and Read in one round trip.
	SearchRead(ctx context.Context, model string, domain Domain, fields []string, opts SearchOptions) ([]Record, error)

	// SearchCount returns the number of records matching domain.
	SearchCount(ctx context.Context, model string, domain Domain) (int, error)

	// Create inserts a new record and returns its ID.
	Create(ctx context.Context, model string, values Record) (int64, error)

	// Write updates the given records with values.
	Write(ctx context.Context, model string, ids []int64, values Record) error

	// ExecuteMethod invokes an arbitrary server-side method by name,
	// used for ERP-specific workflow actions (e.g. "action_post" on an
	// invoice) that don't fit the CRUD verbs above.
	ExecuteMethod(ctx context.Context, model, method string, ids []int64, args []interface{}) (interface{}, error)
}

// Record is a loosely-typed ERP record: field name to value.
type Record map[string]interface{}

// SearchOptions controls pagination and ordering of a Search/SearchRead call.
type SearchOptions struct {
	Limit  int
	Offset int
	Order  string
}

// Domain is a polish-notation filter, the ERP's native representation of a
// search predicate: a flat slice mixing leaf Triple values and logical
// operators (And, Or, Not), evaluated left to right the way the upstream
// ERP's ORM evaluates it.
type Domain []interface{}

// Triple is a single (field, operator, value) leaf condition.
type Triple struct {
	Field    string
	Operator string
	Value    interface{}
}

// Logical operators usable as Domain elements ahead of the operands they
// combine, matching the ERP's prefix polish notation.
const (
	And = "&"
	Or  = "|"
	Not = "!"
)

// Common comparison operators for Triple.Operator.
const (
	OpEquals      = "="
	OpNotEquals   = "!="
	OpIn          = "in"
	OpNotIn       = "not in"
	OpLike        = "like"
	OpILike       = "ilike"
	OpGreaterThan = ">"
	OpLessThan    = "<"
	OpGTE         = ">="
	OpLTE         = "<="
)
