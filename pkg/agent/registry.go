package agent

import (
	"fmt"
	"sync"
)

// Builder constructs a fresh Graph. Registry calls it at most once per
// process and caches the result, since a Graph's node closures carry no
// per-run state of their own.
type Builder func() *Graph

// Registry maps agent names to their graph builders and memoizes
// compilation (spec.md §4.6: "Compilation is cached per process").
type Registry struct {
	mu       sync.Mutex
	builders map[string]Builder
	compiled map[string]*Graph
}

// NewRegistry creates an empty agent graph registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		compiled: make(map[string]*Graph),
	}
}

// Register associates name with a graph builder. Panics on duplicate
// registration of the same name, matching the explicit-registry-at-
// program-start pattern spec.md §9 calls for in place of import-time
// side-effect registration.
func (r *Registry) Register(name string, build Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[name]; exists {
		panic(fmt.Sprintf("agent %q already registered", name))
	}
	r.builders[name] = build
}

// Compile returns the cached Graph for name, building and validating it
// on first use.
func (r *Registry) Compile(name string) (*Graph, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.compiled[name]; ok {
		return g, nil
	}
	build, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotRegistered, name)
	}
	g := build()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	r.compiled[name] = g
	return g, nil
}

// ErrAgentNotRegistered is returned by Compile for an unknown agent name.
var ErrAgentNotRegistered = fmt.Errorf("agent not registered")
