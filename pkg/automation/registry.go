package automation

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoHandler is returned when an automation has no handler for the
// resolved (event_type, model) pair, or isn't registered at all
// (spec.md §4.3's "no_handler" result).
var ErrNoHandler = errors.New("no_handler")

// Registry holds every registered domain automation, keyed by its
// automation_type.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Automation
}

// NewRegistry creates an empty registry. Automations are registered
// explicitly at program start (no import-time side effects).
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Automation)}
}

// Register adds a (or replaces an existing) automation under its
// automation_type.
func (r *Registry) Register(a Automation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[a.AutomationType()] = a
}

// Get retrieves a registered automation by type.
func (r *Registry) Get(automationType string) (Automation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byType[automationType]
	return a, ok
}

// All returns every registered automation.
func (r *Registry) All() []Automation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Automation, 0, len(r.byType))
	for _, a := range r.byType {
		out = append(out, a)
	}
	return out
}

// Resolve finds the handler for (automationType, eventType, model):
// an exact "event_type:model" match wins, then a generic "event_type"
// handler, else ErrNoHandler (spec.md §4.3).
func (r *Registry) Resolve(automationType, eventType, model string) (HandlerFunc, error) {
	a, ok := r.Get(automationType)
	if !ok {
		return nil, fmt.Errorf("%w: automation %q is not registered", ErrNoHandler, automationType)
	}
	handlers := a.Handlers()
	if model != "" {
		if h, ok := handlers[eventType+":"+model]; ok {
			return h, nil
		}
	}
	if h, ok := handlers[eventType]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: automation %q has no handler for event_type=%s model=%s", ErrNoHandler, automationType, eventType, model)
}
