package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAutomation struct {
	automationType string
	watchedModels  []string
	handlers       map[string]HandlerFunc
}

func (s *stubAutomation) AutomationType() string    { return s.automationType }
func (s *stubAutomation) WatchedModels() []string   { return s.watchedModels }
func (s *stubAutomation) Handlers() map[string]HandlerFunc { return s.handlers }

func noopHandler(ctx context.Context, ev Event) (AutomationResult, error) {
	return AutomationResult{Success: true}, nil
}

func TestRegistryResolvesModelSpecificHandlerBeforeGeneric(t *testing.T) {
	specific := func(ctx context.Context, ev Event) (AutomationResult, error) {
		return AutomationResult{ActionName: "specific"}, nil
	}
	generic := func(ctx context.Context, ev Event) (AutomationResult, error) {
		return AutomationResult{ActionName: "generic"}, nil
	}

	r := NewRegistry()
	r.Register(&stubAutomation{
		automationType: "reconciliation",
		watchedModels:  []string{"account.move"},
		handlers: map[string]HandlerFunc{
			"create:account.move": specific,
			"create":              generic,
		},
	})

	h, err := r.Resolve("reconciliation", "create", "account.move")
	require.NoError(t, err)
	result, _ := h(context.Background(), Event{})
	assert.Equal(t, "specific", result.ActionName)

	h, err = r.Resolve("reconciliation", "create", "res.partner")
	require.NoError(t, err)
	result, _ = h(context.Background(), Event{})
	assert.Equal(t, "generic", result.ActionName)
}

func TestRegistryResolveReturnsNoHandlerWhenAutomationUnregistered(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("credit", "write", "res.partner")
	assert.True(t, errors.Is(err, ErrNoHandler))
}

func TestRegistryResolveReturnsNoHandlerWhenEventUnhandled(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubAutomation{
		automationType: "credit",
		handlers:       map[string]HandlerFunc{"write": noopHandler},
	})
	_, err := r.Resolve("credit", "unlink", "res.partner")
	assert.True(t, errors.Is(err, ErrNoHandler))
}
