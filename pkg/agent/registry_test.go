package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearGraph(name string) *Graph {
	g := NewGraph(name, "a")
	g.AddNode("a", noop(nil)).AddEdge("a", End)
	return g
}

func TestRegistryCompileCachesAcrossCalls(t *testing.T) {
	r := NewRegistry()
	builds := 0
	r.Register("demo", func() *Graph {
		builds++
		return linearGraph("demo")
	})

	g1, err := r.Compile("demo")
	require.NoError(t, err)
	g2, err := r.Compile("demo")
	require.NoError(t, err)

	assert.Same(t, g1, g2)
	assert.Equal(t, 1, builds)
}

func TestRegistryCompileReturnsErrorForUnknownAgent(t *testing.T) {
	r := NewRegistry()
	_, err := r.Compile("ghost")
	assert.ErrorIs(t, err, ErrAgentNotRegistered)
}

func TestRegisterPanicsOnDuplicateName(t *testing.T) {
	r := NewRegistry()
	r.Register("demo", func() *Graph { return linearGraph("demo") })
	assert.Panics(t, func() {
		r.Register("demo", func() *Graph { return linearGraph("demo") })
	})
}

func TestRegistryCompilePropagatesValidationError(t *testing.T) {
	r := NewRegistry()
	r.Register("broken", func() *Graph { return NewGraph("broken", "missing") })
	_, err := r.Compile("broken")
	assert.ErrorContains(t, err, "start node")
}
