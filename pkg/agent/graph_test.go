package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(partial State) NodeFunc {
	return func(ctx context.Context, state State) (NodeResult, error) {
		return NodeResult{Partial: partial}, nil
	}
}

func TestGraphValidateRejectsUnregisteredStart(t *testing.T) {
	g := NewGraph("broken", "missing")
	err := g.Validate()
	assert.ErrorContains(t, err, "start node")
}

func TestGraphValidateRejectsNodeWithNoEdge(t *testing.T) {
	g := NewGraph("broken", "a")
	g.AddNode("a", noop(nil))
	err := g.Validate()
	assert.ErrorContains(t, err, "no outgoing edge")
}

func TestGraphValidateRejectsEdgeToUnregisteredNode(t *testing.T) {
	g := NewGraph("broken", "a")
	g.AddNode("a", noop(nil))
	g.AddEdge("a", "ghost")
	err := g.Validate()
	assert.ErrorContains(t, err, "unregistered node")
}

func TestGraphValidateAcceptsStraightLineToEnd(t *testing.T) {
	g := NewGraph("linear", "a")
	g.AddNode("a", noop(nil)).AddEdge("a", "b")
	g.AddNode("b", noop(nil)).AddEdge("b", End)
	require.NoError(t, g.Validate())
}

func TestGraphNextFollowsRouterCase(t *testing.T) {
	g := NewGraph("branching", "a")
	g.AddNode("a", noop(nil))
	g.AddConditionalEdge("a", func(s State) string {
		return s["route"].(string)
	}, map[string]string{"x": "b", "y": End})
	g.AddNode("b", noop(nil)).AddEdge("b", End)
	require.NoError(t, g.Validate())

	next, err := g.next("a", State{"route": "x"})
	require.NoError(t, err)
	assert.Equal(t, "b", next)

	next, err = g.next("a", State{"route": "y"})
	require.NoError(t, err)
	assert.Equal(t, End, next)
}

func TestGraphNextReturnsErrorOnUnhandledCase(t *testing.T) {
	g := NewGraph("branching", "a")
	g.AddNode("a", noop(nil))
	g.AddConditionalEdge("a", func(s State) string { return "unknown" }, map[string]string{"x": End})

	_, err := g.next("a", State{})
	assert.ErrorContains(t, err, "unhandled case")
}
