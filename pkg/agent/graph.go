package agent

import "fmt"

// Graph is a named directed graph of nodes: a START node implied by the
// constructor's start argument, straight and conditional edges, and a
// terminal END reached when a node's edge targets agent.End.
type Graph struct {
	Name  string
	Start string
	nodes map[string]NodeFunc
	edges map[string]Edge
}

// NewGraph creates an empty graph named name, entered at start.
func NewGraph(name, start string) *Graph {
	return &Graph{
		Name:  name,
		Start: start,
		nodes: make(map[string]NodeFunc),
		edges: make(map[string]Edge),
	}
}

// AddNode registers fn under name.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.nodes[name] = fn
	return g
}

// AddEdge adds a straight edge from → to. to may be agent.End.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = Edge{To: to}
	return g
}

// AddConditionalEdge adds a router-selected edge from from: router(state)
// is evaluated after from completes and its output is looked up in cases
// to find the next node (or agent.End).
func (g *Graph) AddConditionalEdge(from string, router Router, cases map[string]string) *Graph {
	g.edges[from] = Edge{Router: router, Cases: cases}
	return g
}

// Validate checks every node referenced by Start and by edges exists (or
// is agent.End), and that every non-END node registered has an outgoing
// edge. Compile calls this once and caches the result.
func (g *Graph) Validate() error {
	if g.Start == "" {
		return fmt.Errorf("agent %s: no start node", g.Name)
	}
	if _, ok := g.nodes[g.Start]; !ok {
		return fmt.Errorf("agent %s: start node %q not registered", g.Name, g.Start)
	}
	for name := range g.nodes {
		edge, ok := g.edges[name]
		if !ok {
			return fmt.Errorf("agent %s: node %q has no outgoing edge", g.Name, name)
		}
		if edge.Router != nil {
			if len(edge.Cases) == 0 {
				return fmt.Errorf("agent %s: node %q has a router with no cases", g.Name, name)
			}
			for _, target := range edge.Cases {
				if target != End {
					if _, ok := g.nodes[target]; !ok {
						return fmt.Errorf("agent %s: node %q routes to unregistered node %q", g.Name, name, target)
					}
				}
			}
			continue
		}
		if edge.To != End {
			if _, ok := g.nodes[edge.To]; !ok {
				return fmt.Errorf("agent %s: node %q edges to unregistered node %q", g.Name, name, edge.To)
			}
		}
	}
	return nil
}

// next resolves the node to run after from finishes, given the state it
// produced. Returns agent.End when the graph terminates.
func (g *Graph) next(from string, state State) (string, error) {
	edge, ok := g.edges[from]
	if !ok {
		return "", fmt.Errorf("agent %s: node %q has no outgoing edge", g.Name, from)
	}
	if edge.Router == nil {
		return edge.To, nil
	}
	caseName := edge.Router(state)
	target, ok := edge.Cases[caseName]
	if !ok {
		return "", fmt.Errorf("agent %s: router at %q returned unhandled case %q", g.Name, from, caseName)
	}
	return target, nil
}
