// Package depgraph provides a directed dependency graph over build-target
// identifiers. The build-file loader uses it to reject dependency cycles and
// to compute a deterministic instantiation order in which every target is
// created after the targets it depends on.
package depgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.Validate] and [Graph.TopoSort]
	// when a cycle is detected. Cycles are detected using depth-first search
	// with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes. The loader
// uses it to carry source positions for error reporting. Metadata maps are
// never nil after AddNode.
type Metadata map[string]any

// Node is a vertex in the dependency graph, identified by a build-target
// string.
type Node struct {
	ID   string
	Meta Metadata
}

// Edge is a directed dependency: From depends on To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph over target identifiers. It tracks insertion
// order so traversals are reproducible across runs.
//
// The zero value is not usable - use New to create a valid instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	order    []string // node IDs in insertion order
	edges    []Edge
	outgoing map[string][]string // nodeID -> dependency IDs
	incoming map[string][]string // nodeID -> dependent IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID if the node ID
// is empty, or ErrDuplicateNodeID if a node with the same ID already exists.
// The node's Meta field is automatically initialized to an empty map if nil.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge records that from depends on to. Returns ErrUnknownSourceNode or
// ErrUnknownTargetNode when an endpoint has not been added. Parallel edges
// between the same nodes are allowed but have no additional effect on
// ordering.
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// Node returns the node with the given ID and true, or nil and false if not
// found.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node IDs in insertion order. The returned slice is a
// copy.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Dependencies returns the IDs this node depends on, in edge insertion
// order. The returned slice should not be modified.
func (g *Graph) Dependencies(id string) []string { return g.outgoing[id] }

// Dependents returns the IDs that depend on this node, in edge insertion
// order. The returned slice should not be modified.
func (g *Graph) Dependents(id string) []string { return g.incoming[id] }

// Roots returns the IDs of nodes nothing depends on, in insertion order.
// These are typically the top-level targets of a build file.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Leaves returns the IDs of nodes with no dependencies, in insertion order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

// Validate checks that the graph is acyclic. Returns ErrGraphHasCycle if a
// cycle is detected, nil otherwise.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	_, err := g.TopoSort()
	return err
}

// TopoSort returns every node ID ordered so each node appears after all of
// its dependencies. The order is deterministic: ties are broken by node
// insertion order. Returns ErrGraphHasCycle when no such order exists.
func (g *Graph) TopoSort() ([]string, error) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	out := make([]string, 0, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, dep := range g.outgoing[id] {
			switch color[dep] {
			case white:
				dfs(dep)
				if hasCycle {
					return
				}
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
		out = append(out, id)
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return nil, ErrGraphHasCycle
			}
		}
	}
	return out, nil
}

// Depths returns the longest-path depth of every node, where leaves have
// depth 0 and each node sits one above its deepest dependency. Returns
// ErrGraphHasCycle for cyclic graphs.
func (g *Graph) Depths() (map[string]int, error) {
	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}
	depths := make(map[string]int, len(order))
	for _, id := range order {
		depth := 0
		for _, dep := range g.outgoing[id] {
			if d := depths[dep] + 1; d > depth {
				depth = d
			}
		}
		depths[id] = depth
	}
	return depths, nil
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice. This is commonly
// used to verify orderings in tests. Returns an empty map for a nil or
// empty slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
