// Package multigraph implements the directed multigraph BuildGraph returns:
// nodes keyed by id carry a value, and any number of edges may connect two
// nodes as long as their keys differ.
//
// The structure is a gonum multi.DirectedGraph, so the result can be passed
// to gonum's graph algorithms through Directed. Edge keys are tracked next
// to it, in insertion order.
package multigraph

import (
	"encoding/json"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// Edge is a directed edge identified by the (From, To, Key) triple.
type Edge[K, E comparable] struct {
	From K `json:"from"`
	To   K `json:"to"`
	Key  E `json:"key"`
}

// MultiDiGraph is a directed multigraph. Nodes and edges keep their
// insertion order. It is not safe for concurrent use.
type MultiDiGraph[K ~int64, N any, E comparable] struct {
	g     *multi.DirectedGraph
	order []K
	pos   map[K]int
	nodes map[K]N
	edges []Edge[K, E]
	// lines maps the key triples to their gonum lines, and line ids back
	// to the position of their triple.
	lines map[Edge[K, E]]graph.Line
	index map[int64]int
}

// New returns an empty graph.
func New[K ~int64, N any, E comparable]() *MultiDiGraph[K, N, E] {
	return &MultiDiGraph[K, N, E]{
		g:     multi.NewDirectedGraph(),
		pos:   make(map[K]int),
		nodes: make(map[K]N),
		lines: make(map[Edge[K, E]]graph.Line),
		index: make(map[int64]int),
	}
}

// Directed returns the underlying gonum graph. Node ids are the K ids.
func (g *MultiDiGraph[K, N, E]) Directed() graph.DirectedMultigraph { return g.g }

// AddNode adds the node or replaces its value.
func (g *MultiDiGraph[K, N, E]) AddNode(id K, v N) {
	if !g.HasNode(id) {
		g.g.AddNode(multi.Node(id))
		g.pos[id] = len(g.order)
		g.order = append(g.order, id)
	}
	g.nodes[id] = v
}

// HasNode reports if the node exists.
func (g *MultiDiGraph[K, N, E]) HasNode(id K) bool {
	return g.g.Node(int64(id)) != nil
}

// Node returns the value of the node.
func (g *MultiDiGraph[K, N, E]) Node(id K) (N, bool) {
	v, ok := g.nodes[id]
	return v, ok
}

// Nodes returns the node ids in insertion order.
func (g *MultiDiGraph[K, N, E]) Nodes() []K {
	return slices.Clone(g.order)
}

// AddEdge adds the edge from -> to with the given key, adding missing
// nodes with a zero value. It returns false if the same edge exists.
func (g *MultiDiGraph[K, N, E]) AddEdge(from, to K, key E) bool {
	e := Edge[K, E]{From: from, To: to, Key: key}
	if _, ok := g.lines[e]; ok {
		return false
	}
	var zero N
	for _, id := range []K{from, to} {
		if !g.HasNode(id) {
			g.AddNode(id, zero)
		}
	}
	l := g.g.NewLine(g.g.Node(int64(from)), g.g.Node(int64(to)))
	g.g.SetLine(l)
	g.lines[e] = l
	g.index[l.ID()] = len(g.edges)
	g.edges = append(g.edges, e)
	return true
}

// HasEdge reports if the edge exists.
func (g *MultiDiGraph[K, N, E]) HasEdge(from, to K, key E) bool {
	_, ok := g.lines[Edge[K, E]{From: from, To: to, Key: key}]
	return ok
}

// OutEdges returns the edges leaving the node in insertion order.
func (g *MultiDiGraph[K, N, E]) OutEdges(id K) []Edge[K, E] {
	var idx []int
	for _, to := range g.Successors(id) {
		lines := g.g.Lines(int64(id), int64(to))
		for lines.Next() {
			idx = append(idx, g.index[lines.Line().ID()])
		}
	}
	slices.Sort(idx)
	es := make([]Edge[K, E], len(idx))
	for i, j := range idx {
		es[i] = g.edges[j]
	}
	return es
}

// Edges returns all edges in insertion order.
func (g *MultiDiGraph[K, N, E]) Edges() []Edge[K, E] {
	return slices.Clone(g.edges)
}

// Successors returns the distinct targets of the edges leaving the node,
// in the order the targets were added to the graph.
func (g *MultiDiGraph[K, N, E]) Successors(id K) []K {
	var ids []K
	to := g.g.From(int64(id))
	for to.Next() {
		ids = append(ids, K(to.Node().ID()))
	}
	slices.SortFunc(ids, func(a, b K) int { return g.pos[a] - g.pos[b] })
	return ids
}

// NumberOfNodes returns the node count.
func (g *MultiDiGraph[K, N, E]) NumberOfNodes() int { return len(g.order) }

// NumberOfEdges returns the edge count.
func (g *MultiDiGraph[K, N, E]) NumberOfEdges() int { return len(g.edges) }

type jsonNode[K comparable, N any] struct {
	ID    K `json:"id"`
	Value N `json:"value"`
}

// MarshalJSON encodes the graph in node-link form:
//
//	{"directed":true,"multigraph":true,"nodes":[{"id":1,"value":...}],"edges":[{"from":1,"to":2,"key":0}]}
func (g *MultiDiGraph[K, N, E]) MarshalJSON() ([]byte, error) {
	nodes := make([]jsonNode[K, N], len(g.order))
	for i, id := range g.order {
		nodes[i] = jsonNode[K, N]{ID: id, Value: g.nodes[id]}
	}
	edges := g.edges
	if edges == nil {
		edges = []Edge[K, E]{}
	}
	return json.Marshal(struct {
		Directed   bool             `json:"directed"`
		Multigraph bool             `json:"multigraph"`
		Nodes      []jsonNode[K, N] `json:"nodes"`
		Edges      []Edge[K, E]     `json:"edges"`
	}{true, true, nodes, edges})
}
