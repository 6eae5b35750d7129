package graph

import (
	"github.com/syssam/digraph/dialect/sqlschema"
	"github.com/syssam/digraph/schema/edge"
	"github.com/syssam/digraph/schema/field"
)

// Name suffixes of the synthesized record types.
const (
	EdgeSuffix = "DiGraphEdge"
	NodeSuffix = "DiGraph"
	LinkSuffix = "DiGraphLink"
)

// Field and edge names of the synthesized record types.
const (
	FieldNextState = "next_state"
	FieldAttr      = "attr"
	FieldSource    = "source"
	FieldNode      = "node"
	FieldEdge      = "edge"
	EdgeEdges      = "edges"
)

// EdgeType synthesizes the edge record type of a state type. An edge
// points at its next state and optionally carries an attribute:
//
//	{State}DiGraphEdge { id, next_state: ref(state), attr: optional ref(attr) }
//
// Deleting the next state deletes the edge. Deleting the attribute clears it.
func EdgeType(state, attr *Type) *Type {
	name := state.Name + EdgeSuffix
	return &Type{
		Name:  name,
		Table: Table(name),
		Fields: []*field.Descriptor{
			field.Ref(FieldNextState, state.Name).
				Immutable().
				Annotations(sqlschema.OnDelete(sqlschema.Cascade)).
				Descriptor(),
			field.Ref(FieldAttr, attr.Name).
				Optional().
				Annotations(sqlschema.OnDelete(sqlschema.SetNull)).
				Descriptor(),
		},
	}
}

// NodeType synthesizes the graph node record type of a source type:
//
//	{Source}DiGraph { id, source: optional unique ref(source), edges: m2m ref(edges) }
//
// The node survives the deletion of its source with a NULL reference.
func NodeType(source, edges *Type) *Type {
	name := source.Name + NodeSuffix
	return &Type{
		Name:  name,
		Table: Table(name),
		Fields: []*field.Descriptor{
			field.Ref(FieldSource, source.Name).
				Optional().
				Unique().
				Annotations(sqlschema.OnDelete(sqlschema.SetNull)).
				Descriptor(),
		},
		Edges: []*edge.Descriptor{
			edge.To(EdgeEdges, edges.Name).
				Through(source.Name + LinkSuffix).
				Descriptor(),
		},
	}
}

// LinkType synthesizes the join record type that stores the many-to-many
// association between graph nodes and their edges:
//
//	{Source}DiGraphLink { id, node: ref(node), edge: ref(edge) } unique (node, edge)
func LinkType(node, edges *Type) *Type {
	e, _ := node.Edge(EdgeEdges)
	name := node.Name[:len(node.Name)-len(NodeSuffix)] + LinkSuffix
	if e != nil && e.Through != "" {
		name = e.Through
	}
	t := &Type{
		Name:  name,
		Table: Table(name),
		Fields: []*field.Descriptor{
			field.Ref(FieldNode, node.Name).
				Immutable().
				Annotations(sqlschema.OnDelete(sqlschema.Cascade)).
				Descriptor(),
			field.Ref(FieldEdge, edges.Name).
				Immutable().
				Annotations(sqlschema.OnDelete(sqlschema.Cascade)).
				Descriptor(),
		},
	}
	t.Indexes = []*Index{{
		Name:    t.Table + "_node_edge",
		Columns: []string{t.Column(FieldNode), t.Column(FieldEdge)},
		Unique:  true,
	}}
	return t
}

// Types groups the three record types synthesized for one source type.
type Types struct {
	Source *Type
	Attr   *Type
	Edge   *Type
	Node   *Type
	Link   *Type
}

// Synthesize builds the record types of a source type whose edges carry
// attributes of type attr.
func Synthesize(source, attr *Type) (*Types, error) {
	ts := &Types{Source: source, Attr: attr}
	ts.Edge = EdgeType(source, attr)
	ts.Node = NodeType(source, ts.Edge)
	ts.Link = LinkType(ts.Node, ts.Edge)
	for _, t := range ts.Owned() {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// Owned returns the synthesized types in creation order.
func (ts *Types) Owned() []*Type {
	return []*Type{ts.Edge, ts.Node, ts.Link}
}

// Lookup returns the type with the given name among the source, attribute
// and synthesized types.
func (ts *Types) Lookup(name string) (*Type, bool) {
	for _, t := range []*Type{ts.Source, ts.Attr, ts.Edge, ts.Node, ts.Link} {
		if t != nil && t.Name == name {
			return t, true
		}
	}
	return nil, false
}
