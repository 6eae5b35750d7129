package digraph

import (
	"fmt"

	"github.com/syssam/digraph/graph"
	"github.com/syssam/digraph/storage"
)

// Column names of the synthesized record types.
var (
	columnSource    = graph.FieldSource + "_id"
	columnNextState = graph.FieldNextState + "_id"
	columnAttr      = graph.FieldAttr + "_id"
	columnNode      = graph.FieldNode + "_id"
	columnEdge      = graph.FieldEdge + "_id"
)

// Node is the graph node of one source record. SourceID is nil once the
// source was deleted.
type Node struct {
	ID       int64  `json:"id" msgpack:"id"`
	SourceID *int64 `json:"source_id,omitempty" msgpack:"source_id"`
}

// GetID returns the node id.
func (n *Node) GetID() int64 { return n.ID }

// SetID sets the node id.
func (n *Node) SetID(id int64) { n.ID = id }

// Values returns the stored columns of the node.
func (n *Node) Values() storage.Row {
	return storage.Row{columnSource: storage.RefValue(n.SourceID)}
}

// SetValues loads the node from a stored row.
func (n *Node) SetValues(row storage.Row) (err error) {
	n.SourceID, err = storage.Int64Ptr(row[columnSource])
	return err
}

// Orphan reports if the source of the node was deleted.
func (n *Node) Orphan() bool { return n.SourceID == nil }

// Edge is a directed edge from a graph node to a next state, optionally
// carrying an attribute record.
type Edge struct {
	ID          int64  `json:"id" msgpack:"id"`
	NextStateID int64  `json:"next_state_id" msgpack:"next_state_id"`
	AttrID      *int64 `json:"attr_id,omitempty" msgpack:"attr_id"`

	typ *graph.Type
}

// GetID returns the edge id.
func (e *Edge) GetID() int64 { return e.ID }

// SetID sets the edge id.
func (e *Edge) SetID(id int64) { e.ID = id }

// Values returns the stored columns of the edge.
func (e *Edge) Values() storage.Row {
	return storage.Row{
		columnNextState: e.NextStateID,
		columnAttr:      storage.RefValue(e.AttrID),
	}
}

// SetValues loads the edge from a stored row.
func (e *Edge) SetValues(row storage.Row) (err error) {
	if e.NextStateID, err = storage.Scan(row, columnNextState); err != nil {
		return err
	}
	e.AttrID, err = storage.Int64Ptr(row[columnAttr])
	return err
}

// Type returns the edge record type, or nil for edges not created by a Graph.
func (e *Edge) Type() *graph.Type { return e.typ }

// SetNextState sets the state the edge points at.
func (e *Edge) SetNextState(s Entity) *Edge {
	e.NextStateID = s.GetID()
	return e
}

// SetAttr sets the attribute of the edge.
func (e *Edge) SetAttr(a Entity) *Edge {
	id := a.GetID()
	e.AttrID = &id
	return e
}

// ClearAttr removes the attribute of the edge.
func (e *Edge) ClearAttr() *Edge {
	e.AttrID = nil
	return e
}

// AttrKey returns the attribute id, or 0 for edges without an attribute.
func (e *Edge) AttrKey() int64 {
	if e.AttrID == nil {
		return 0
	}
	return *e.AttrID
}

// Equal reports if both edges point at the same state with the same attribute.
func (e *Edge) Equal(o *Edge) bool {
	return e.NextStateID == o.NextStateID && e.AttrKey() == o.AttrKey() && (e.AttrID == nil) == (o.AttrID == nil)
}

func (e *Edge) String() string {
	if e.AttrID == nil {
		return fmt.Sprintf("Edge(id=%d, next_state=%d)", e.ID, e.NextStateID)
	}
	return fmt.Sprintf("Edge(id=%d, next_state=%d, attr=%d)", e.ID, e.NextStateID, *e.AttrID)
}

// Link associates a graph node with one of its edges.
type Link struct {
	ID     int64
	NodeID int64
	EdgeID int64
}

// GetID returns the link id.
func (l *Link) GetID() int64 { return l.ID }

// SetID sets the link id.
func (l *Link) SetID(id int64) { l.ID = id }

// Values returns the stored columns of the link.
func (l *Link) Values() storage.Row {
	return storage.Row{columnNode: l.NodeID, columnEdge: l.EdgeID}
}

// SetValues loads the link from a stored row.
func (l *Link) SetValues(row storage.Row) (err error) {
	if l.NodeID, err = storage.Scan(row, columnNode); err != nil {
		return err
	}
	l.EdgeID, err = storage.Scan(row, columnEdge)
	return err
}
