// Package digraph attaches a directed graph overlay to existing record
// types. Registering a source type synthesizes three record types for it:
// an edge type pointing at the next state, a graph node wrapping each
// source instance, and the link table joining nodes and their edges.
//
//	reg := digraph.NewRegistry(store)
//	orders, err := digraph.Register(reg, orderModel, eventModel)
//	if err != nil {
//		return err
//	}
//	m := orders.For(order)
//	_, err = m.AddEdge(ctx, orders.NewEdge().SetNextState(shipped).SetAttr(event))
//	g, err := m.BuildGraph(ctx)
//
// Graph nodes are created when the registry hook observes the creation of
// a source record. Deleting a source keeps its node with a NULL source
// while the edges pointing at it are removed.
package digraph

import (
	"context"

	"github.com/syssam/digraph/storage"
)

// Entity is implemented by source and attribute records.
type Entity interface {
	GetID() int64
}

// Ref is an Entity known only by its id.
type Ref int64

// GetID returns the referenced id.
func (r Ref) GetID() int64 { return int64(r) }

// Mutation operations, re-exported from the storage package.
type (
	Op         = storage.Op
	Value      = storage.Value
	Hook       = storage.Hook
	Mutator    = storage.Mutator
	MutateFunc = storage.MutateFunc
)

// Operations of a Mutation.
const (
	OpCreate = storage.OpCreate
	OpUpdate = storage.OpUpdate
	OpDelete = storage.OpDelete
)

// Mutation is the read side of a mutation, as seen by policies.
type Mutation interface {
	// Op returns the mutation operation.
	Op() Op
	// Type returns the record type name.
	Type() string
	// ID returns the record id if exactly one record is affected.
	ID() (int64, bool)
	// Field returns the value set for the given field.
	Field(name string) (Value, bool)
}

// Policy decides whether a mutation may be applied. A nil error allows it.
type Policy interface {
	EvalMutation(context.Context, Mutation) error
}

// PolicyFunc adapts an ordinary function to a Policy.
type PolicyFunc func(context.Context, Mutation) error

// EvalMutation calls f(ctx, m).
func (f PolicyFunc) EvalMutation(ctx context.Context, m Mutation) error {
	return f(ctx, m)
}

var _ Mutation = (*storage.Mutation)(nil)
