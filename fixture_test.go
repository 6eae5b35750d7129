package digraph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph"
	"github.com/syssam/digraph/storage"
	"github.com/syssam/digraph/storage/memstore"
)

// order is the source record of the test graphs.
type order struct{ ID int64 }

func (o *order) GetID() int64                { return o.ID }
func (o *order) SetID(id int64)              { o.ID = id }
func (o *order) Values() storage.Row         { return storage.Row{} }
func (o *order) SetValues(storage.Row) error { return nil }

// event is the attribute record of the test graphs.
type event struct{ ID int64 }

func (e *event) GetID() int64                { return e.ID }
func (e *event) SetID(id int64)              { e.ID = id }
func (e *event) Values() storage.Row         { return storage.Row{} }
func (e *event) SetValues(storage.Row) error { return nil }

type env struct {
	store  storage.Backend
	reg    *digraph.Registry
	orders *storage.Repository[order, *order]
	events *storage.Repository[event, *event]
	graph  *digraph.Graph[*order, *event]
}

func newEnv(t *testing.T, opts ...digraph.Option) *env {
	t.Helper()
	return newBackendEnv(t, memstore.New(), opts...)
}

// newBackendEnv registers the order graph on the given backend. The order
// and event repositories emit the lifecycle events of their records.
func newBackendEnv(t *testing.T, s storage.Backend, opts ...digraph.Option) *env {
	t.Helper()
	reg := digraph.NewRegistry(s)
	e := &env{store: s, reg: reg}
	orders := digraph.NewModel[*order]("Order", e.loadOrders)
	events := digraph.NewModel[*event]("Event", nil)
	e.orders = storage.NewRepository[order](s, orders.Type)
	e.events = storage.NewRepository[event](s, events.Type)
	e.orders.Use(reg.Hook())
	e.events.Use(reg.Hook())
	g, err := digraph.Register(reg, orders, events, opts...)
	require.NoError(t, err)
	e.graph = g
	return e
}

func (e *env) loadOrders(ctx context.Context, ids []int64) ([]*order, error) {
	return e.orders.Filter(ctx, storage.IDIn(ids...))
}

func (e *env) order(t *testing.T) *order {
	t.Helper()
	o := &order{}
	require.NoError(t, e.orders.Create(context.Background(), o))
	return o
}

func (e *env) event(t *testing.T) *event {
	t.Helper()
	ev := &event{}
	require.NoError(t, e.events.Create(context.Background(), ev))
	return ev
}

// link adds the edge from -> to, with an optional attribute.
func (e *env) link(t *testing.T, from, to *order, attr *event) *digraph.Edge {
	t.Helper()
	edge := e.graph.NewEdge().SetNextState(to)
	if attr != nil {
		edge.SetAttr(attr)
	}
	added, err := e.graph.For(from).AddEdge(context.Background(), edge)
	require.NoError(t, err)
	return added
}
