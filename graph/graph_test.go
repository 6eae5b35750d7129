package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph/dialect/sqlschema"
)

func TestNewType(t *testing.T) {
	typ := NewType("Order")
	assert.Equal(t, "orders", typ.Table)
	assert.True(t, typ.External)
	assert.Equal(t, []string{"id"}, typ.Columns())

	typ = NewType("Order", sqlschema.Table("shop_orders"))
	assert.Equal(t, "shop_orders", typ.Table)
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "order_di_graph", Snake("OrderDiGraph"))
	assert.Equal(t, "order_di_graph_edges", Table("OrderDiGraphEdge"))
	assert.Equal(t, "order_di_graph_links", Table("OrderDiGraphLink"))
}

func TestSynthesize(t *testing.T) {
	ts, err := Synthesize(NewType("Order"), NewType("Event"))
	require.NoError(t, err)

	t.Run("Edge", func(t *testing.T) {
		e := ts.Edge
		assert.Equal(t, "OrderDiGraphEdge", e.Name)
		assert.Equal(t, "order_di_graph_edges", e.Table)
		assert.False(t, e.External)
		assert.Equal(t, []string{"id", "next_state_id", "attr_id"}, e.Columns())

		next, ok := e.Field(FieldNextState)
		require.True(t, ok)
		assert.Equal(t, "Order", next.Ref)
		assert.False(t, next.Optional)
		assert.Equal(t, sqlschema.Cascade, sqlschema.From(next.Annotations).OnDelete)

		attr, ok := e.Field(FieldAttr)
		require.True(t, ok)
		assert.Equal(t, "Event", attr.Ref)
		assert.True(t, attr.Optional)
		assert.True(t, e.Nullable("attr_id"))
		assert.Equal(t, sqlschema.SetNull, sqlschema.From(attr.Annotations).OnDelete)
	})

	t.Run("Node", func(t *testing.T) {
		n := ts.Node
		assert.Equal(t, "OrderDiGraph", n.Name)
		assert.Equal(t, "order_di_graphs", n.Table)
		src, ok := n.Field(FieldSource)
		require.True(t, ok)
		assert.True(t, src.Optional)
		assert.True(t, src.Unique)
		assert.Equal(t, sqlschema.SetNull, sqlschema.From(src.Annotations).OnDelete)

		e, ok := n.Edge(EdgeEdges)
		require.True(t, ok)
		assert.Equal(t, "OrderDiGraphEdge", e.Type)
		assert.Equal(t, "OrderDiGraphLink", e.Through)

		idx := n.UniqueIndexes()
		require.Len(t, idx, 1)
		assert.Equal(t, []string{"source_id"}, idx[0].Columns)
	})

	t.Run("Link", func(t *testing.T) {
		l := ts.Link
		assert.Equal(t, "OrderDiGraphLink", l.Name)
		assert.Equal(t, []string{"id", "node_id", "edge_id"}, l.Columns())
		require.Len(t, l.Indexes, 1)
		assert.True(t, l.Indexes[0].Unique)
		assert.Equal(t, []string{"node_id", "edge_id"}, l.Indexes[0].Columns)
	})

	t.Run("Lookup", func(t *testing.T) {
		typ, ok := ts.Lookup("OrderDiGraphLink")
		require.True(t, ok)
		assert.Same(t, ts.Link, typ)
		_, ok = ts.Lookup("Missing")
		assert.False(t, ok)
	})
}

func TestSynthesize_SelfAttribute(t *testing.T) {
	order := NewType("Order")
	ts, err := Synthesize(order, order)
	require.NoError(t, err)
	attr, _ := ts.Edge.Field(FieldAttr)
	assert.Equal(t, "Order", attr.Ref)
}

func TestValidate(t *testing.T) {
	typ := NewType("Order")
	typ.Fields = append(typ.Fields, EdgeType(typ, typ).Fields...)
	typ.Fields = append(typ.Fields, EdgeType(typ, typ).Fields[0])
	err := typ.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate column "next_state_id"`)

	assert.Error(t, (&Type{}).Validate())
	assert.Panics(t, func() { typ.Column("missing") })
}
