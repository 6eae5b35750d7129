package lrucache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph"
)

var _ digraph.Cache = (*Cache)(nil)

func TestCache(t *testing.T) {
	ctx := context.Background()
	c, err := New(2)
	require.NoError(t, err)

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	v, _ = c.Get(ctx, "a")
	assert.Equal(t, []byte("1"), v)

	// "b" is the least recently used entry.
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	v, _ = c.Get(ctx, "b")
	assert.Nil(t, v)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete(ctx, "a"))
	v, _ = c.Get(ctx, "a")
	assert.Nil(t, v)

	require.NoError(t, c.Clear(ctx))
	assert.Zero(t, c.Len())
}

func TestCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, err := New(8)
	require.NoError(t, err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, _ := c.Get(ctx, "k")
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	v, _ = c.Get(ctx, "k")
	assert.Nil(t, v)
	assert.Zero(t, c.Len(), "expired entries are evicted on read")
}

func TestCache_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	c, err := New(8)
	require.NoError(t, err)
	for _, k := range []string{"order_di_graph_edges:edges:1", "order_di_graph_edges:edges:2", "invoice_di_graph_edges:edges:1"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	require.NoError(t, c.DeletePrefix(ctx, "order_di_graph_edges:"))
	assert.Equal(t, 1, c.Len())
	v, _ := c.Get(ctx, "invoice_di_graph_edges:edges:1")
	assert.NotNil(t, v)
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}
