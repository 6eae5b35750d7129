package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph/graph"
	"github.com/syssam/digraph/storage"
)

func orderTypes(t *testing.T) *graph.Types {
	t.Helper()
	ts, err := graph.Synthesize(graph.NewType("Order"), graph.NewType("Event"))
	require.NoError(t, err)
	return ts
}

func TestOpen(t *testing.T) {
	s, err := Open(Dialect)
	require.NoError(t, err)
	assert.Equal(t, Dialect, s.Dialect())

	_, err = Open("sqlite")
	require.ErrorContains(t, err, `unsupported dialect "sqlite"`)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	ts := orderTypes(t)
	s := New()

	id, err := s.Insert(ctx, ts.Edge, storage.Row{"next_state_id": 2, "attr_id": nil})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	_, err = s.Insert(ctx, ts.Edge, storage.Row{"next_state_id": int64(3), "attr_id": int64(7)})
	require.NoError(t, err)

	rows, err := s.Select(ctx, ts.Edge, storage.EQ("next_state_id", int64(2)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0]["next_state_id"], "integers are stored as int64")

	n, err := s.Update(ctx, ts.Edge, storage.Row{"attr_id": nil}, storage.NotNull("attr_id"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.Count(ctx, ts.Edge, storage.IsNull("attr_id"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Insert(ctx, ts.Edge, storage.Row{"color": "red"})
	require.ErrorContains(t, err, `unknown column "color"`)

	n, err = s.Delete(ctx, ts.Edge, storage.IDIn(1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	rows, err = s.Select(ctx, ts.Edge)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0]["id"])

	rows, err = s.Select(ctx, ts.Link)
	require.NoError(t, err)
	assert.Empty(t, rows, "unknown tables are empty")
}

func TestStore_Unique(t *testing.T) {
	ctx := context.Background()
	ts := orderTypes(t)
	s := New()

	_, err := s.Insert(ctx, ts.Link, storage.Row{"node_id": int64(1), "edge_id": int64(1)})
	require.NoError(t, err)
	_, err = s.Insert(ctx, ts.Link, storage.Row{"node_id": int64(1), "edge_id": int64(2)})
	require.NoError(t, err)
	_, err = s.Insert(ctx, ts.Link, storage.Row{"node_id": int64(1), "edge_id": int64(1)})
	require.ErrorIs(t, err, storage.ErrConstraint)
	_, err = s.Update(ctx, ts.Link, storage.Row{"edge_id": int64(1)}, storage.IDIn(2))
	require.ErrorIs(t, err, storage.ErrConstraint)

	// NULL sources never collide.
	for range 2 {
		_, err = s.Insert(ctx, ts.Node, storage.Row{"source_id": nil})
		require.NoError(t, err)
	}
}

func TestStore_Tx(t *testing.T) {
	ctx := context.Background()
	ts := orderTypes(t)
	s := New()
	_, err := s.Insert(ctx, ts.Node, storage.Row{"source_id": int64(1)})
	require.NoError(t, err)

	abort := errors.New("abort")
	err = s.Tx(ctx, func(ctx context.Context) error {
		b := storage.Resolve(ctx, s)
		require.NoError(t, b.Lock(ctx, ts.Node, 1))
		if _, err := b.Insert(ctx, ts.Node, storage.Row{"source_id": int64(2)}); err != nil {
			return err
		}
		if _, err := b.Delete(ctx, ts.Node, storage.EQ("source_id", int64(1))); err != nil {
			return err
		}
		return s.Tx(ctx, func(context.Context) error { return abort })
	})
	require.ErrorIs(t, err, abort)

	rows, err := s.Select(ctx, ts.Node)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0]["source_id"])

	assert.Panics(t, func() {
		_ = s.Tx(ctx, func(ctx context.Context) error {
			_, _ = storage.Resolve(ctx, s).Insert(ctx, ts.Node, storage.Row{"source_id": int64(3)})
			panic("boom")
		})
	})
	n, err := s.Count(ctx, ts.Node)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.ErrorIs(t, s.Lock(ctx, ts.Node, 42), storage.ErrNotFound)
	require.ErrorIs(t, s.Lock(ctx, ts.Link, 1), storage.ErrNotFound)
}
