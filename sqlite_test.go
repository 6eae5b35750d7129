package digraph_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/digraph"
	"github.com/syssam/digraph/dialect"
	"github.com/syssam/digraph/dialect/sql"
	"github.com/syssam/digraph/dialect/sql/schema"
	"github.com/syssam/digraph/storage"
	"github.com/syssam/digraph/storage/sqlstore"
)

// newSQLiteEnv returns an env on a migrated in-memory SQLite database.
// The order and event tables are created up front, as applications own them.
func newSQLiteEnv(t *testing.T, opts ...digraph.Option) *env {
	t.Helper()
	ctx := context.Background()
	drv, err := sql.Open(dialect.SQLite, fmt.Sprintf("file:%s?mode=memory&_pragma=foreign_keys(1)", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)
	drv.DB().SetMaxOpenConns(1)
	t.Cleanup(func() { drv.Close() })
	for _, stmt := range []string{
		"CREATE TABLE `orders` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT)",
		"CREATE TABLE `events` (`id` integer NOT NULL PRIMARY KEY AUTOINCREMENT)",
	} {
		_, err := drv.DB().ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	e := newBackendEnv(t, sqlstore.New(drv), opts...)
	m, err := schema.NewMigrate(drv, schema.WithExternalForeignKeys(true))
	require.NoError(t, err)
	require.NoError(t, m.Create(ctx, e.reg.Types()...))
	return e
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	e := newSQLiteEnv(t)
	a, b, c := e.order(t), e.order(t), e.order(t)
	ev := e.event(t)

	ab := e.link(t, a, b, ev)
	e.link(t, b, c, nil)
	e.link(t, c, a, nil)
	ac := e.link(t, a, c, nil)

	_, err := e.graph.For(a).AddEdge(ctx, e.graph.NewEdge().SetNextState(b).SetAttr(ev))
	require.ErrorIs(t, err, digraph.ErrDuplicateEdge)

	g, err := e.graph.For(a).BuildGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, g.Nodes())
	assert.Equal(t, 4, g.NumberOfEdges())
	assert.True(t, g.HasEdge(a.ID, b.ID, ev.ID))
	v, ok := g.Node(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.ID, v.ID)

	t.Run("AttrDeleted", func(t *testing.T) {
		require.NoError(t, e.events.Delete(ctx, ev))
		got, err := e.graph.Edge(ctx, ab.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AttrID)
	})

	t.Run("SourceDeleted", func(t *testing.T) {
		require.NoError(t, e.orders.Delete(ctx, b))
		edges, err := e.graph.For(a).Edges(ctx)
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, ac.ID, edges[0].ID)

		orphans, err := e.graph.Nodes(ctx, storage.IsNull("source_id"))
		require.NoError(t, err)
		assert.Len(t, orphans, 1)
	})

	t.Run("RemoveEdge", func(t *testing.T) {
		require.NoError(t, e.graph.For(a).RemoveEdge(ctx, ac))
		edges, err := e.graph.For(a).Edges(ctx)
		require.NoError(t, err)
		assert.Empty(t, edges)
		_, err = e.graph.Edge(ctx, ac.ID)
		assert.True(t, digraph.IsNotFound(err))
	})
}
