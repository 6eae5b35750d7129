package digraph_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph"
	"github.com/syssam/digraph/multigraph"
)

type triple = multigraph.Edge[int64, int64]

func TestBuildGraph_Cycle(t *testing.T) {
	for _, tr := range []digraph.Traversal{digraph.TraverseAll, digraph.TraverseFirstPath} {
		t.Run(tr.String(), func(t *testing.T) {
			e := newEnv(t, digraph.WithTraversal(tr))
			a, b := e.order(t), e.order(t)
			k1 := e.event(t)
			e.link(t, a, b, k1)
			e.link(t, b, a, k1)

			g, err := e.graph.For(a).BuildGraph(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []int64{a.ID, b.ID}, g.Nodes())
			assert.Equal(t, []triple{{From: a.ID, To: b.ID, Key: k1.ID}, {From: b.ID, To: a.ID, Key: k1.ID}}, g.Edges())
		})
	}
}

func TestBuildGraph_Branch(t *testing.T) {
	ctx := context.Background()

	t.Run("All", func(t *testing.T) {
		e := newEnv(t)
		a, b, c := e.order(t), e.order(t), e.order(t)
		k1, k2 := e.event(t), e.event(t)
		e.link(t, a, b, k1)
		e.link(t, a, c, k2)

		g, err := e.graph.For(a).BuildGraph(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{a.ID, b.ID, c.ID}, g.Nodes())
		assert.Equal(t, []triple{{From: a.ID, To: b.ID, Key: k1.ID}, {From: a.ID, To: c.ID, Key: k2.ID}}, g.Edges())
	})

	t.Run("FirstPath", func(t *testing.T) {
		e := newEnv(t, digraph.WithTraversal(digraph.TraverseFirstPath))
		a, b, c := e.order(t), e.order(t), e.order(t)
		k1, k2 := e.event(t), e.event(t)
		e.link(t, a, b, k1)
		e.link(t, a, c, k2)

		g, err := e.graph.For(a).BuildGraph(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{a.ID, b.ID}, g.Nodes())
		assert.Equal(t, []triple{{From: a.ID, To: b.ID, Key: k1.ID}}, g.Edges())
	})
}

func TestBuildGraph_All(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	a, b, c, d := e.order(t), e.order(t), e.order(t), e.order(t)
	e.link(t, a, b, nil)
	e.link(t, a, c, nil)
	e.link(t, b, c, nil)
	e.link(t, c, c, nil)
	e.link(t, d, a, nil) // not reachable from a

	g, err := e.graph.For(a).BuildGraph(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, g.Nodes())
	assert.Equal(t, []triple{
		{From: a.ID, To: b.ID, Key: 0},
		{From: a.ID, To: c.ID, Key: 0},
		{From: b.ID, To: c.ID, Key: 0},
		{From: c.ID, To: c.ID, Key: 0},
	}, g.Edges())

	// Node values are loaded from the source model.
	for _, id := range g.Nodes() {
		v, ok := g.Node(id)
		require.True(t, ok)
		require.NotNil(t, v)
		assert.Equal(t, id, v.ID)
	}
	start, _ := g.Node(a.ID)
	assert.Same(t, a, start)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"multigraph":true`)
}

func TestBuildGraph_Isolated(t *testing.T) {
	e := newEnv(t)
	lone := &order{ID: 77}
	g, err := e.graph.For(lone).BuildGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{77}, g.Nodes())
	assert.Zero(t, g.NumberOfEdges())
}

func TestBuildGraph_MaxDepth(t *testing.T) {
	ctx := context.Background()
	for _, tr := range []digraph.Traversal{digraph.TraverseAll, digraph.TraverseFirstPath} {
		t.Run(tr.String(), func(t *testing.T) {
			e := newEnv(t, digraph.WithTraversal(tr), digraph.WithMaxDepth(1))
			a, b, c := e.order(t), e.order(t), e.order(t)
			e.link(t, a, b, nil)
			e.link(t, b, c, nil)

			_, err := e.graph.For(a).BuildGraph(ctx)
			require.ErrorIs(t, err, digraph.ErrMaxDepth)
			var depth *digraph.DepthError
			require.ErrorAs(t, err, &depth)
			assert.Equal(t, 1, depth.Max)
			assert.Equal(t, b.ID, depth.Node)

			// Leaves at the limit are fine.
			g, err := e.graph.For(b).BuildGraph(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, g.NumberOfEdges())
		})
	}
}

func TestBuildGraph_MaxDepthShortestPath(t *testing.T) {
	e := newEnv(t, digraph.WithMaxDepth(2))
	a, b, c, d := e.order(t), e.order(t), e.order(t), e.order(t)
	e.link(t, a, b, nil)
	e.link(t, a, c, nil)
	e.link(t, b, c, nil)
	e.link(t, c, d, nil)

	// c is one hop from a even though a -> b -> c is walked as well.
	g, err := e.graph.For(a).BuildGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID, d.ID}, g.Nodes())
	assert.Equal(t, []triple{
		{From: a.ID, To: b.ID, Key: 0},
		{From: a.ID, To: c.ID, Key: 0},
		{From: b.ID, To: c.ID, Key: 0},
		{From: c.ID, To: d.ID, Key: 0},
	}, g.Edges())
}

func TestBuildGraph_Canceled(t *testing.T) {
	e := newEnv(t)
	a, b := e.order(t), e.order(t)
	e.link(t, a, b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.graph.For(a).BuildGraph(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTraversal(t *testing.T) {
	for s, want := range map[string]digraph.Traversal{
		"":           digraph.TraverseAll,
		"all":        digraph.TraverseAll,
		"first_path": digraph.TraverseFirstPath,
		"first-path": digraph.TraverseFirstPath,
	} {
		got, err := digraph.ParseTraversal(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := digraph.ParseTraversal("bfs")
	assert.Error(t, err)
	assert.Equal(t, "first_path", digraph.TraverseFirstPath.String())
}
