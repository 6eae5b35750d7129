package digraph

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/syssam/digraph/dialect/sqlschema"
	"github.com/syssam/digraph/graph"
	"github.com/syssam/digraph/schema"
	"github.com/syssam/digraph/storage"
)

// Model describes a caller owned record type that takes part in a graph,
// either as the source of graph nodes or as the attribute of edges.
type Model[T Entity] struct {
	// Type is the record type. Its table is referenced by the synthesized
	// types but never migrated.
	Type *graph.Type
	// Load returns the records with the given ids. It is used to fill the
	// node values of built graphs and may be nil.
	Load func(ctx context.Context, ids []int64) ([]T, error)
}

// NewModel returns a model of the named type. See graph.NewType for the
// table naming.
func NewModel[T Entity](name string, load func(context.Context, []int64) ([]T, error), ants ...schema.Annotation) Model[T] {
	return Model[T]{Type: graph.NewType(name, ants...), Load: load}
}

// RefModel returns a model whose records are only known by id.
func RefModel(name string, table string) Model[Ref] {
	var ants []schema.Annotation
	if table != "" {
		ants = append(ants, sqlschema.Table(table))
	}
	return NewModel(name, func(_ context.Context, ids []int64) ([]Ref, error) {
		refs := make([]Ref, len(ids))
		for i, id := range ids {
			refs[i] = Ref(id)
		}
		return refs, nil
	}, ants...)
}

// Graph is the directed graph overlay of one source type S whose edges
// carry attributes of type A.
type Graph[S, A Entity] struct {
	reg    *Registry
	source Model[S]
	attr   Model[A]
	types  *graph.Types
	opts   options
	log    *slog.Logger

	nodes *storage.Repository[Node, *Node]
	edges *storage.Repository[Edge, *Edge]
	links *storage.Repository[Link, *Link]

	group singleflight.Group
}

// Register synthesizes the graph record types of the source model and
// subscribes the graph to the lifecycle events of its source and attribute
// records. Registering the same source type twice fails with
// ErrDuplicateRegistration.
func Register[S, A Entity](r *Registry, source Model[S], attr Model[A], opts ...Option) (*Graph[S, A], error) {
	types, err := graph.Synthesize(source.Type, attr.Type)
	if err != nil {
		return nil, err
	}
	o := r.graphOptions(opts)
	if o.accessor == "" {
		o.accessor = graph.Snake(source.Type.Name) + "_graph"
	}
	g := &Graph[S, A]{
		reg:    r,
		source: source,
		attr:   attr,
		types:  types,
		opts:   o,
		log:    o.log.With(slog.String("graph", types.Node.Name)),
		nodes:  storage.NewRepository[Node](r.backend, types.Node),
		edges:  storage.NewRepository[Edge](r.backend, types.Edge),
		links:  storage.NewRepository[Link](r.backend, types.Link),
	}
	g.edges.Use(o.hooks...)
	if err := r.add(g); err != nil {
		return nil, err
	}
	d := r.Dispatcher()
	d.On(OpCreate, source.Type.Name, g.sourceCreated)
	d.On(OpDelete, source.Type.Name, g.sourceDeleted)
	d.On(OpDelete, attr.Type.Name, g.attrDeleted)
	g.log.Debug("digraph: registered graph",
		slog.String("source", source.Type.Name),
		slog.String("attr", attr.Type.Name),
		slog.String("accessor", o.accessor),
	)
	return g, nil
}

// MustRegister is like Register but panics on error.
func MustRegister[S, A Entity](r *Registry, source Model[S], attr Model[A], opts ...Option) *Graph[S, A] {
	g, err := Register(r, source, attr, opts...)
	if err != nil {
		panic(err)
	}
	return g
}

// Types returns the source, attribute and synthesized types of the graph.
func (g *Graph[S, A]) Types() *graph.Types { return g.types }

// Accessor returns the name of the graph on its source type.
func (g *Graph[S, A]) Accessor() string { return g.opts.accessor }

// NewEdge returns a new, unsaved edge of the graph.
func (g *Graph[S, A]) NewEdge() *Edge {
	return &Edge{typ: g.types.Edge}
}

// For returns the manager of the graph bound to the given source record.
func (g *Graph[S, A]) For(source S) *Manager[S, A] {
	return &Manager[S, A]{g: g, source: source, bound: true}
}

// Manager returns the unbound manager of the graph.
func (g *Graph[S, A]) Manager() *Manager[S, A] {
	return &Manager[S, A]{g: g}
}

// Nodes returns the graph nodes matching the given predicates.
func (g *Graph[S, A]) Nodes(ctx context.Context, preds ...storage.Predicate) ([]*Node, error) {
	nodes, err := g.nodes.Filter(ctx, preds...)
	if err != nil {
		return nil, NewQueryError(g.types.Node.Name, "nodes", err)
	}
	return nodes, nil
}

// Edge returns the edge with the given id.
func (g *Graph[S, A]) Edge(ctx context.Context, id int64) (*Edge, error) {
	e, err := g.edges.GetOrNone(ctx, storage.EQ(graph.IDColumn, id))
	switch {
	case err != nil:
		return nil, NewQueryError(g.types.Edge.Name, "edge", err)
	case e == nil:
		return nil, NewNotFoundErrorWithID(g.types.Edge.Name, id)
	}
	e.typ = g.types.Edge
	return e, nil
}

// EnsureNode returns the graph node of the source id, creating it if it
// does not exist. Concurrent calls for the same source create one node.
func (g *Graph[S, A]) EnsureNode(ctx context.Context, sourceID int64) (*Node, error) {
	v, err, _ := g.group.Do(strconv.FormatInt(sourceID, 10), func() (any, error) {
		return g.ensureNode(ctx, sourceID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Node), nil
}

func (g *Graph[S, A]) ensureNode(ctx context.Context, sourceID int64) (*Node, error) {
	var node *Node
	err := g.reg.Tx(ctx, func(ctx context.Context) error {
		n, err := g.nodes.GetOrNone(ctx, storage.EQ(columnSource, sourceID))
		if err != nil || n != nil {
			node = n
			return err
		}
		node = &Node{SourceID: &sourceID}
		return g.nodes.Create(ctx, node)
	})
	if errors.Is(err, storage.ErrConstraint) {
		// Created by another process since the lookup.
		node, err = g.nodes.GetOrNone(ctx, storage.EQ(columnSource, sourceID))
		if err == nil && node == nil {
			err = NewNotFoundErrorWithID(g.types.Node.Name, sourceID)
		}
	}
	if err != nil {
		return nil, NewMutationError(g.types.Node.Name, "create", err)
	}
	return node, nil
}

func (g *Graph[S, A]) sourceCreated(ctx context.Context, e Event) error {
	n, err := g.EnsureNode(ctx, e.EntityID)
	if err != nil {
		return err
	}
	g.log.DebugContext(ctx, "digraph: node created", slog.Int64("source", e.EntityID), slog.Int64("node", n.ID))
	return nil
}

// sourceDeleted keeps the node of the deleted source with a NULL source and
// removes the edges pointing at the source from all nodes.
func (g *Graph[S, A]) sourceDeleted(ctx context.Context, e Event) error {
	err := g.reg.Tx(ctx, func(ctx context.Context) error {
		if _, err := g.nodes.UpdateWhere(ctx, storage.Row{columnSource: nil}, storage.EQ(columnSource, e.EntityID)); err != nil {
			return err
		}
		ids, err := g.edges.IDs(ctx, storage.EQ(columnNextState, e.EntityID))
		if err != nil {
			return err
		}
		if err := g.deleteEdges(ctx, ids); err != nil {
			return err
		}
		if g.opts.pruneOrphans {
			return g.pruneOrphans(ctx)
		}
		return nil
	})
	if err != nil {
		return NewMutationError(g.types.Node.Name, "delete", err)
	}
	g.invalidateAll(ctx)
	return nil
}

// attrDeleted clears the attribute of the edges that carry it.
func (g *Graph[S, A]) attrDeleted(ctx context.Context, e Event) error {
	n, err := g.edges.UpdateWhere(ctx, storage.Row{columnAttr: nil}, storage.EQ(columnAttr, e.EntityID))
	if err != nil {
		return NewMutationError(g.types.Edge.Name, "update", err)
	}
	if n > 0 {
		g.invalidateAll(ctx)
	}
	return nil
}

// deleteEdges removes the edges and their links.
func (g *Graph[S, A]) deleteEdges(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := g.links.DeleteWhere(ctx, storage.In(columnEdge, int64s(ids)...)); err != nil {
		return err
	}
	_, err := g.edges.DeleteWhere(ctx, storage.IDIn(ids...))
	return err
}

func (g *Graph[S, A]) pruneOrphans(ctx context.Context) error {
	orphans, err := g.nodes.IDs(ctx, storage.IsNull(columnSource))
	if err != nil || len(orphans) == 0 {
		return err
	}
	links, err := g.links.Filter(ctx, storage.In(columnNode, int64s(orphans)...))
	if err != nil {
		return err
	}
	if _, err := g.links.DeleteWhere(ctx, storage.In(columnNode, int64s(orphans)...)); err != nil {
		return err
	}
	var unlinked []int64
	for _, l := range links {
		linked, err := g.links.Exist(ctx, storage.EQ(columnEdge, l.EdgeID))
		if err != nil {
			return err
		}
		if !linked {
			unlinked = append(unlinked, l.EdgeID)
		}
	}
	if len(unlinked) > 0 {
		if _, err := g.edges.DeleteWhere(ctx, storage.IDIn(unlinked...)); err != nil {
			return err
		}
	}
	_, err = g.nodes.DeleteWhere(ctx, storage.IDIn(orphans...))
	return err
}

func (g *Graph[S, A]) cacheKey(sourceID int64) CacheKey {
	return CacheKey{Table: g.types.Edge.Table, Operation: "edges", Source: sourceID}
}

func (g *Graph[S, A]) invalidate(ctx context.Context, sourceID int64) {
	if g.opts.cache == nil {
		return
	}
	if err := g.opts.cache.Delete(ctx, g.cacheKey(sourceID).String()); err != nil {
		g.log.WarnContext(ctx, "digraph: cache delete failed", slog.Any("error", err))
	}
}

func (g *Graph[S, A]) invalidateAll(ctx context.Context) {
	if g.opts.cache == nil {
		return
	}
	if err := g.opts.cache.DeletePrefix(ctx, g.cacheKey(0).Prefix()); err != nil {
		g.log.WarnContext(ctx, "digraph: cache delete failed", slog.Any("error", err))
	}
}

func int64s(ids []int64) []any {
	vs := make([]any, len(ids))
	for i, id := range ids {
		vs[i] = id
	}
	return vs
}
