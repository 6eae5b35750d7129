package digraph

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/digraph/contrib/dataloader"
	"github.com/syssam/digraph/multigraph"
	"github.com/syssam/digraph/storage"
)

// Manager gives access to the graph of one source record. The manager
// returned by Graph.Manager is not bound to a record, and all operations
// that read or write edges fail on it with ErrNotBound.
type Manager[S, A Entity] struct {
	g      *Graph[S, A]
	source S
	bound  bool
}

// Bound reports if the manager is bound to a source record.
func (m *Manager[S, A]) Bound() bool { return m.bound }

// Source returns the source record of a bound manager.
func (m *Manager[S, A]) Source() (S, bool) { return m.source, m.bound }

// Graph returns the graph of the manager.
func (m *Manager[S, A]) Graph() *Graph[S, A] { return m.g }

// Node returns the graph node of the bound source record.
func (m *Manager[S, A]) Node(ctx context.Context) (*Node, error) {
	if !m.bound {
		return nil, ErrNotBound
	}
	return m.node(ctx)
}

func (m *Manager[S, A]) node(ctx context.Context) (*Node, error) {
	id := m.source.GetID()
	n, err := m.g.nodes.GetOrNone(ctx, storage.EQ(columnSource, id))
	switch {
	case err != nil:
		return nil, NewQueryError(m.g.types.Node.Name, "node", err)
	case n == nil:
		return nil, NewNotFoundErrorWithID(m.g.types.Node.Name, id)
	}
	return n, nil
}

// Edges returns the edges of the bound graph node, ordered by id.
func (m *Manager[S, A]) Edges(ctx context.Context) ([]*Edge, error) {
	if !m.bound {
		return nil, ErrNotBound
	}
	id := m.source.GetID()
	if es, ok := m.cached(ctx, id); ok {
		return es, nil
	}
	es, err := m.g.outgoing(ctx, id)
	if err != nil {
		return nil, err
	}
	m.store(ctx, id, es)
	return es, nil
}

// AddEdge validates the edge, saves it and attaches it to the graph node
// of the bound source. The checks run in order: the edge has a next state,
// the edge belongs to this graph, the edge is new, and no equal edge is
// attached to the node yet.
func (m *Manager[S, A]) AddEdge(ctx context.Context, e *Edge) (*Edge, error) {
	if !m.bound {
		return nil, ErrNotBound
	}
	if e.NextStateID == 0 {
		return nil, ErrIncompleteEdge
	}
	if want := m.g.types.Edge; e.typ != want {
		got := "<nil>"
		if e.typ != nil {
			got = e.typ.Name
		}
		return nil, &TypeMismatchError{Want: want.Name, Got: got}
	}
	if e.ID != 0 {
		return nil, &AlreadyExistsError{Type: e.typ.Name, ID: e.ID}
	}
	if err := m.eval(ctx, storage.NewMutation(OpCreate, e.typ, nil, e.Values())); err != nil {
		return nil, err
	}
	err := m.g.reg.Tx(ctx, func(ctx context.Context) error {
		n, err := m.node(ctx)
		if err != nil {
			return err
		}
		// Serializes concurrent additions to the same node.
		if err := m.g.nodes.Lock(ctx, n.ID); err != nil {
			return err
		}
		attached, err := m.g.edgesOf(ctx, []int64{n.ID})
		if err != nil {
			return err
		}
		for _, a := range attached[n.ID] {
			if a.Equal(e) {
				return &DuplicateEdgeError{NextState: e.NextStateID, Attr: e.AttrID, Existing: a.ID}
			}
		}
		if err := m.g.edges.Create(ctx, e); err != nil {
			return err
		}
		return m.g.links.Create(ctx, &Link{NodeID: n.ID, EdgeID: e.ID})
	})
	if err != nil {
		e.ID = 0
		if isEdgeError(err) {
			return nil, err
		}
		return nil, NewMutationError(e.typ.Name, "create", err)
	}
	m.g.invalidate(ctx, m.source.GetID())
	m.g.log.DebugContext(ctx, "digraph: edge added",
		slog.Int64("source", m.source.GetID()),
		slog.Int64("edge", e.ID),
		slog.Int64("next_state", e.NextStateID),
	)
	return e, nil
}

// RemoveEdge detaches the edge from the graph node of the bound source
// and deletes it.
func (m *Manager[S, A]) RemoveEdge(ctx context.Context, e *Edge) error {
	if !m.bound {
		return ErrNotBound
	}
	if e.ID == 0 {
		return ErrEdgeNotFound
	}
	if err := m.eval(ctx, storage.NewMutation(OpDelete, m.g.types.Edge, []int64{e.ID}, e.Values())); err != nil {
		return err
	}
	err := m.g.reg.Tx(ctx, func(ctx context.Context) error {
		n, err := m.node(ctx)
		if err != nil {
			return err
		}
		if err := m.g.nodes.Lock(ctx, n.ID); err != nil {
			return err
		}
		removed, err := m.g.links.DeleteWhere(ctx, storage.EQ(columnNode, n.ID), storage.EQ(columnEdge, e.ID))
		if err != nil {
			return err
		}
		if removed == 0 {
			return ErrEdgeNotFound
		}
		linked, err := m.g.links.Exist(ctx, storage.EQ(columnEdge, e.ID))
		if err != nil || linked {
			return err
		}
		_, err = m.g.edges.DeleteWhere(ctx, storage.IDIn(e.ID))
		return err
	})
	if err != nil {
		if isEdgeError(err) {
			return err
		}
		return NewMutationError(m.g.types.Edge.Name, "delete", err)
	}
	m.g.invalidate(ctx, m.source.GetID())
	return nil
}

// BuildGraph walks the edges reachable from the bound source and returns
// them as a directed multigraph keyed by source id. Edge keys are attribute
// ids, 0 for edges without an attribute. The walk strategy is set with
// WithTraversal.
func (m *Manager[S, A]) BuildGraph(ctx context.Context) (*multigraph.MultiDiGraph[int64, S, int64], error) {
	if !m.bound {
		return nil, ErrNotBound
	}
	w := &walker[S, A]{
		m:        m,
		out:      multigraph.New[int64, S, int64](),
		maxDepth: m.g.opts.maxDepth,
	}
	start := m.source.GetID()
	w.out.AddNode(start, m.source)
	var err error
	switch m.g.opts.traversal {
	case TraverseFirstPath:
		err = w.firstPath(ctx, start)
	default:
		err = w.all(ctx, start)
	}
	if err != nil {
		return nil, err
	}
	if err := w.load(ctx, start); err != nil {
		return nil, err
	}
	return w.out, nil
}

func (m *Manager[S, A]) eval(ctx context.Context, mu *storage.Mutation) error {
	p := m.g.opts.policy
	if p == nil {
		return nil
	}
	if err := p.EvalMutation(ctx, mu); err != nil {
		return &PrivacyError{Entity: mu.Type(), Op: mu.Op().String(), Err: err}
	}
	return nil
}

func (m *Manager[S, A]) cached(ctx context.Context, sourceID int64) ([]*Edge, bool) {
	c := m.g.opts.cache
	if c == nil {
		return nil, false
	}
	data, err := c.Get(ctx, m.g.cacheKey(sourceID).String())
	if err != nil || data == nil {
		if err != nil {
			m.g.log.WarnContext(ctx, "digraph: cache get failed", slog.Any("error", err))
		}
		return nil, false
	}
	var es []*Edge
	if err := msgpack.Unmarshal(data, &es); err != nil {
		m.g.log.WarnContext(ctx, "digraph: cache decode failed", slog.Any("error", err))
		return nil, false
	}
	for _, e := range es {
		e.typ = m.g.types.Edge
	}
	return es, true
}

func (m *Manager[S, A]) store(ctx context.Context, sourceID int64, es []*Edge) {
	c := m.g.opts.cache
	if c == nil {
		return
	}
	// Reads inside a transaction may see uncommitted edges.
	if _, ok := storage.TxFromContext(ctx, m.g.reg.backend); ok {
		return
	}
	data, err := msgpack.Marshal(es)
	if err == nil {
		err = c.Set(ctx, m.g.cacheKey(sourceID).String(), data, m.g.opts.cacheTTL)
	}
	if err != nil {
		m.g.log.WarnContext(ctx, "digraph: cache set failed", slog.Any("error", err))
	}
}

// outgoing returns the edges of the graph node of the source id. Sources
// without a graph node have no edges.
func (g *Graph[S, A]) outgoing(ctx context.Context, sourceID int64) ([]*Edge, error) {
	n, err := g.nodes.GetOrNone(ctx, storage.EQ(columnSource, sourceID))
	if err != nil {
		return nil, NewQueryError(g.types.Node.Name, "node", err)
	}
	if n == nil {
		return nil, nil
	}
	byNode, err := g.edgesOf(ctx, []int64{n.ID})
	if err != nil {
		return nil, err
	}
	return byNode[n.ID], nil
}

// edgesOf returns the edges linked to the given nodes, grouped by node id
// and ordered by edge id.
func (g *Graph[S, A]) edgesOf(ctx context.Context, nodeIDs []int64) (map[int64][]*Edge, error) {
	links, err := g.links.Filter(ctx, storage.In(columnNode, int64s(nodeIDs)...))
	if err != nil {
		return nil, NewQueryError(g.types.Link.Name, "edges", err)
	}
	if len(links) == 0 {
		return map[int64][]*Edge{}, nil
	}
	ids := make([]int64, len(links))
	for i, l := range links {
		ids[i] = l.EdgeID
	}
	es, err := g.edges.Filter(ctx, storage.IDIn(ids...))
	if err != nil {
		return nil, NewQueryError(g.types.Edge.Name, "edges", err)
	}
	byID := make(map[int64]*Edge, len(es))
	for _, e := range es {
		e.typ = g.types.Edge
		byID[e.ID] = e
	}
	grouped := make(map[int64][]*Edge, len(nodeIDs))
	for node, ls := range dataloader.GroupByKey(links, func(l *Link) int64 { return l.NodeID }) {
		out := make([]*Edge, 0, len(ls))
		for _, l := range ls {
			if e, ok := byID[l.EdgeID]; ok {
				out = append(out, e)
			}
		}
		slices.SortFunc(out, func(a, b *Edge) int { return cmp.Compare(a.ID, b.ID) })
		grouped[node] = out
	}
	return grouped, nil
}

func isEdgeError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrDuplicateEdge, ErrEdgeNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
