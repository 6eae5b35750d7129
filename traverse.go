package digraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/digraph/contrib/dataloader"
	"github.com/syssam/digraph/multigraph"
)

// Traversal is the strategy BuildGraph walks the edges with.
type Traversal int

const (
	// TraverseAll follows every edge reachable from the start source,
	// breadth first, expanding each source once at its shortest depth.
	TraverseAll Traversal = iota
	// TraverseFirstPath follows a single path: at each source it takes
	// the first edge, by id, that is not in the graph yet, and stops at
	// the first source without one.
	TraverseFirstPath
)

func (t Traversal) String() string {
	switch t {
	case TraverseAll:
		return "all"
	case TraverseFirstPath:
		return "first_path"
	default:
		return fmt.Sprintf("Traversal(%d)", int(t))
	}
}

// ParseTraversal parses the name of a traversal strategy.
func ParseTraversal(s string) (Traversal, error) {
	switch s {
	case "", "all":
		return TraverseAll, nil
	case "first_path", "first-path":
		return TraverseFirstPath, nil
	default:
		return 0, fmt.Errorf("digraph: unknown traversal %q", s)
	}
}

type walker[S, A Entity] struct {
	m        *Manager[S, A]
	out      *multigraph.MultiDiGraph[int64, S, int64]
	maxDepth int
}

type frame struct {
	id    int64
	depth int
}

func (w *walker[S, A]) all(ctx context.Context, start int64) error {
	var (
		queue  = []frame{{id: start}}
		queued = map[int64]bool{start: true}
	)
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if err := ctx.Err(); err != nil {
			return err
		}
		es, err := w.edges(ctx, f.id, f.depth)
		if err != nil {
			return err
		}
		for _, e := range es {
			if w.out.AddEdge(f.id, e.NextStateID, e.AttrKey()) && !queued[e.NextStateID] {
				queued[e.NextStateID] = true
				queue = append(queue, frame{id: e.NextStateID, depth: f.depth + 1})
			}
		}
	}
	return nil
}

func (w *walker[S, A]) firstPath(ctx context.Context, start int64) error {
	for id, depth := start, 0; ; depth++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		es, err := w.edges(ctx, id, depth)
		if err != nil {
			return err
		}
		next, ok := int64(0), false
		for _, e := range es {
			if w.out.AddEdge(id, e.NextStateID, e.AttrKey()) {
				next, ok = e.NextStateID, true
				break
			}
		}
		if !ok {
			return nil
		}
		id = next
	}
}

// edges returns the outgoing edges of the source id, checking the depth
// limit for sources that have any.
func (w *walker[S, A]) edges(ctx context.Context, id int64, depth int) ([]*Edge, error) {
	es, err := w.m.g.outgoing(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.maxDepth > 0 && depth >= w.maxDepth && len(es) > 0 {
		return nil, &DepthError{Max: w.maxDepth, Node: id}
	}
	return es, nil
}

// load sets the node values of the walked sources, except the start one.
func (w *walker[S, A]) load(ctx context.Context, start int64) error {
	load := w.m.g.source.Load
	if load == nil {
		return nil
	}
	ids := make([]int64, 0, w.out.NumberOfNodes())
	for _, id := range w.out.Nodes() {
		if id != start {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	vs, err := load(ctx, ids)
	if err != nil {
		return NewQueryError(w.m.g.types.Source.Name, "load", err)
	}
	ordered, errs := dataloader.OrderByKeys(ids, vs, func(v S) int64 { return v.GetID() })
	for i, id := range ids {
		if errs[i] != nil {
			w.m.g.log.DebugContext(ctx, "digraph: source not loaded", slog.Int64("source", id))
			continue
		}
		w.out.AddNode(id, ordered[i])
	}
	return nil
}
