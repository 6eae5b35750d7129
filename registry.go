package digraph

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/syssam/digraph/graph"
	"github.com/syssam/digraph/storage"
)

// Registry keeps the graphs registered on one storage backend and the
// dispatcher that keeps them in sync with their source records.
type Registry struct {
	backend storage.Backend
	opts    options

	mu     sync.RWMutex
	graphs []registered
	byType map[string]registered
}

type registered interface {
	Types() *graph.Types
	Accessor() string
}

// NewRegistry returns an empty registry on the given backend.
func NewRegistry(b storage.Backend, opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.dispatcher == nil {
		o.dispatcher = NewDispatcher(WithDispatcherLogger(o.log))
	}
	return &Registry{
		backend: b,
		opts:    o,
		byType:  make(map[string]registered),
	}
}

// Backend returns the storage backend of the registry.
func (r *Registry) Backend() storage.Backend { return r.backend }

// Dispatcher returns the event dispatcher of the registry.
func (r *Registry) Dispatcher() *Dispatcher { return r.opts.dispatcher }

// Hook returns the hook that must be installed on the repositories of
// source and attribute records, so that graph nodes follow their sources.
func (r *Registry) Hook() Hook { return r.opts.dispatcher.Hook() }

// Tx runs fn in a transaction of the registry backend.
func (r *Registry) Tx(ctx context.Context, fn func(context.Context) error) error {
	return r.backend.Tx(ctx, fn)
}

// Types returns the types of all registered graphs in registration order,
// without duplicates. The list includes the external source and attribute
// types, for foreign keys.
func (r *Registry) Types() []*graph.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		types []*graph.Type
		seen  = make(map[string]bool)
	)
	for _, g := range r.graphs {
		ts := g.Types()
		for _, t := range []*graph.Type{ts.Source, ts.Attr, ts.Edge, ts.Node, ts.Link} {
			if !seen[t.Name] {
				seen[t.Name] = true
				types = append(types, t)
			}
		}
	}
	return types
}

// Sources returns the source type names of the registered graphs.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.graphs))
	for _, g := range r.graphs {
		names = append(names, g.Types().Source.Name)
	}
	return names
}

// Lookup returns the graph registered on the source type under the given
// accessor name.
func (r *Registry) Lookup(source, accessor string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byType[source]
	if !ok || g.Accessor() != accessor {
		return nil, false
	}
	return g, true
}

// Lookup returns the typed graph registered on the source type.
func Lookup[S, A Entity](r *Registry, source, accessor string) (*Graph[S, A], error) {
	v, ok := r.Lookup(source, accessor)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotRegistered, source, accessor)
	}
	g, ok := v.(*Graph[S, A])
	if !ok {
		return nil, fmt.Errorf("digraph: graph %s.%s has type %T", source, accessor, v)
	}
	return g, nil
}

func (r *Registry) add(g registered) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := g.Types().Source.Name
	if _, ok := r.byType[name]; ok {
		return &DuplicateRegistrationError{Type: name}
	}
	r.byType[name] = g
	r.graphs = append(r.graphs, g)
	return nil
}

func (r *Registry) graphOptions(opts []Option) options {
	o := r.opts
	o.hooks = slices.Clone(o.hooks)
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
