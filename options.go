package digraph

import (
	"log/slog"
	"time"
)

// Option configures a Registry, or a single Graph when passed to Register.
// Options given to Register override the ones of the registry.
type Option func(*options)

type options struct {
	log          *slog.Logger
	dispatcher   *Dispatcher
	accessor     string
	traversal    Traversal
	maxDepth     int
	cache        Cache
	cacheTTL     time.Duration
	policy       Policy
	pruneOrphans bool
	hooks        []Hook
}

func defaultOptions() options {
	return options{
		log:       slog.Default(),
		traversal: TraverseAll,
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithDispatcher sets the event dispatcher of the registry.
func WithDispatcher(d *Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithAccessor sets the name under which a graph is looked up on its
// source type. It defaults to the snake_case source type name followed
// by "_graph".
func WithAccessor(name string) Option {
	return func(o *options) { o.accessor = name }
}

// WithTraversal sets the traversal strategy of BuildGraph.
func WithTraversal(t Traversal) Option {
	return func(o *options) { o.traversal = t }
}

// WithMaxDepth limits the depth of BuildGraph walks. Zero means unlimited.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// WithCache caches the edge lists of graph nodes.
func WithCache(c Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithCacheTTL sets the expiration of cached edge lists.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithPolicy evaluates p before edges are added or removed.
func WithPolicy(p Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithPruneOrphans deletes the graph node of a deleted source, together
// with the edges no other node links to.
func WithPruneOrphans() Option {
	return func(o *options) { o.pruneOrphans = true }
}

// WithHooks installs mutation hooks on the edge records of a graph.
func WithHooks(hooks ...Hook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}
