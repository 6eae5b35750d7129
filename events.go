package digraph

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/digraph/storage"
)

// Event describes the creation or deletion of one record.
type Event struct {
	ID       uuid.UUID
	Op       Op
	Type     string // record type name
	EntityID int64
	Time     time.Time
}

// Handler processes an event. Handlers run in the context of the mutation
// that emitted the event, inside its transaction if there is one.
type Handler func(context.Context, Event) error

type handlerKey struct {
	op  Op
	typ string
}

// Dispatcher routes record lifecycle events to the handlers registered
// for their operation and type.
type Dispatcher struct {
	mu          sync.RWMutex
	handlers    map[handlerKey][]Handler
	concurrency int
	log         *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithConcurrency runs up to n handlers of one event concurrently.
// Emit still waits for all of them to finish.
func WithConcurrency(n int) DispatcherOption {
	return func(d *Dispatcher) { d.concurrency = n }
}

// WithDispatcherLogger sets the logger of the dispatcher.
func WithDispatcherLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher returns a dispatcher without handlers.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handlers:    make(map[handlerKey][]Handler),
		concurrency: 1,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// On registers h for events with the given operation on the given type.
func (d *Dispatcher) On(op Op, typ string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := handlerKey{op: op, typ: typ}
	d.handlers[k] = append(d.handlers[k], h)
}

// Handles reports if any handler is registered for the operation on the type.
func (d *Dispatcher) Handles(op Op, typ string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[handlerKey{op: op, typ: typ}]) > 0
}

// Emit runs the handlers registered for the event and returns their
// errors combined.
func (d *Dispatcher) Emit(ctx context.Context, e Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	d.mu.RLock()
	hs := append([]Handler(nil), d.handlers[handlerKey{op: e.Op, typ: e.Type}]...)
	d.mu.RUnlock()
	if len(hs) == 0 {
		return nil
	}
	d.log.DebugContext(ctx, "digraph: emit event",
		slog.String("event", e.ID.String()),
		slog.String("op", e.Op.String()),
		slog.String("type", e.Type),
		slog.Int64("id", e.EntityID),
		slog.Int("handlers", len(hs)),
	)
	errs := make([]error, len(hs))
	if d.concurrency <= 1 || len(hs) == 1 {
		for i, h := range hs {
			errs[i] = h(ctx, e)
		}
		return NewAggregateError(errs...)
	}
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, h := range hs {
		g.Go(func() error {
			errs[i] = h(ctx, e)
			return nil
		})
	}
	_ = g.Wait()
	return NewAggregateError(errs...)
}

// Created emits the creation of a record.
func (d *Dispatcher) Created(ctx context.Context, typ string, id int64) error {
	return d.Emit(ctx, Event{Op: OpCreate, Type: typ, EntityID: id})
}

// Deleted emits the deletion of a record.
func (d *Dispatcher) Deleted(ctx context.Context, typ string, id int64) error {
	return d.Emit(ctx, Event{Op: OpDelete, Type: typ, EntityID: id})
}

// Hook returns a storage hook that emits an event for every record created
// or deleted by a successful mutation. An error returned by a handler is
// returned from the mutation.
func (d *Dispatcher) Hook() storage.Hook {
	hk := func(next storage.Mutator) storage.Mutator {
		return storage.MutateFunc(func(ctx context.Context, m *storage.Mutation) (storage.Value, error) {
			if !d.Handles(m.Op(), m.Type()) {
				return next.Mutate(ctx, m)
			}
			v, err := next.Mutate(ctx, m)
			if err != nil {
				return v, err
			}
			if n, ok := v.(int); ok && n == 0 {
				return v, nil
			}
			var errs []error
			for _, id := range m.IDs() {
				errs = append(errs, d.Emit(ctx, Event{Op: m.Op(), Type: m.Type(), EntityID: id}))
			}
			return v, NewAggregateError(errs...)
		})
	}
	return storage.On(hk, OpCreate|OpDelete)
}
