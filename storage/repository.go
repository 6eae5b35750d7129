package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/syssam/digraph/graph"
)

// RecordPtr constrains P to a pointer to T implementing Record.
type RecordPtr[T any] interface {
	*T
	Record
}

// Repository stores records of one type in a Backend.
type Repository[T any, P RecordPtr[T]] struct {
	backend Backend
	typ     *graph.Type
	mu      sync.RWMutex
	hooks   []Hook
}

// NewRepository returns a repository for records of type t.
func NewRepository[T any, P RecordPtr[T]](b Backend, t *graph.Type) *Repository[T, P] {
	return &Repository[T, P]{backend: b, typ: t}
}

// Type returns the record type of the repository.
func (r *Repository[T, P]) Type() *graph.Type { return r.typ }

// Backend returns the backend bound to ctx.
func (r *Repository[T, P]) Backend(ctx context.Context) Backend {
	return Resolve(ctx, r.backend)
}

// Use adds hooks to the mutation chain of the repository.
func (r *Repository[T, P]) Use(hooks ...Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hooks...)
}

// Create inserts v and sets its id. The id is set whenever the insert
// succeeds, also when a hook fails afterwards: outside a transaction the
// row stays written.
func (r *Repository[T, P]) Create(ctx context.Context, v P) error {
	if v.GetID() != 0 {
		return fmt.Errorf("storage: create %s: record already has id %d", r.typ.Name, v.GetID())
	}
	m := NewMutation(OpCreate, r.typ, nil, v.Values())
	_, err := r.mutate(ctx, m)
	if id, ok := m.ID(); ok {
		v.SetID(id)
	}
	return err
}

// Update writes all columns of v.
func (r *Repository[T, P]) Update(ctx context.Context, v P) error {
	m := NewMutation(OpUpdate, r.typ, []int64{v.GetID()}, v.Values())
	m.preds = []Predicate{EQ(graph.IDColumn, v.GetID())}
	n, err := r.mutate(ctx, m)
	if err != nil {
		return err
	}
	if n.(int) == 0 {
		return fmt.Errorf("storage: update %s %d: %w", r.typ.Name, v.GetID(), ErrNotFound)
	}
	return nil
}

// UpdateWhere sets the given columns on all matching records and returns
// their count.
func (r *Repository[T, P]) UpdateWhere(ctx context.Context, set Row, preds ...Predicate) (int, error) {
	ids, err := r.IDs(ctx, preds...)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	m := NewMutation(OpUpdate, r.typ, ids, set)
	m.preds = []Predicate{IDIn(ids...)}
	n, err := r.mutate(ctx, m)
	if err != nil {
		return 0, err
	}
	return n.(int), nil
}

// Get returns the record with the given id.
func (r *Repository[T, P]) Get(ctx context.Context, id int64) (P, error) {
	v, err := r.GetOrNone(ctx, EQ(graph.IDColumn, id))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("storage: %s %d: %w", r.typ.Name, id, ErrNotFound)
	}
	return v, nil
}

// Filter returns all matching records ordered by id.
func (r *Repository[T, P]) Filter(ctx context.Context, preds ...Predicate) ([]P, error) {
	rows, err := r.Backend(ctx).Select(ctx, r.typ, preds...)
	if err != nil {
		return nil, err
	}
	vs := make([]P, 0, len(rows))
	for _, row := range rows {
		v, err := r.scan(row)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// IDs returns the ids of all matching records in ascending order.
func (r *Repository[T, P]) IDs(ctx context.Context, preds ...Predicate) ([]int64, error) {
	rows, err := r.Backend(ctx).Select(ctx, r.typ, preds...)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		id, err := Scan(row, graph.IDColumn)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GetOrNone returns the first matching record, or nil if none matches.
func (r *Repository[T, P]) GetOrNone(ctx context.Context, preds ...Predicate) (P, error) {
	vs, err := r.Filter(ctx, preds...)
	if err != nil || len(vs) == 0 {
		return nil, err
	}
	return vs[0], nil
}

// Exist reports if any record matches.
func (r *Repository[T, P]) Exist(ctx context.Context, preds ...Predicate) (bool, error) {
	n, err := r.Count(ctx, preds...)
	return n > 0, err
}

// Count returns the number of matching records.
func (r *Repository[T, P]) Count(ctx context.Context, preds ...Predicate) (int, error) {
	return r.Backend(ctx).Count(ctx, r.typ, preds...)
}

// Delete removes v.
func (r *Repository[T, P]) Delete(ctx context.Context, v P) error {
	m := NewMutation(OpDelete, r.typ, []int64{v.GetID()}, nil)
	m.preds = []Predicate{EQ(graph.IDColumn, v.GetID())}
	n, err := r.mutate(ctx, m)
	if err != nil {
		return err
	}
	if n.(int) == 0 {
		return fmt.Errorf("storage: delete %s %d: %w", r.typ.Name, v.GetID(), ErrNotFound)
	}
	return nil
}

// DeleteWhere removes all matching records and returns their count.
func (r *Repository[T, P]) DeleteWhere(ctx context.Context, preds ...Predicate) (int, error) {
	ids, err := r.IDs(ctx, preds...)
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	m := NewMutation(OpDelete, r.typ, ids, nil)
	m.preds = []Predicate{IDIn(ids...)}
	n, err := r.mutate(ctx, m)
	if err != nil {
		return 0, err
	}
	return n.(int), nil
}

// Lock locks the record with the given id until the end of the
// transaction bound to ctx.
func (r *Repository[T, P]) Lock(ctx context.Context, id int64) error {
	return r.Backend(ctx).Lock(ctx, r.typ, id)
}

func (r *Repository[T, P]) scan(row Row) (P, error) {
	id, err := Scan(row, graph.IDColumn)
	if err != nil {
		return nil, err
	}
	v := P(new(T))
	v.SetID(id)
	if err := v.SetValues(row); err != nil {
		return nil, fmt.Errorf("storage: scan %s %d: %w", r.typ.Name, id, err)
	}
	return v, nil
}

func (r *Repository[T, P]) mutate(ctx context.Context, m *Mutation) (Value, error) {
	r.mu.RLock()
	hooks := slices.Clone(r.hooks)
	r.mu.RUnlock()
	return Chain(MutateFunc(r.exec), hooks...).Mutate(ctx, m)
}

// exec is the terminal mutator that applies m on the backend.
func (r *Repository[T, P]) exec(ctx context.Context, m *Mutation) (Value, error) {
	b := r.Backend(ctx)
	switch {
	case m.op.Is(OpCreate):
		id, err := b.Insert(ctx, m.typ, m.row)
		if err != nil {
			return nil, err
		}
		m.ids = []int64{id}
		return id, nil
	case m.op.Is(OpUpdate):
		return b.Update(ctx, m.typ, m.row, m.preds...)
	case m.op.Is(OpDelete):
		return b.Delete(ctx, m.typ, m.preds...)
	default:
		return nil, fmt.Errorf("storage: unknown mutation op %s", m.op)
	}
}
