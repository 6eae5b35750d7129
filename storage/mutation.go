package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/digraph/graph"
)

// Op represents the operation of a mutation.
type Op uint

// Mutation operations.
const (
	OpCreate Op = 1 << iota // node creation.
	OpUpdate                // update nodes by predicate.
	OpDelete                // delete nodes by predicate.
)

// Is reports whether o matches the given operation.
func (i Op) Is(o Op) bool { return i&o != 0 }

func (i Op) String() string {
	var ops []string
	for _, o := range []struct {
		op   Op
		name string
	}{{OpCreate, "OpCreate"}, {OpUpdate, "OpUpdate"}, {OpDelete, "OpDelete"}} {
		if i.Is(o.op) {
			ops = append(ops, o.name)
		}
	}
	if len(ops) == 0 {
		return fmt.Sprintf("Op(%d)", i)
	}
	return strings.Join(ops, "|")
}

// Value represents a value returned by a mutation.
type Value any

// Mutation describes one write on a record type.
type Mutation struct {
	op    Op
	typ   *graph.Type
	ids   []int64
	row   Row
	preds []Predicate
}

// NewMutation returns a mutation of the given type.
func NewMutation(op Op, t *graph.Type, ids []int64, row Row) *Mutation {
	if row == nil {
		row = Row{}
	}
	return &Mutation{op: op, typ: t, ids: ids, row: row}
}

// Op returns the operation name.
func (m *Mutation) Op() Op { return m.op }

// Type returns the record type name.
func (m *Mutation) Type() string { return m.typ.Name }

// Schema returns the record type.
func (m *Mutation) Schema() *graph.Type { return m.typ }

// IDs returns the ids of the affected records. For OpCreate the id is
// known once the mutation was executed.
func (m *Mutation) IDs() []int64 { return m.ids }

// ID returns the record id if the mutation affects exactly one record.
func (m *Mutation) ID() (int64, bool) {
	if len(m.ids) != 1 {
		return 0, false
	}
	return m.ids[0], true
}

// Field returns the value set for the given field or column.
func (m *Mutation) Field(name string) (Value, bool) {
	column := name
	if f, ok := m.typ.Field(name); ok {
		column = f.Column()
	}
	v, ok := m.row[column]
	return v, ok
}

// SetField sets the value of a field or column.
func (m *Mutation) SetField(name string, v Value) error {
	if f, ok := m.typ.Field(name); ok {
		if f.Immutable && m.op.Is(OpUpdate) {
			return fmt.Errorf("storage: field %q of %s is immutable", name, m.typ.Name)
		}
		name = f.Column()
	}
	if !m.typ.HasColumn(name) {
		return fmt.Errorf("storage: unknown field %q for type %s", name, m.typ.Name)
	}
	m.row[name] = v
	return nil
}

// Fields returns the columns set by the mutation.
func (m *Mutation) Fields() Row { return m.row }

// Where returns the mutation predicates.
func (m *Mutation) Where() []Predicate { return m.preds }

// Mutator is the interface that wraps the Mutate method.
type Mutator interface {
	// Mutate applies the given mutation. OpCreate returns the new id, other
	// operations return the number of affected rows.
	Mutate(context.Context, *Mutation) (Value, error)
}

// The MutateFunc type is an adapter to allow the use of ordinary
// function as Mutator. If f is a function with the appropriate signature,
// MutateFunc(f) is a Mutator that calls f.
type MutateFunc func(context.Context, *Mutation) (Value, error)

// Mutate calls f(ctx, m).
func (f MutateFunc) Mutate(ctx context.Context, m *Mutation) (Value, error) {
	return f(ctx, m)
}

// Hook defines the "mutation middleware". A function that gets a Mutator
// and returns a Mutator. For example:
//
//	hook := func(next storage.Mutator) storage.Mutator {
//		return storage.MutateFunc(func(ctx context.Context, m *storage.Mutation) (storage.Value, error) {
//			// Do some stuff before.
//			value, err := next.Mutate(ctx, m)
//			// Do some stuff after.
//			return value, err
//		})
//	}
type Hook func(Mutator) Mutator

// On executes the given hook only for the given operations.
func On(hk Hook, op Op) Hook {
	return func(next Mutator) Mutator {
		hooked := hk(next)
		return MutateFunc(func(ctx context.Context, m *Mutation) (Value, error) {
			if m.Op().Is(op) {
				return hooked.Mutate(ctx, m)
			}
			return next.Mutate(ctx, m)
		})
	}
}

// Chain applies the hooks in order, so the first hook is the outermost.
func Chain(mutator Mutator, hooks ...Hook) Mutator {
	for i := len(hooks) - 1; i >= 0; i-- {
		mutator = hooks[i](mutator)
	}
	return mutator
}
