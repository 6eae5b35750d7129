package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/syssam/digraph/graph"
)

// Storage errors.
var (
	// ErrConstraint is returned when a write violates a unique or
	// foreign key constraint.
	ErrConstraint = errors.New("storage: constraint violation")

	// ErrNotFound is returned when an update or delete by id matches no row.
	ErrNotFound = errors.New("storage: record not found")
)

// Row maps column names to values. Reference columns hold an int64 or nil.
type Row map[string]any

// Record is implemented by the types stored through a Repository.
type Record interface {
	GetID() int64
	SetID(int64)
	// Values returns the column values of the record, the id excluded.
	Values() Row
	// SetValues loads the record from a row.
	SetValues(Row) error
}

// Backend is the row level storage interface.
type Backend interface {
	// Dialect returns the storage dialect name.
	Dialect() string
	// Insert creates a row and returns its id.
	Insert(ctx context.Context, t *graph.Type, row Row) (int64, error)
	// Update sets columns on all matching rows and returns their count.
	Update(ctx context.Context, t *graph.Type, set Row, preds ...Predicate) (int, error)
	// Select returns all matching rows ordered by id.
	Select(ctx context.Context, t *graph.Type, preds ...Predicate) ([]Row, error)
	// Count returns the number of matching rows.
	Count(ctx context.Context, t *graph.Type, preds ...Predicate) (int, error)
	// Delete removes all matching rows and returns their count.
	Delete(ctx context.Context, t *graph.Type, preds ...Predicate) (int, error)
	// Lock locks the row until the end of the current transaction.
	Lock(ctx context.Context, t *graph.Type, id int64) error
	// Tx executes fn in a transaction. The transaction is committed if fn
	// returns nil and rolled back otherwise.
	Tx(ctx context.Context, fn func(context.Context) error) error
}

type txCtxKey struct{}

type txBinding struct {
	base   Backend
	tx     Backend
	parent *txBinding
}

// NewTxContext returns a context binding the transaction backend tx to the
// base backend that started it.
func NewTxContext(ctx context.Context, base, tx Backend) context.Context {
	parent, _ := ctx.Value(txCtxKey{}).(*txBinding)
	return context.WithValue(ctx, txCtxKey{}, &txBinding{base: base, tx: tx, parent: parent})
}

// TxFromContext returns the transaction started by base that is bound to
// the context, if any.
func TxFromContext(ctx context.Context, base Backend) (Backend, bool) {
	for b, _ := ctx.Value(txCtxKey{}).(*txBinding); b != nil; b = b.parent {
		if b.base == base {
			return b.tx, true
		}
	}
	return nil, false
}

// Resolve returns the transaction of base bound to ctx, or base itself.
func Resolve(ctx context.Context, base Backend) Backend {
	if tx, ok := TxFromContext(ctx, base); ok {
		return tx
	}
	return base
}

// Int64 converts a stored value to int64. Drivers return integers as
// int64, but some return []byte or string for numeric columns.
func Int64(v any) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Int64Ptr converts a nullable stored value to *int64.
func Int64Ptr(v any) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	n, ok := Int64(v)
	if !ok {
		return nil, fmt.Errorf("storage: unexpected type %T for int64 column", v)
	}
	return &n, nil
}

// RefValue returns the column value of an optional reference.
func RefValue(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// Scan loads the required int64 column of a row.
func Scan(row Row, column string) (int64, error) {
	v, ok := row[column]
	if !ok || v == nil {
		return 0, fmt.Errorf("storage: missing value for column %q", column)
	}
	n, ok := Int64(v)
	if !ok {
		return 0, fmt.Errorf("storage: unexpected type %T for column %q", v, column)
	}
	return n, nil
}
