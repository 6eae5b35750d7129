// Package sqlstore implements storage.Backend on top of a dialect.Driver.
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//		return err
//	}
//	store := sqlstore.New(drv)
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syssam/digraph/dialect"
	"github.com/syssam/digraph/dialect/sql"
	"github.com/syssam/digraph/dialect/sql/sqlgraph"
	"github.com/syssam/digraph/graph"
	"github.com/syssam/digraph/storage"
)

// Store is a storage.Backend backed by a SQL database.
type Store struct {
	drv dialect.Driver
	log *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report rollback failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New returns a store using the given driver.
func New(drv dialect.Driver, opts ...Option) *Store {
	s := &Store{drv: drv, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ storage.Backend = (*Store)(nil)

// Driver returns the underlying driver.
func (s *Store) Driver() dialect.Driver { return s.drv }

// Dialect implements storage.Backend.
func (s *Store) Dialect() string { return s.drv.Dialect() }

// Close closes the underlying driver.
func (s *Store) Close() error { return s.drv.Close() }

// Insert implements storage.Backend.
func (s *Store) Insert(ctx context.Context, t *graph.Type, row storage.Row) (int64, error) {
	return insert(ctx, s.drv, s.Dialect(), t, row)
}

// Update implements storage.Backend.
func (s *Store) Update(ctx context.Context, t *graph.Type, set storage.Row, preds ...storage.Predicate) (int, error) {
	return update(ctx, s.drv, s.Dialect(), t, set, preds)
}

// Select implements storage.Backend.
func (s *Store) Select(ctx context.Context, t *graph.Type, preds ...storage.Predicate) ([]storage.Row, error) {
	return selectRows(ctx, s.drv, s.Dialect(), t, preds)
}

// Count implements storage.Backend.
func (s *Store) Count(ctx context.Context, t *graph.Type, preds ...storage.Predicate) (int, error) {
	return count(ctx, s.drv, s.Dialect(), t, preds)
}

// Delete implements storage.Backend.
func (s *Store) Delete(ctx context.Context, t *graph.Type, preds ...storage.Predicate) (int, error) {
	return del(ctx, s.drv, s.Dialect(), t, preds)
}

// Lock implements storage.Backend. Outside of a transaction the lock is
// released immediately, so it only checks that the row exists.
func (s *Store) Lock(ctx context.Context, t *graph.Type, id int64) error {
	return lock(ctx, s.drv, s.Dialect(), t, id)
}

// Tx implements storage.Backend.
func (s *Store) Tx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := storage.TxFromContext(ctx, s); ok {
		return fn(ctx)
	}
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: starting a transaction: %w", err)
	}
	txs := &txStore{tx: tx, dialect: s.Dialect()}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(storage.NewTxContext(ctx, s, txs)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			s.log.ErrorContext(ctx, "sqlstore: rollback failed", "error", rerr)
			return errors.Join(err, fmt.Errorf("sqlstore: rolling back transaction: %w", rerr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: committing transaction: %w", wrap(err))
	}
	return nil
}

type txStore struct {
	tx      dialect.Tx
	dialect string
}

var _ storage.Backend = (*txStore)(nil)

func (tx *txStore) Dialect() string { return tx.dialect }

func (tx *txStore) Insert(ctx context.Context, t *graph.Type, row storage.Row) (int64, error) {
	return insert(ctx, tx.tx, tx.dialect, t, row)
}

func (tx *txStore) Update(ctx context.Context, t *graph.Type, set storage.Row, preds ...storage.Predicate) (int, error) {
	return update(ctx, tx.tx, tx.dialect, t, set, preds)
}

func (tx *txStore) Select(ctx context.Context, t *graph.Type, preds ...storage.Predicate) ([]storage.Row, error) {
	return selectRows(ctx, tx.tx, tx.dialect, t, preds)
}

func (tx *txStore) Count(ctx context.Context, t *graph.Type, preds ...storage.Predicate) (int, error) {
	return count(ctx, tx.tx, tx.dialect, t, preds)
}

func (tx *txStore) Delete(ctx context.Context, t *graph.Type, preds ...storage.Predicate) (int, error) {
	return del(ctx, tx.tx, tx.dialect, t, preds)
}

func (tx *txStore) Lock(ctx context.Context, t *graph.Type, id int64) error {
	return lock(ctx, tx.tx, tx.dialect, t, id)
}

func (tx *txStore) Tx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func insert(ctx context.Context, conn dialect.ExecQuerier, name string, t *graph.Type, row storage.Row) (int64, error) {
	ins := sql.Dialect(name).Insert(t.Table)
	for _, c := range t.Columns() {
		if v, ok := row[c]; ok {
			ins.Columns(c).Values(v)
		}
	}
	if name == dialect.Postgres {
		query, args := ins.Returning(graph.IDColumn).Query()
		rows := &sql.Rows{}
		if err := conn.Query(ctx, query, args, rows); err != nil {
			return 0, wrap(err)
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return 0, wrap(err)
			}
			return 0, fmt.Errorf("sqlstore: insert %s: no id returned", t.Name)
		}
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		return id, rows.Close()
	}
	query, args := ins.Query()
	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return 0, wrap(err)
	}
	return res.LastInsertId()
}

func update(ctx context.Context, conn dialect.ExecQuerier, name string, t *graph.Type, set storage.Row, preds []storage.Predicate) (int, error) {
	if len(set) == 0 {
		return count(ctx, conn, name, t, preds)
	}
	upd := sql.Dialect(name).Update(t.Table).Where(predicate(preds))
	for _, c := range t.Columns() {
		if v, ok := set[c]; ok {
			upd.Set(c, v)
		}
	}
	return affected(ctx, conn, upd)
}

func del(ctx context.Context, conn dialect.ExecQuerier, name string, t *graph.Type, preds []storage.Predicate) (int, error) {
	return affected(ctx, conn, sql.Dialect(name).Delete(t.Table).Where(predicate(preds)))
}

func affected(ctx context.Context, conn dialect.ExecQuerier, q sql.Querier) (int, error) {
	query, args := q.Query()
	var res sql.Result
	if err := conn.Exec(ctx, query, args, &res); err != nil {
		return 0, wrap(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func selectRows(ctx context.Context, conn dialect.ExecQuerier, name string, t *graph.Type, preds []storage.Predicate) ([]storage.Row, error) {
	columns := t.Columns()
	query, args := sql.Dialect(name).Select(columns...).
		From(t.Table).
		Where(predicate(preds)).
		OrderBy(graph.IDColumn).
		Query()
	rows := &sql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []storage.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning %s: %w", t.Name, err)
		}
		row := make(storage.Row, len(columns))
		for i, c := range columns {
			row[c] = value(values[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func count(ctx context.Context, conn dialect.ExecQuerier, name string, t *graph.Type, preds []storage.Predicate) (int, error) {
	query, args := sql.Dialect(name).Select("COUNT(*)").
		From(t.Table).
		Where(predicate(preds)).
		Query()
	rows := &sql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func lock(ctx context.Context, conn dialect.ExecQuerier, name string, t *graph.Type, id int64) error {
	query, args := sql.Dialect(name).Select(graph.IDColumn).
		From(t.Table).
		Where(sql.EQ(graph.IDColumn, id)).
		ForUpdate().
		Query()
	rows := &sql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return fmt.Errorf("sqlstore: lock %s %d: %w", t.Name, id, storage.ErrNotFound)
	}
	return rows.Close()
}

// predicate converts storage predicates to a SQL predicate.
func predicate(preds []storage.Predicate) *sql.Predicate {
	ps := make([]*sql.Predicate, 0, len(preds))
	for _, p := range preds {
		switch p.Op {
		case storage.OpEQ:
			ps = append(ps, sql.EQ(p.Column, p.Values[0]))
		case storage.OpIn:
			ps = append(ps, sql.In(p.Column, p.Values...))
		case storage.OpIsNull:
			ps = append(ps, sql.IsNull(p.Column))
		case storage.OpNotNull:
			ps = append(ps, sql.NotNull(p.Column))
		}
	}
	return sql.And(ps...)
}

// value normalizes scanned values.
func value(v any) any {
	switch v := v.(type) {
	case []byte:
		if n, ok := storage.Int64(v); ok {
			return n
		}
		return string(v)
	default:
		return v
	}
}

// wrap marks constraint violations with storage.ErrConstraint.
func wrap(err error) error {
	if sqlgraph.IsUniqueConstraintError(err) || sqlgraph.IsForeignKeyConstraintError(err) {
		return fmt.Errorf("%w: %w", storage.ErrConstraint, sqlgraph.NewConstraintError(err.Error(), err))
	}
	return err
}
