// Package memstore implements storage.Backend in memory. It is used in
// tests and by embedders that keep graphs for the lifetime of a process.
//
// Writes are serialized. A transaction holds the write lock from begin to
// commit and restores a snapshot of the tables on rollback. Reads outside
// of a transaction observe uncommitted writes.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/syssam/digraph/dialect"
	"github.com/syssam/digraph/graph"
	"github.com/syssam/digraph/storage"
)

// Dialect is the dialect name reported by the store.
const Dialect = "memory"

type table struct {
	rows   map[int64]storage.Row
	nextID int64
}

func (t *table) clone() *table {
	c := &table{rows: make(map[int64]storage.Row, len(t.rows)), nextID: t.nextID}
	for id, row := range t.rows {
		c.rows[id] = maps.Clone(row)
	}
	return c
}

// Store is an in-memory storage.Backend.
type Store struct {
	txMu   sync.Mutex   // serializes writers.
	mu     sync.RWMutex // guards tables.
	tables map[string]*table
}

// New returns an empty store.
func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

var _ storage.Backend = (*Store)(nil)

// Dialect implements storage.Backend.
func (s *Store) Dialect() string { return Dialect }

// Insert implements storage.Backend.
func (s *Store) Insert(ctx context.Context, t *graph.Type, row storage.Row) (id int64, err error) {
	err = s.write(ctx, func(tx *txStore) error {
		id, err = tx.Insert(ctx, t, row)
		return err
	})
	return id, err
}

// Update implements storage.Backend.
func (s *Store) Update(ctx context.Context, t *graph.Type, set storage.Row, preds ...storage.Predicate) (n int, err error) {
	err = s.write(ctx, func(tx *txStore) error {
		n, err = tx.Update(ctx, t, set, preds...)
		return err
	})
	return n, err
}

// Delete implements storage.Backend.
func (s *Store) Delete(ctx context.Context, t *graph.Type, preds ...storage.Predicate) (n int, err error) {
	err = s.write(ctx, func(tx *txStore) error {
		n, err = tx.Delete(ctx, t, preds...)
		return err
	})
	return n, err
}

// Select implements storage.Backend.
func (s *Store) Select(_ context.Context, t *graph.Type, preds ...storage.Predicate) ([]storage.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectLocked(t, preds), nil
}

// Count implements storage.Backend.
func (s *Store) Count(ctx context.Context, t *graph.Type, preds ...storage.Predicate) (int, error) {
	rows, err := s.Select(ctx, t, preds...)
	return len(rows), err
}

// Lock implements storage.Backend. Writers are serialized, so locking a
// row outside of a transaction only checks that it exists.
func (s *Store) Lock(_ context.Context, t *graph.Type, id int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tb, ok := s.tables[t.Table]; !ok || tb.rows[id] == nil {
		return fmt.Errorf("memstore: lock %s %d: %w", t.Name, id, storage.ErrNotFound)
	}
	return nil
}

// Tx implements storage.Backend.
func (s *Store) Tx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := storage.TxFromContext(ctx, s); ok {
		return fn(ctx)
	}
	return s.write(ctx, func(tx *txStore) error {
		return fn(storage.NewTxContext(ctx, s, tx))
	})
}

// write runs fn holding the writer lock, and restores the tables if fn fails.
func (s *Store) write(ctx context.Context, fn func(*txStore) error) (err error) {
	if tx, ok := storage.TxFromContext(ctx, s); ok {
		return fn(tx.(*txStore))
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.RLock()
	snapshot := make(map[string]*table, len(s.tables))
	for name, t := range s.tables {
		snapshot[name] = t.clone()
	}
	s.mu.RUnlock()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snapshot)
			panic(r)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()
	return fn(&txStore{s: s})
}

func (s *Store) restore(snapshot map[string]*table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables = snapshot
}

func (s *Store) selectLocked(t *graph.Type, preds []storage.Predicate) []storage.Row {
	tb, ok := s.tables[t.Table]
	if !ok {
		return nil
	}
	ids := slices.Sorted(maps.Keys(tb.rows))
	var rows []storage.Row
	for _, id := range ids {
		if row := tb.rows[id]; storage.MatchAll(row, preds...) {
			rows = append(rows, maps.Clone(row))
		}
	}
	return rows
}

// txStore is the storage.Backend of a running transaction. It is used
// while the writer lock is held.
type txStore struct {
	s *Store
}

var _ storage.Backend = (*txStore)(nil)

func (tx *txStore) Dialect() string { return Dialect }

func (tx *txStore) Insert(_ context.Context, t *graph.Type, row storage.Row) (int64, error) {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	tb, ok := s.tables[t.Table]
	if !ok {
		tb = &table{rows: make(map[int64]storage.Row)}
		s.tables[t.Table] = tb
	}
	stored := storage.Row{}
	for _, c := range t.Columns() {
		if c == graph.IDColumn {
			continue
		}
		stored[c] = normalize(row[c])
	}
	for c, v := range row {
		if !t.HasColumn(c) {
			return 0, fmt.Errorf("memstore: insert %s: unknown column %q", t.Name, c)
		}
		if c == graph.IDColumn {
			if id, ok := storage.Int64(v); ok && id > 0 {
				stored[c] = id
			}
		}
	}
	if err := tb.checkUnique(t, 0, stored); err != nil {
		return 0, err
	}
	id, ok := stored[graph.IDColumn].(int64)
	if !ok {
		tb.nextID++
		id = tb.nextID
	} else if _, exists := tb.rows[id]; exists {
		return 0, fmt.Errorf("memstore: insert %s: duplicate id %d: %w", t.Name, id, storage.ErrConstraint)
	}
	tb.nextID = max(tb.nextID, id)
	stored[graph.IDColumn] = id
	tb.rows[id] = stored
	return id, nil
}

func (tx *txStore) Update(_ context.Context, t *graph.Type, set storage.Row, preds ...storage.Predicate) (int, error) {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	tb, ok := s.tables[t.Table]
	if !ok {
		return 0, nil
	}
	for c := range set {
		if c == graph.IDColumn || !t.HasColumn(c) {
			return 0, fmt.Errorf("memstore: update %s: invalid column %q", t.Name, c)
		}
	}
	var n int
	for _, id := range slices.Sorted(maps.Keys(tb.rows)) {
		row := tb.rows[id]
		if !storage.MatchAll(row, preds...) {
			continue
		}
		updated := maps.Clone(row)
		for c, v := range set {
			updated[c] = normalize(v)
		}
		if err := tb.checkUnique(t, id, updated); err != nil {
			return n, err
		}
		tb.rows[id] = updated
		n++
	}
	return n, nil
}

func (tx *txStore) Delete(_ context.Context, t *graph.Type, preds ...storage.Predicate) (int, error) {
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	tb, ok := s.tables[t.Table]
	if !ok {
		return 0, nil
	}
	var n int
	for id, row := range tb.rows {
		if storage.MatchAll(row, preds...) {
			delete(tb.rows, id)
			n++
		}
	}
	return n, nil
}

func (tx *txStore) Select(ctx context.Context, t *graph.Type, preds ...storage.Predicate) ([]storage.Row, error) {
	return tx.s.Select(ctx, t, preds...)
}

func (tx *txStore) Count(ctx context.Context, t *graph.Type, preds ...storage.Predicate) (int, error) {
	return tx.s.Count(ctx, t, preds...)
}

// Lock is a no-op check, the transaction already holds the writer lock.
func (tx *txStore) Lock(ctx context.Context, t *graph.Type, id int64) error {
	return tx.s.Lock(ctx, t, id)
}

func (tx *txStore) Tx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// checkUnique emulates the unique indexes of t. NULL values never collide.
func (tb *table) checkUnique(t *graph.Type, self int64, row storage.Row) error {
	for _, idx := range t.UniqueIndexes() {
		key := make([]any, 0, len(idx.Columns))
		for _, c := range idx.Columns {
			if row[c] == nil {
				key = nil
				break
			}
			key = append(key, row[c])
		}
		if key == nil {
			continue
		}
		for id, other := range tb.rows {
			if id == self {
				continue
			}
			if slices.IndexFunc(idx.Columns, func(c string) bool {
				return !storage.Equal(other[c], row[c])
			}) == -1 {
				return fmt.Errorf("memstore: %s violates unique index %q: %w", t.Name, idx.Name, storage.ErrConstraint)
			}
		}
	}
	return nil
}

// normalize stores integers as int64 and bytes as strings.
func normalize(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(v)
	case string, bool, float64, int64:
		return v
	}
	if n, ok := storage.Int64(v); ok {
		return n
	}
	return v
}

// Open returns a new store for the "memory" dialect. It lets callers pick
// the backend from configuration next to the SQL dialects.
func Open(name string) (*Store, error) {
	if name != Dialect {
		return nil, fmt.Errorf("memstore: unsupported dialect %q (supported: %s, or one of %s, %s, %s through sqlstore)",
			name, Dialect, dialect.SQLite, dialect.Postgres, dialect.MySQL)
	}
	return New(), nil
}
