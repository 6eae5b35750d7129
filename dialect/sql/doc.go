// Package sql provides the SQL driver wrapper and the small statement
// builder used by the SQL storage backend.
//
// # Builder Types
//
//   - Builder: low-level SQL string builder with identifier quoting
//   - Selector: SELECT builder with predicates, ordering and row locks
//   - InsertBuilder: INSERT builder with RETURNING support on Postgres
//   - UpdateBuilder: UPDATE builder with SET and WHERE clauses
//   - DeleteBuilder: DELETE builder with WHERE predicates
//
// # Dialect Support
//
// Quoting and placeholders adapt to the dialect:
//
//	sql.Dialect(dialect.Postgres).
//	    Select("id", "source_id").
//	    From("order_di_graphs").
//	    Where(sql.EQ("source_id", 7))
//	// SELECT "id", "source_id" FROM "order_di_graphs" WHERE "source_id" = $1
//
// # Predicates
//
//	sql.EQ("next_state_id", 3)        // next_state_id = 3
//	sql.In("id", 1, 2, 3)             // id IN (1, 2, 3)
//	sql.IsNull("attr_id")             // attr_id IS NULL
//	sql.And(sql.EQ("a", 1), sql.EQ("b", 2))
//
// # Row-Level Locking
//
//	sql.Dialect(dialect.Postgres).Select("id").From("order_di_graphs").
//	    Where(sql.EQ("id", 1)).
//	    ForUpdate() // SELECT ... FOR UPDATE
//
// # Drivers
//
// Driver wraps a *sql.DB and implements dialect.Driver. StatsDriver and
// DebugDriver decorate it with query statistics and slog debug logging.
package sql
