// Package dialect provides the database dialect abstraction used by the
// SQL storage backend.
//
// # Supported Dialects
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// Driver names that speak a supported dialect, such as "pgx", are mapped
// onto it with Normalize.
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// The Tx interface adds Commit and Rollback. Both Driver and Tx satisfy
// ExecQuerier, which is all a storage backend needs to run statements.
//
// # Sub-packages
//
//   - dialect/sql: statement builders and driver implementation
//   - dialect/sql/schema: atlas based migration of synthesized tables
//   - dialect/sql/sqlgraph: constraint error classification
//   - dialect/sqlschema: foreign key actions used by schema fields
package dialect
