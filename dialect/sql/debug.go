package sql

import (
	"context"
	"log/slog"

	"github.com/syssam/digraph/dialect"
)

// DebugDriver logs every statement at debug level. Enabled by the
// database.debug setting of the CLI.
type DebugDriver struct {
	dialect.Driver
	log *slog.Logger
}

// Debug wraps drv. A nil logger means slog.Default.
func Debug(drv dialect.Driver, logger *slog.Logger) *DebugDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DebugDriver{Driver: drv, log: logger}
}

// Query implements dialect.ExecQuerier.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "driver.Query", "query", query, "args", args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.DebugContext(ctx, "driver.Exec", "query", query, "args", args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction that logs its statements and its outcome.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.log.DebugContext(ctx, "driver.Tx: started")
	return &DebugTx{Tx: tx, log: d.log, ctx: ctx}, nil
}

// DebugTx is a transaction of a DebugDriver.
type DebugTx struct {
	dialect.Tx
	log *slog.Logger
	ctx context.Context
}

// Query implements dialect.ExecQuerier.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.log.DebugContext(ctx, "tx.Query", "query", query, "args", args)
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.log.DebugContext(ctx, "tx.Exec", "query", query, "args", args)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit implements dialect.Tx.
func (tx *DebugTx) Commit() error {
	tx.log.DebugContext(tx.ctx, "tx.Commit")
	return tx.Tx.Commit()
}

// Rollback implements dialect.Tx.
func (tx *DebugTx) Rollback() error {
	tx.log.DebugContext(tx.ctx, "tx.Rollback")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
