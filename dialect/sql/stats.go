package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/digraph/dialect"
)

// QueryStats counts the statements run through a StatsDriver. Fields are
// updated atomically and may be read while statements run.
type QueryStats struct {
	TotalQueries  atomic.Int64
	TotalExecs    atomic.Int64
	TotalDuration atomic.Int64 // nanoseconds
	SlowQueries   atomic.Int64
	Errors        atomic.Int64
}

// Stats returns a copy of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset zeroes the counters.
func (s *QueryStats) Reset() {
	for _, c := range []*atomic.Int64{&s.TotalQueries, &s.TotalExecs, &s.TotalDuration, &s.SlowQueries, &s.Errors} {
		c.Store(0)
	}
}

// StatsSnapshot holds the counters of a QueryStats at one point in time.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the mean duration of a statement.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	if n := s.TotalQueries + s.TotalExecs; n > 0 {
		return s.TotalDuration / time.Duration(n)
	}
	return 0
}

// String formats the snapshot on one line, as the CLI logs it on exit.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(), s.SlowQueries, s.Errors)
}

// SlowQueryHook is called with every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, duration time.Duration)

// StatsDriver counts the statements sent to the graph tables and reports
// the slow ones. Statements in transactions are counted as well.
type StatsDriver struct {
	*Driver
	stats *QueryStats

	mu        sync.RWMutex
	threshold time.Duration
	hook      SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// Defaults to 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryHook sets the function called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.hook = hook }
}

// WithSlowQueryLog warns about slow statements on the logger, or on
// slog.Default when it is nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, query string, args []any, d time.Duration) {
		logger.WarnContext(ctx, "slow query detected", "duration", d, "query", query, "args", args)
	})
}

// NewStatsDriver wraps drv. The CLI puts it between the database and the
// SQL store:
//
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(cfg.Database.SlowQueryThreshold),
//	    sql.WithSlowQueryLog(logger),
//	)
//	store := sqlstore.New(stats)
func NewStatsDriver(drv *Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, stats: &QueryStats{}, threshold: 100 * time.Millisecond}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats { return d.stats }

// SetSlowThreshold changes the slow statement threshold. A negative value
// marks every statement as slow.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	d.threshold = threshold
	d.mu.Unlock()
}

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.stats.TotalQueries, query, args, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.stats.TotalExecs, query, args, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements are counted by d.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// observe runs the statement and updates the counter and the totals.
func (d *StatsDriver) observe(ctx context.Context, counter *atomic.Int64, query string, args any, run func() error) error {
	start := time.Now()
	err := run()
	elapsed := time.Since(start)
	counter.Add(1)
	d.stats.TotalDuration.Add(int64(elapsed))
	if err != nil {
		d.stats.Errors.Add(1)
	}
	d.mu.RLock()
	threshold, hook := d.threshold, d.hook
	d.mu.RUnlock()
	if elapsed <= threshold {
		return err
	}
	d.stats.SlowQueries.Add(1)
	if hook != nil {
		argv, _ := args.([]any)
		hook(ctx, query, argv, elapsed)
	}
	return err
}

// StatsTx is a transaction of a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query implements dialect.ExecQuerier.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, &tx.driver.stats.TotalQueries, query, args, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

// Exec implements dialect.ExecQuerier.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, &tx.driver.stats.TotalExecs, query, args, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
)
