package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/digraph"
	"github.com/syssam/digraph/config"
	"github.com/syssam/digraph/contrib/lrucache"
	"github.com/syssam/digraph/dialect"
	"github.com/syssam/digraph/dialect/sql"
	"github.com/syssam/digraph/storage"
	"github.com/syssam/digraph/storage/memstore"
	"github.com/syssam/digraph/storage/sqlstore"
)

// app holds the process wide state built from the configuration.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	backend storage.Backend
	drv     *sql.Driver
	stats   *sql.StatsDriver
	reg     *digraph.Registry
	graphs  map[string]*digraph.Graph[digraph.Ref, digraph.Ref]
}

// newApp opens the configured backend and registers one graph per
// configured source type.
func newApp(cfg *config.Config, logOut io.Writer) (*app, error) {
	a := &app{
		cfg:    cfg,
		log:    cfg.Log.Logger(logOut),
		graphs: make(map[string]*digraph.Graph[digraph.Ref, digraph.Ref]),
	}
	if err := a.open(); err != nil {
		return nil, err
	}
	if err := a.register(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) open() error {
	db := a.cfg.Database
	if db.Dialect == memstore.Dialect {
		s, err := memstore.Open(db.Dialect)
		if err != nil {
			return err
		}
		a.backend = s
		return nil
	}
	drv, err := sql.Open(db.Dialect, db.DSN)
	if err != nil {
		return fmt.Errorf("opening %s database: %w", db.Dialect, err)
	}
	if err := drv.DB().PingContext(context.Background()); err != nil {
		_ = drv.Close()
		return fmt.Errorf("connecting to %s database: %w", db.Dialect, err)
	}
	if drv.Dialect() == dialect.SQLite {
		// Writers on one SQLite file serialize anyway.
		drv.DB().SetMaxOpenConns(1)
	}
	a.drv = drv
	a.stats = sql.NewStatsDriver(drv,
		sql.WithSlowThreshold(db.SlowQueryThreshold),
		sql.WithSlowQueryLog(a.log),
	)
	var wrapped dialect.Driver = a.stats
	if db.Debug {
		wrapped = sql.Debug(a.stats, a.log)
	}
	a.backend = sqlstore.New(wrapped, sqlstore.WithLogger(a.log))
	return nil
}

func (a *app) register() error {
	opts := []digraph.Option{digraph.WithLogger(a.log)}
	if a.cfg.Cache.Size > 0 {
		c, err := lrucache.New(a.cfg.Cache.Size)
		if err != nil {
			return err
		}
		opts = append(opts, digraph.WithCache(c), digraph.WithCacheTTL(a.cfg.Cache.TTL))
	}
	trav, err := digraph.ParseTraversal(a.cfg.Traversal.Policy)
	if err != nil {
		return err
	}
	opts = append(opts, digraph.WithTraversal(trav), digraph.WithMaxDepth(a.cfg.Traversal.MaxDepth))

	a.reg = digraph.NewRegistry(a.backend, opts...)
	for _, t := range a.cfg.Types {
		var gopts []digraph.Option
		if t.Accessor != "" {
			gopts = append(gopts, digraph.WithAccessor(t.Accessor))
		}
		g, err := digraph.Register(a.reg,
			digraph.RefModel(t.Source, t.SourceTable),
			digraph.RefModel(t.Attribute, t.AttributeTable),
			gopts...,
		)
		if err != nil {
			return fmt.Errorf("registering %s: %w", t.Source, err)
		}
		a.graphs[t.Source] = g
	}
	return nil
}

// graph returns the graph of the named source type. The name may be
// omitted when a single type is configured.
func (a *app) graph(source string) (*digraph.Graph[digraph.Ref, digraph.Ref], error) {
	if source == "" {
		if len(a.graphs) != 1 {
			return nil, fmt.Errorf("--source is required, configured types: %v", a.sources())
		}
		for _, g := range a.graphs {
			return g, nil
		}
	}
	g, ok := a.graphs[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s (configured: %v)", digraph.ErrNotRegistered, source, a.sources())
	}
	return g, nil
}

func (a *app) sources() []string {
	names := a.reg.Sources()
	slices.Sort(names)
	return names
}

// Close logs the statement statistics and closes the backend.
func (a *app) Close() error {
	if a.stats != nil {
		a.log.Debug("query stats", "stats", a.stats.QueryStats().Stats().String())
	}
	if c, ok := a.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
