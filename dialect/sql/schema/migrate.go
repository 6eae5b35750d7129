// Package schema creates and migrates the tables of synthesized graph
// record types with Atlas.
//
//	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
//	if err != nil {
//		return err
//	}
//	err = m.Create(ctx, registry.Types()...)
package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/digraph/dialect"
	"github.com/syssam/digraph/dialect/sqlschema"
	"github.com/syssam/digraph/graph"
)

type (
	// Differ is the interface that wraps the Diff method.
	Differ interface {
		// Diff returns a list of changes that construct a migration plan.
		Diff(current, desired *schema.Schema) ([]schema.Change, error)
	}

	// The DiffFunc type is an adapter to allow the use of ordinary function as Differ.
	// If f is a function with the appropriate signature, DiffFunc(f) is a Differ that calls f.
	DiffFunc func(current, desired *schema.Schema) ([]schema.Change, error)

	// DiffHook defines the "diff middleware". A function that gets a Differ and returns a Differ.
	DiffHook func(Differ) Differ
)

// Diff calls f(current, desired).
func (f DiffFunc) Diff(current, desired *schema.Schema) ([]schema.Change, error) {
	return f(current, desired)
}

// MigrateOption allows configuring Atlas using functional arguments.
type MigrateOption func(*Atlas)

// WithSchemaName sets the database schema the tables are created in.
// The connection's current schema is used by default.
func WithSchemaName(name string) MigrateOption {
	return func(a *Atlas) {
		a.schema = name
	}
}

// WithForeignKeys enables creating foreign keys between the synthesized
// tables. Enabled by default.
func WithForeignKeys(b bool) MigrateOption {
	return func(a *Atlas) {
		a.withForeignKeys = b
	}
}

// WithExternalForeignKeys enables creating foreign keys from synthesized
// tables to the source and attribute tables. The referenced tables must
// exist and use an integer "id" primary key. Disabled by default.
func WithExternalForeignKeys(b bool) MigrateOption {
	return func(a *Atlas) {
		a.withExternalKeys = b
	}
}

// WithDropColumn sets the columns dropping option to the migration.
// Defaults to false.
func WithDropColumn(b bool) MigrateOption {
	return func(a *Atlas) {
		a.dropColumns = b
	}
}

// WithDropIndex sets the indexes dropping option to the migration.
// Defaults to false.
func WithDropIndex(b bool) MigrateOption {
	return func(a *Atlas) {
		a.dropIndexes = b
	}
}

// WithDiffHook adds a list of DiffHook to the schema migration.
func WithDiffHook(hooks ...DiffHook) MigrateOption {
	return func(a *Atlas) {
		a.diffHooks = append(a.diffHooks, hooks...)
	}
}

// WithLogger sets the logger reporting applied changes.
func WithLogger(l *slog.Logger) MigrateOption {
	return func(a *Atlas) {
		a.log = l
	}
}

// Atlas atlas migration engine.
type Atlas struct {
	atDriver         migrate.Driver
	dialect          string
	schema           string
	withForeignKeys  bool
	withExternalKeys bool
	dropColumns      bool
	dropIndexes      bool
	diffHooks        []DiffHook
	log              *slog.Logger
}

// NewMigrate creates a new Atlas form the given dialect.Driver. The driver
// must expose ExecContext and QueryContext, as dialect/sql drivers do.
func NewMigrate(drv dialect.Driver, opts ...MigrateOption) (*Atlas, error) {
	a := &Atlas{dialect: drv.Dialect(), withForeignKeys: true, log: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	eq, ok := drv.(schema.ExecQuerier)
	if !ok {
		return nil, fmt.Errorf("sql/schema: driver %T does not implement ExecQuerier", drv)
	}
	var err error
	switch a.dialect {
	case dialect.SQLite:
		a.atDriver, err = sqlite.Open(eq)
	case dialect.Postgres:
		a.atDriver, err = postgres.Open(eq)
	case dialect.MySQL:
		a.atDriver, err = mysql.Open(eq)
	default:
		err = fmt.Errorf("sql/schema: unsupported dialect %q", a.dialect)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create creates or alters the tables of the given types. External types
// are only referenced.
func (a *Atlas) Create(ctx context.Context, types ...*graph.Type) error {
	changes, err := a.changes(ctx, types)
	if err != nil || len(changes) == 0 {
		return err
	}
	if err := a.atDriver.ApplyChanges(ctx, changes); err != nil {
		return fmt.Errorf("sql/schema: applying changes: %w", err)
	}
	a.log.InfoContext(ctx, "schema migrated", "dialect", a.dialect, "changes", len(changes))
	return nil
}

// Plan returns the statements Create would execute, without applying them.
func (a *Atlas) Plan(ctx context.Context, types ...*graph.Type) ([]string, error) {
	changes, err := a.changes(ctx, types)
	if err != nil || len(changes) == 0 {
		return nil, err
	}
	plan, err := a.atDriver.PlanChanges(ctx, "digraph", changes)
	if err != nil {
		return nil, fmt.Errorf("sql/schema: planning changes: %w", err)
	}
	stmts := make([]string, 0, len(plan.Changes))
	for _, c := range plan.Changes {
		stmts = append(stmts, c.Cmd)
	}
	return stmts, nil
}

func (a *Atlas) changes(ctx context.Context, types []*graph.Type) ([]schema.Change, error) {
	desired, err := a.Tables(types...)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(desired))
	for i, t := range desired {
		names[i] = t.Name
	}
	current, err := a.atDriver.InspectSchema(ctx, a.schema, &schema.InspectOptions{Tables: names})
	if err != nil {
		return nil, fmt.Errorf("sql/schema: inspecting schema: %w", err)
	}
	var differ Differ = DiffFunc(func(current, desired *schema.Schema) ([]schema.Change, error) {
		return a.atDriver.SchemaDiff(current, desired)
	})
	for i := len(a.diffHooks) - 1; i >= 0; i-- {
		differ = a.diffHooks[i](differ)
	}
	changes, err := differ.Diff(current, schema.New(current.Name).AddTables(desired...))
	if err != nil {
		return nil, fmt.Errorf("sql/schema: computing diff: %w", err)
	}
	return a.filter(changes)
}

// filter rejects table drops, and column or index drops unless enabled.
func (a *Atlas) filter(changes []schema.Change) ([]schema.Change, error) {
	var (
		errs     []error
		filtered = make([]schema.Change, 0, len(changes))
	)
	for _, c := range changes {
		switch c := c.(type) {
		case *schema.DropTable:
			errs = append(errs, &ValidationError{Table: c.T.Name, Message: "table will be dropped", Breaking: true})
			continue
		case *schema.ModifyTable:
			c.Changes = slices.DeleteFunc(c.Changes, func(tc schema.Change) bool {
				switch tc := tc.(type) {
				case *schema.DropColumn:
					if !a.dropColumns {
						a.log.Warn("skipping column drop", "table", c.T.Name, "column", tc.C.Name)
						return true
					}
				case *schema.DropIndex:
					if !a.dropIndexes {
						a.log.Warn("skipping index drop", "table", c.T.Name, "index", tc.I.Name)
						return true
					}
				}
				return false
			})
			if len(c.Changes) == 0 {
				continue
			}
		}
		filtered = append(filtered, c)
	}
	return filtered, errors.Join(errs...)
}

// Tables converts the owned types to Atlas tables, in the given order.
func (a *Atlas) Tables(types ...*graph.Type) ([]*schema.Table, error) {
	byName := make(map[string]*graph.Type, len(types))
	for _, t := range types {
		byName[t.Name] = t
	}
	tables := make(map[string]*schema.Table)
	var owned []*schema.Table
	for _, t := range types {
		if t.External {
			continue
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tables[t.Name] = a.table(t)
		owned = append(owned, tables[t.Name])
	}
	if !a.withForeignKeys {
		return owned, nil
	}
	for _, t := range types {
		if t.External {
			continue
		}
		at := tables[t.Name]
		for _, f := range t.Fields {
			if !f.IsRef() {
				continue
			}
			ref, ok := tables[f.Ref]
			if !ok {
				rt, known := byName[f.Ref]
				if !a.withExternalKeys || !known {
					continue
				}
				ref = a.stub(rt)
				tables[f.Ref] = ref
			}
			c, _ := at.Column(f.Column())
			rc, _ := ref.Column(graph.IDColumn)
			fk := schema.NewForeignKey(fmt.Sprintf("%s_%s", at.Name, f.Column())).
				AddColumns(c).
				SetRefTable(ref).
				AddRefColumns(rc)
			if action := sqlschema.From(f.Annotations).OnDelete; action != "" {
				fk.SetOnDelete(schema.ReferenceOption(action))
			}
			at.AddForeignKeys(fk)
		}
	}
	return owned, nil
}

func (a *Atlas) table(t *graph.Type) *schema.Table {
	id := schema.NewIntColumn(graph.IDColumn, a.intType())
	switch a.dialect {
	case dialect.SQLite:
		id.AddAttrs(&sqlite.AutoIncrement{})
	case dialect.Postgres:
		id.AddAttrs(&postgres.Identity{Generation: "BY DEFAULT"})
	case dialect.MySQL:
		id.AddAttrs(&mysql.AutoIncrement{})
	}
	at := schema.NewTable(t.Table).AddColumns(id)
	at.SetPrimaryKey(schema.NewPrimaryKey(id))
	for _, f := range t.Fields {
		var c *schema.Column
		if f.Optional {
			c = schema.NewNullIntColumn(f.Column(), a.intType())
		} else {
			c = schema.NewIntColumn(f.Column(), a.intType())
		}
		if f.Comment != "" {
			c.SetComment(f.Comment)
		}
		at.AddColumns(c)
	}
	for _, idx := range t.UniqueIndexes() {
		ai := schema.NewUniqueIndex(idx.Name)
		for _, name := range idx.Columns {
			c, _ := at.Column(name)
			ai.AddColumns(c)
		}
		at.AddIndexes(ai)
	}
	return at
}

// stub returns a table holding only the primary key of an external type.
func (a *Atlas) stub(t *graph.Type) *schema.Table {
	id := schema.NewIntColumn(graph.IDColumn, a.intType())
	st := schema.NewTable(t.Table).AddColumns(id)
	st.SetPrimaryKey(schema.NewPrimaryKey(id))
	return st
}

func (a *Atlas) intType() string {
	if a.dialect == dialect.SQLite {
		return "integer"
	}
	return "bigint"
}
