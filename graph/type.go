package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-openapi/inflect"

	"github.com/syssam/digraph/dialect/sqlschema"
	"github.com/syssam/digraph/schema"
	"github.com/syssam/digraph/schema/edge"
	"github.com/syssam/digraph/schema/field"
)

// IDColumn is the primary key column of every record type.
const IDColumn = "id"

// Type represents one persisted record type: a registered source or
// attribute type, or one of the records synthesized for it.
type Type struct {
	Name    string              // type name, e.g. "OrderDiGraphEdge".
	Table   string              // storage table.
	Fields  []*field.Descriptor // fields, without the primary key.
	Edges   []*edge.Descriptor  // association edges.
	Indexes []*Index            // indexes on field columns.
	// External marks types owned by the caller. Their tables are
	// referenced but never created or migrated.
	External bool
}

// Index describes an index over columns of a type.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// NewType returns an external type with the given name. The table defaults
// to the snake_case plural of the name and can be overridden with
// sqlschema.Table.
//
//	graph.NewType("Order")                              // orders
//	graph.NewType("Order", sqlschema.Table("shop_orders"))
func NewType(name string, ants ...schema.Annotation) *Type {
	t := &Type{Name: name, Table: Table(name), External: true}
	if ant := sqlschema.From(ants); ant.Table != "" {
		t.Table = ant.Table
	}
	return t
}

// Snake converts the given type name to snake_case.
//
//	Snake("OrderDiGraph") // order_di_graph
func Snake(s string) string {
	return inflect.Underscore(s)
}

// Table returns the default table name of a type name.
//
//	Table("OrderDiGraphEdge") // order_di_graph_edges
func Table(name string) string {
	return inflect.Pluralize(Snake(name))
}

// Columns returns all storage columns of the type, the primary key first.
func (t *Type) Columns() []string {
	columns := make([]string, 0, len(t.Fields)+1)
	columns = append(columns, IDColumn)
	for _, f := range t.Fields {
		columns = append(columns, f.Column())
	}
	return columns
}

// Field returns the field with the given name.
func (t *Type) Field(name string) (*field.Descriptor, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Column returns the storage column of the named field. It panics if the
// field does not exist, since columns are only looked up on synthesized types.
func (t *Type) Column(name string) string {
	f, ok := t.Field(name)
	if !ok {
		panic(fmt.Sprintf("graph: type %s has no field %q", t.Name, name))
	}
	return f.Column()
}

// Edge returns the association edge with the given name.
func (t *Type) Edge(name string) (*edge.Descriptor, bool) {
	for _, e := range t.Edges {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Nullable reports if the column accepts NULL values.
func (t *Type) Nullable(column string) bool {
	for _, f := range t.Fields {
		if f.Column() == column {
			return f.Optional
		}
	}
	return false
}

// UniqueIndexes returns the unique indexes of the type, including the ones
// implied by unique fields.
func (t *Type) UniqueIndexes() []*Index {
	var idx []*Index
	for _, f := range t.Fields {
		if f.Unique {
			idx = append(idx, &Index{Name: t.Table + "_" + f.Column() + "_key", Columns: []string{f.Column()}, Unique: true})
		}
	}
	for _, i := range t.Indexes {
		if i.Unique {
			idx = append(idx, i)
		}
	}
	return idx
}

// HasColumn reports if column is one of the type columns.
func (t *Type) HasColumn(column string) bool {
	return slices.Contains(t.Columns(), column)
}

// Validate checks the type for builder errors and duplicate columns.
func (t *Type) Validate() error {
	var errs []error
	if t.Name == "" || t.Table == "" {
		errs = append(errs, errors.New("graph: type name and table are required"))
	}
	seen := map[string]bool{IDColumn: true}
	for _, f := range t.Fields {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("graph: type %s: %w", t.Name, f.Err))
		}
		if seen[f.Column()] {
			errs = append(errs, fmt.Errorf("graph: type %s: duplicate column %q", t.Name, f.Column()))
		}
		seen[f.Column()] = true
	}
	for _, e := range t.Edges {
		if e.Err != nil {
			errs = append(errs, fmt.Errorf("graph: type %s: %w", t.Name, e.Err))
		}
	}
	return errors.Join(errs...)
}

func (t *Type) String() string { return t.Name }
