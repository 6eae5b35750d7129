package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/digraph/dialect"
)

// Querier wraps the basic Query method that is implemented
// by the different builders in this file.
type Querier interface {
	// Query returns the query representation of the element
	// and its arguments (if any).
	Query() (string, []any)
}

// Builder is the base query builder for the sql dsl. Statements embed it
// to share identifier quoting and dialect-aware placeholders.
type Builder struct {
	sb      *strings.Builder
	dialect string
	args    []any
}

func (b *Builder) init() {
	if b.sb == nil {
		b.sb = &strings.Builder{}
	}
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string { return b.dialect }

// WriteString writes the given string as is.
func (b *Builder) WriteString(s string) *Builder {
	b.init()
	b.sb.WriteString(s)
	return b
}

// Ident writes the given identifier quoted for the builder dialect.
func (b *Builder) Ident(s string) *Builder {
	return b.WriteString(b.Quote(s))
}

// IdentComma writes the given identifiers separated by commas.
func (b *Builder) IdentComma(s ...string) *Builder {
	for i := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(s[i])
	}
	return b
}

// Quote quotes the given identifier with the characters of the builder dialect.
// Expressions (for example COUNT(*)) are returned as is.
func (b *Builder) Quote(ident string) string {
	if ident == "*" || strings.ContainsAny(ident, "(`\" ") {
		return ident
	}
	if b.dialect == dialect.Postgres {
		return strconv.Quote(ident)
	}
	return "`" + ident + "`"
}

// Arg appends an input argument to the builder and writes its placeholder.
func (b *Builder) Arg(a any) *Builder {
	b.args = append(b.args, a)
	if b.dialect == dialect.Postgres {
		return b.WriteString("$" + strconv.Itoa(len(b.args)))
	}
	return b.WriteString("?")
}

// Args appends a list of arguments separated by commas.
func (b *Builder) Args(a ...any) *Builder {
	for i := range a {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(a[i])
	}
	return b
}

// Query implements the Querier interface.
func (b *Builder) Query() (string, []any) {
	b.init()
	return b.sb.String(), b.args
}

// DialectBuilder prefixes all root builders with the Dialect function.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: dialect.Normalize(name)}
}

// Select creates a Selector for the configured dialect.
//
//	Dialect(dialect.Postgres).Select("id").From("users").Where(EQ("name", "a8m"))
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return &Selector{Builder: Builder{dialect: d.dialect}, columns: columns}
}

// Insert creates an InsertBuilder for the configured dialect.
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return &InsertBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Update creates an UpdateBuilder for the configured dialect.
func (d *DialectBuilder) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Delete creates a DeleteBuilder for the configured dialect.
func (d *DialectBuilder) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{Builder: Builder{dialect: d.dialect}, table: table}
}

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	Builder
	columns []string
	table   string
	where   *Predicate
	order   []string
	limit   *int
	lock    bool
}

// From sets the source table of the selector.
func (s *Selector) From(table string) *Selector {
	s.table = table
	return s
}

// Where sets or appends the given predicate to the statement.
func (s *Selector) Where(p *Predicate) *Selector {
	s.where = And(s.where, p)
	return s
}

// OrderBy appends ascending order terms to the statement.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit adds the `LIMIT` clause to the statement.
func (s *Selector) Limit(n int) *Selector {
	s.limit = &n
	return s
}

// ForUpdate locks the selected rows until the end of the transaction.
// SQLite has no row-level locks and ignores the clause.
func (s *Selector) ForUpdate() *Selector {
	s.lock = true
	return s
}

// Query returns the query representation of the `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	b := &s.Builder
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteString("*")
	} else {
		b.IdentComma(s.columns...)
	}
	b.WriteString(" FROM ").Ident(s.table)
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.build(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ").IdentComma(s.order...)
	}
	if s.limit != nil {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(*s.limit))
	}
	if s.lock && s.dialect != dialect.SQLite {
		b.WriteString(" FOR UPDATE")
	}
	return b.Query()
}

// InsertBuilder is a builder for the `INSERT INTO` statement.
type InsertBuilder struct {
	Builder
	table     string
	columns   []string
	values    []any
	returning []string
}

// Columns sets the columns of the insert statement.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values sets the values of the insert statement.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values...)
	return i
}

// Returning adds the `RETURNING` clause to the insert statement.
// It is honored by Postgres only; other dialects read LastInsertId.
func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

// Query returns query representation of an `INSERT INTO` statement.
func (i *InsertBuilder) Query() (string, []any) {
	b := &i.Builder
	b.WriteString("INSERT INTO ").Ident(i.table)
	switch {
	case len(i.columns) > 0:
		b.WriteString(" (").IdentComma(i.columns...).WriteString(") VALUES (").Args(i.values...).WriteString(")")
	case i.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}
	if len(i.returning) > 0 && i.dialect == dialect.Postgres {
		b.WriteString(" RETURNING ").IdentComma(i.returning...)
	}
	return b.Query()
}

// UpdateBuilder is a builder for `UPDATE` statement.
type UpdateBuilder struct {
	Builder
	table   string
	columns []string
	values  []any
	where   *Predicate
}

// Set sets a column to a given value. A nil value sets the column to NULL.
func (u *UpdateBuilder) Set(column string, v any) *UpdateBuilder {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where adds a where predicate for update statement.
func (u *UpdateBuilder) Where(p *Predicate) *UpdateBuilder {
	u.where = And(u.where, p)
	return u
}

// Query returns query representation of an `UPDATE` statement.
func (u *UpdateBuilder) Query() (string, []any) {
	b := &u.Builder
	b.WriteString("UPDATE ").Ident(u.table).WriteString(" SET ")
	for i, c := range u.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c).WriteString(" = ")
		if u.values[i] == nil {
			b.WriteString("NULL")
		} else {
			b.Arg(u.values[i])
		}
	}
	if u.where != nil {
		b.WriteString(" WHERE ")
		u.where.build(b)
	}
	return b.Query()
}

// DeleteBuilder is a builder for `DELETE` statement.
type DeleteBuilder struct {
	Builder
	table string
	where *Predicate
}

// Where appends a where predicate to the `DELETE` statement.
func (d *DeleteBuilder) Where(p *Predicate) *DeleteBuilder {
	d.where = And(d.where, p)
	return d
}

// Query returns the query representation of a `DELETE` statement.
func (d *DeleteBuilder) Query() (string, []any) {
	b := &d.Builder
	b.WriteString("DELETE FROM ").Ident(d.table)
	if d.where != nil {
		b.WriteString(" WHERE ")
		d.where.build(b)
	}
	return b.Query()
}
