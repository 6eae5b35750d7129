package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/digraph/dialect"
)

func TestBuilder(t *testing.T) {
	tests := []struct {
		name      string
		input     Querier
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select/sqlite",
			input: Dialect(dialect.SQLite).Select("id", "next_state_id").
				From("order_di_graph_edges").
				Where(In("id", int64(1), int64(2))).
				OrderBy("id"),
			wantQuery: "SELECT `id`, `next_state_id` FROM `order_di_graph_edges` WHERE `id` IN (?, ?) ORDER BY `id`",
			wantArgs:  []any{int64(1), int64(2)},
		},
		{
			name: "select/postgres",
			input: Dialect(dialect.Postgres).Select("id").
				From("order_di_graphs").
				Where(And(EQ("source_id", 1), NotNull("source_id"))).
				Limit(1),
			wantQuery: `SELECT "id" FROM "order_di_graphs" WHERE ("source_id" = $1) AND ("source_id" IS NOT NULL) LIMIT 1`,
			wantArgs:  []any{1},
		},
		{
			name:      "select/count",
			input:     Dialect(dialect.MySQL).Select("COUNT(*)").From("links").Where(NEQ("edge_id", 3)),
			wantQuery: "SELECT COUNT(*) FROM `links` WHERE `edge_id` <> ?",
			wantArgs:  []any{3},
		},
		{
			name:      "select/for_update",
			input:     Dialect(dialect.Postgres).Select("id").From("nodes").Where(EQ("id", 5)).ForUpdate(),
			wantQuery: `SELECT "id" FROM "nodes" WHERE "id" = $1 FOR UPDATE`,
			wantArgs:  []any{5},
		},
		{
			name:      "select/for_update/sqlite",
			input:     Dialect(dialect.SQLite).Select("id").From("nodes").Where(EQ("id", 5)).ForUpdate(),
			wantQuery: "SELECT `id` FROM `nodes` WHERE `id` = ?",
			wantArgs:  []any{5},
		},
		{
			name:      "select/empty_in",
			input:     Dialect(dialect.SQLite).Select().From("edges").Where(In("id")),
			wantQuery: "SELECT * FROM `edges` WHERE 1 = 0",
		},
		{
			name:      "insert/postgres",
			input:     Dialect("pgx").Insert("edges").Columns("next_state_id", "attr_id").Values(2, nil).Returning("id"),
			wantQuery: `INSERT INTO "edges" ("next_state_id", "attr_id") VALUES ($1, $2) RETURNING "id"`,
			wantArgs:  []any{2, nil},
		},
		{
			name:      "insert/returning_ignored",
			input:     Dialect(dialect.SQLite).Insert("edges").Columns("next_state_id").Values(2).Returning("id"),
			wantQuery: "INSERT INTO `edges` (`next_state_id`) VALUES (?)",
			wantArgs:  []any{2},
		},
		{
			name:      "insert/default_values",
			input:     Dialect(dialect.SQLite).Insert("nodes"),
			wantQuery: "INSERT INTO `nodes` DEFAULT VALUES",
		},
		{
			name:      "insert/default_values/mysql",
			input:     Dialect(dialect.MySQL).Insert("nodes"),
			wantQuery: "INSERT INTO `nodes` () VALUES ()",
		},
		{
			name: "update/null",
			input: Dialect(dialect.Postgres).Update("edges").
				Set("attr_id", nil).
				Set("next_state_id", 4).
				Where(EQ("attr_id", 7)).
				Where(IsNull("deleted")),
			wantQuery: `UPDATE "edges" SET "attr_id" = NULL, "next_state_id" = $1 WHERE ("attr_id" = $2) AND ("deleted" IS NULL)`,
			wantArgs:  []any{4, 7},
		},
		{
			name:      "delete",
			input:     Dialect(dialect.MySQL).Delete("links").Where(EQ("node_id", 1)),
			wantQuery: "DELETE FROM `links` WHERE `node_id` = ?",
			wantArgs:  []any{1},
		},
		{
			name:      "delete/all",
			input:     Dialect(dialect.SQLite).Delete("links"),
			wantQuery: "DELETE FROM `links`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := tt.input.Query()
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuilderQuote(t *testing.T) {
	pg := &Builder{dialect: dialect.Postgres}
	assert.Equal(t, `"orders"`, pg.Quote("orders"))
	assert.Equal(t, "*", pg.Quote("*"))
	assert.Equal(t, "COUNT(*)", pg.Quote("COUNT(*)"))

	my := &Builder{dialect: dialect.MySQL}
	assert.Equal(t, "`orders`", my.Quote("orders"))
	assert.Equal(t, dialect.MySQL, my.Dialect())
}

func TestAnd(t *testing.T) {
	assert.Nil(t, And())
	assert.Nil(t, And(nil, nil))
	p := EQ("id", 1)
	assert.Same(t, p, And(nil, p))
}
