package sql

import (
	"testing"

	"github.com/syssam/digraph/dialect"
)

func BenchmarkInsertBuilder(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Dialect(dialect.Postgres).Insert("order_di_graph_edges").
			Columns("next_state_id", "attr_id").
			Values(int64(i), nil).
			Returning("id").
			Query()
	}
}

func BenchmarkSelectBuilder_Simple(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Dialect(dialect.Postgres).Select("id", "source_id").
			From("order_di_graphs").
			Where(EQ("source_id", int64(i))).
			Query()
	}
}

func BenchmarkSelectBuilder_In(b *testing.B) {
	ids := make([]any, 100)
	for i := range ids {
		ids[i] = int64(i)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Dialect(dialect.MySQL).Select("id", "next_state_id", "attr_id").
			From("order_di_graph_edges").
			Where(In("id", ids...)).
			OrderBy("id").
			Query()
	}
}

func BenchmarkUpdateBuilder(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Dialect(dialect.SQLite).Update("order_di_graph_edges").
			Set("attr_id", nil).
			Where(EQ("attr_id", int64(i))).
			Query()
	}
}

func BenchmarkDeleteBuilder(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Dialect(dialect.Postgres).Delete("order_di_graph_links").
			Where(And(EQ("node_id", int64(i)), EQ("edge_id", int64(i+1)))).
			Query()
	}
}
