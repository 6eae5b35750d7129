package sqlschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/digraph/dialect/sqlschema"
	"github.com/syssam/digraph/schema"
)

type other struct{}

func (other) Name() string { return "Other" }

func TestAnnotation_Merge(t *testing.T) {
	ant := sqlschema.Table("orders")
	a := ant.Merge(sqlschema.OnDelete(sqlschema.Cascade))
	assert.Equal(t, sqlschema.Annotation{Table: "orders", OnDelete: sqlschema.Cascade}, a)
	a = a.(sqlschema.Annotation).Merge(&sqlschema.Annotation{Table: "shop_orders"})
	assert.Equal(t, "shop_orders", a.(sqlschema.Annotation).Table)
	assert.Equal(t, sqlschema.Cascade, a.(sqlschema.Annotation).OnDelete)
	assert.Equal(t, ant, ant.Merge(other{}))
	assert.Equal(t, ant, ant.Merge((*sqlschema.Annotation)(nil)))
}

func TestFrom(t *testing.T) {
	a := sqlschema.From([]schema.Annotation{
		sqlschema.OnDelete(sqlschema.SetNull),
		other{},
		sqlschema.Table("events"),
	})
	assert.Equal(t, sqlschema.Annotation{Table: "events", OnDelete: sqlschema.SetNull}, a)
	assert.Equal(t, sqlschema.Annotation{}, sqlschema.From(nil))
}
