package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/digraph/dialect/sqlschema"
	"github.com/syssam/digraph/schema"
)

type label string

func (label) Name() string { return "Label" }

func TestMerge(t *testing.T) {
	merged := schema.Merge([]schema.Annotation{
		sqlschema.Table("orders"),
		nil,
		label("first"),
		sqlschema.OnDelete(sqlschema.SetNull),
		label("second"),
	})
	assert.Len(t, merged, 2)
	assert.Equal(t, sqlschema.Annotation{Table: "orders", OnDelete: sqlschema.SetNull}, merged[sqlschema.AnnotationName])
	assert.Equal(t, label("second"), merged["Label"], "annotations without Merge are replaced")

	assert.Empty(t, schema.Merge(nil))
}
