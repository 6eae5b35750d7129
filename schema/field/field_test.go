package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/digraph/dialect/sqlschema"
	"github.com/syssam/digraph/schema/field"
)

func TestField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		build    func() *field.Descriptor
		validate func(t *testing.T, desc *field.Descriptor)
	}{
		{
			name:  "id",
			build: func() *field.Descriptor { return field.ID().Descriptor() },
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "id", desc.Column())
				assert.True(t, desc.Immutable)
				assert.False(t, desc.IsRef())
			},
		},
		{
			name: "int64",
			build: func() *field.Descriptor {
				return field.Int64("weight").Optional().Unique().StorageKey("w").Comment("edge weight").Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "w", desc.Column())
				assert.True(t, desc.Optional)
				assert.True(t, desc.Unique)
				assert.Equal(t, "edge weight", desc.Comment)
			},
		},
		{
			name:  "ref",
			build: func() *field.Descriptor { return field.Ref("next_state", "Order").Immutable().Descriptor() },
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "next_state_id", desc.Column())
				assert.Equal(t, "Order", desc.Ref)
				assert.True(t, desc.IsRef())
				assert.True(t, desc.Immutable)
				assert.False(t, desc.Optional)
			},
		},
		{
			name: "ref/annotations",
			build: func() *field.Descriptor {
				return field.Ref("attr", "Event").
					Optional().
					Unique().
					StorageKey("event").
					Comment("transition attribute").
					Annotations(sqlschema.OnDelete(sqlschema.Cascade), sqlschema.OnDelete(sqlschema.SetNull)).
					Descriptor()
			},
			validate: func(t *testing.T, desc *field.Descriptor) {
				assert.Equal(t, "event", desc.Column())
				assert.True(t, desc.Optional)
				assert.True(t, desc.Unique)
				assert.Equal(t, "transition attribute", desc.Comment)
				ant := desc.Annotation(sqlschema.AnnotationName)
				require.NotNil(t, ant)
				assert.Equal(t, sqlschema.SetNull, ant.(sqlschema.Annotation).OnDelete)
				assert.Nil(t, desc.Annotation("Comment"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			desc := tt.build()
			require.NoError(t, desc.Err)
			tt.validate(t, desc)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "NextState", "1st", "next-state"} {
		assert.Error(t, field.Int64(name).Descriptor().Err, name)
	}
	err := field.Ref("source", "").Descriptor().Err
	assert.ErrorContains(t, err, `missing target type for reference "source"`)

	err = field.Ref("Bad", "").Descriptor().Err
	assert.ErrorContains(t, err, `invalid name "Bad"`)
	assert.ErrorContains(t, err, "missing target type")
}
