package dataloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record is a test record.
type record struct {
	ID   int64
	Name string
}

func (r *record) GetID() int64 {
	return r.ID
}

// =============================================================================
// OrderByKeys Tests
// =============================================================================

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	t.Run("all keys found", func(t *testing.T) {
		t.Parallel()
		values := []*record{{ID: 3, Name: "shipped"}, {ID: 1, Name: "created"}, {ID: 2, Name: "paid"}}

		result, errs := OrderByKeys([]int64{1, 2, 3}, values, (*record).GetID)

		require.Len(t, result, 3)
		assert.Equal(t, "created", result[0].Name)
		assert.Equal(t, "paid", result[1].Name)
		assert.Equal(t, "shipped", result[2].Name)
		for _, err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("some keys missing", func(t *testing.T) {
		t.Parallel()
		values := []*record{{ID: 1, Name: "created"}, {ID: 3, Name: "shipped"}}

		result, errs := OrderByKeys([]int64{1, 2, 3, 4}, values, (*record).GetID)

		require.Len(t, result, 4)
		require.Len(t, errs, 4)
		assert.Equal(t, "created", result[0].Name)
		assert.Nil(t, result[1])
		assert.Equal(t, "shipped", result[2].Name)
		assert.Nil(t, result[3])
		assert.NoError(t, errs[0])
		assert.ErrorIs(t, errs[1], ErrNotFound)
		assert.ErrorIs(t, errs[3], ErrNotFound)
	})

	t.Run("duplicate keys", func(t *testing.T) {
		t.Parallel()
		values := []*record{{ID: 1, Name: "created"}}

		result, errs := OrderByKeys([]int64{1, 1}, values, (*record).GetID)

		assert.Equal(t, []*record{values[0], values[0]}, result)
		assert.Equal(t, []error{nil, nil}, errs)
	})

	t.Run("empty keys", func(t *testing.T) {
		t.Parallel()
		result, errs := OrderByKeys(nil, []*record{{ID: 1}}, (*record).GetID)
		assert.Empty(t, result)
		assert.Empty(t, errs)
	})
}

func TestOrderByKeysNoError(t *testing.T) {
	t.Parallel()
	result := OrderByKeysNoError([]int64{2, 5}, []*record{{ID: 2}}, (*record).GetID)
	require.Len(t, result, 2)
	assert.Equal(t, int64(2), result[0].ID)
	assert.Nil(t, result[1])
}

// =============================================================================
// GroupByKey Tests
// =============================================================================

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	type link struct {
		NodeID int64
		EdgeID int64
	}
	keyFn := func(l link) int64 { return l.NodeID }

	t.Run("groups by key", func(t *testing.T) {
		t.Parallel()
		links := []link{{1, 10}, {2, 11}, {1, 12}, {1, 13}}

		grouped := GroupByKey(links, keyFn)

		require.Len(t, grouped, 2)
		assert.Equal(t, []link{{1, 10}, {1, 12}, {1, 13}}, grouped[1])
		assert.Equal(t, []link{{2, 11}}, grouped[2])
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, GroupByKey([]link{}, keyFn))
	})

	t.Run("ordered groups", func(t *testing.T) {
		t.Parallel()
		grouped := GroupByKey([]link{{1, 10}, {2, 11}}, keyFn)

		ordered := OrderGroupsByKeys([]int64{2, 3, 1}, grouped)

		require.Len(t, ordered, 3)
		assert.Equal(t, []link{{2, 11}}, ordered[0])
		assert.Nil(t, ordered[1])
		assert.Equal(t, []link{{1, 10}}, ordered[2])
	})
}

func BenchmarkOrderByKeys(b *testing.B) {
	keys := make([]int64, 1000)
	values := make([]*record, 1000)
	for i := range keys {
		keys[i] = int64(i)
		values[len(values)-1-i] = &record{ID: int64(i)}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		OrderByKeys(keys, values, (*record).GetID)
	}
}
