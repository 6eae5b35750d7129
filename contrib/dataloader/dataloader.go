// Package dataloader provides generic helpers for batch loading records by
// key, as done when a built graph loads the source records of its nodes
// in one call.
//
//	func loadOrders(ctx context.Context, ids []int64) ([]*Order, error) {
//	    orders, err := repo.Filter(ctx, storage.IDIn(ids...))
//	    if err != nil {
//	        return nil, err
//	    }
//	    ordered := dataloader.OrderByKeysNoError(ids, orders, (*Order).GetID)
//	    return ordered, nil
//	}
package dataloader

import (
	"errors"
)

// ErrNotFound is returned when a record is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from a record.
type KeyFunc[K comparable, V any] func(V) K

// OrderByKeys reorders records to match the order of requested keys.
// Missing records are represented as zero values with ErrNotFound at the
// same index. The result always has the length of keys.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeysNoError reorders records to match the order of requested keys.
// Returns zero values for missing records without errors.
func OrderByKeysNoError[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) []V {
	result, _ := OrderByKeys(keys, values, keyFn)
	return result
}

// GroupByKey groups records by a key function, keeping their order within
// each group. Useful for join records, such as the links of graph nodes.
//
//	links, _ := repo.Filter(ctx, storage.In("node_id", ids...))
//	byNode := dataloader.GroupByKey(links, func(l *Link) int64 { return l.NodeID })
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys returns the groups of the requested keys in order.
// Keys without a group get a nil slice.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}
