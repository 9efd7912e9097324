// Package mapx provides ordered iteration over Go maps.
package mapx

import (
	"cmp"
	"maps"
	"slices"
)

// SortedKeys returns the keys of m in ascending order.
// Returns nil for a nil map.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	if m == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}
