// Package grouping groups slices by a derived key while keeping the order in
// which keys and items were first seen.
package grouping

// Group is one key together with the items that mapped to it, in input order.
type Group[K comparable, V any] struct {
	Key   K
	Items []V
}

// By groups items by key. Groups are returned in first-seen key order.
func By[K comparable, V any](items []V, key func(V) K) []Group[K, V] {
	index := make(map[K]int)
	var groups []Group[K, V]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, V]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Total is a key with an aggregated value.
type Total[K comparable, N int | int64 | float64] struct {
	Key   K
	Value N
}

// Sum reduces every group to the sum of value(item), keeping group order.
func Sum[K comparable, V any, N int | int64 | float64](groups []Group[K, V], value func(V) N) []Total[K, N] {
	out := make([]Total[K, N], 0, len(groups))
	for _, g := range groups {
		var total N
		for _, item := range g.Items {
			total += value(item)
		}
		out = append(out, Total[K, N]{Key: g.Key, Value: total})
	}
	return out
}
