// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	draws := []storage.DrawResult{{Date: "2024-07-25"}, {Date: "2024-07-26"}, {Date: "2024-07-25"}}
//	unique := sliceutil.Deduplicate(draws, func(d storage.DrawResult) string { return d.Date })
//	// Result: [{Date: "2024-07-25"}, {Date: "2024-07-26"}]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	if len(items) == 0 {
		return items
	}

	seen := make(map[K]struct{}, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, item)
	}

	return result
}

// Unique returns the distinct values of items in first-seen order.
// The input slice is never modified; a nil or empty input yields an empty, non-nil slice.
func Unique[T comparable](items []T) []T {
	if len(items) == 0 {
		return []T{}
	}
	return Deduplicate(items, func(v T) T { return v })
}

// Head returns at most n leading items and how many were left out.
// A non-positive n keeps everything.
func Head[T any](items []T, n int) (kept []T, dropped int) {
	if n <= 0 || len(items) <= n {
		return items, 0
	}
	return items[:n], len(items) - n
}
