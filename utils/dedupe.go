package utils

// DedupeBy keeps the first element for every key, preserving order. Joined
// rows (user -> roles -> machines) repeat the same record once per path.
func DedupeBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]bool, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, item)
	}
	return out
}
