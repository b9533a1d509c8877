package utils

// Dedupe removes duplicates, preserving first-occurrence order.
func Dedupe[T comparable](items []T) []T {
	seen := make(map[T]bool, len(items))
	dst := make([]T, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		dst = append(dst, item)
	}
	return dst
}
