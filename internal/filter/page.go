package filter

// Paginate slices items for a 1-based page. size <= 0 returns everything.
func Paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
