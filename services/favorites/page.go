package favorites

// PageSize is the number of favorites shown per page.
const PageSize = 20

// PageResult is one page of a client-side paginated list.
type PageResult[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// Page slices items into pages of size (PageSize when size < 1). The
// requested page is clamped into [1, TotalPages]; an empty list is page 1 of 0.
func Page[T any](items []T, page, size int) PageResult[T] {
	if size < 1 {
		size = PageSize
	}
	total := (len(items) + size - 1) / size

	if total == 0 {
		return PageResult[T]{Items: []T{}, Page: 1}
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return PageResult[T]{Items: items[start:end], Page: page, TotalPages: total}
}
