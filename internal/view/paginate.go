package view

// Page is one fixed-size slice of a list.
type Page[T any] struct {
	Number     int
	Size       int
	TotalItems int
	TotalPages int
	Start      int
	End        int
	Items      []T
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// Paginate returns the requested page, clamped into [1, TotalPages].
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	n := len(items)

	totalPages := (n + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	safe := page
	if safe < 1 {
		safe = 1
	}
	if safe > totalPages {
		safe = totalPages
	}

	start := (safe - 1) * size
	end := start + size
	if end > n {
		end = n
	}

	return Page[T]{
		Number:     safe,
		Size:       size,
		TotalItems: n,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		Items:      items[start:end],
	}
}
