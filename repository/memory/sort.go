package memory

import (
	"cmp"
	"slices"

	"github.com/emzola/librarian/data"
)

type compareFunc[T any] func(a, b T) int

// page sorts items by the filter's column, breaking ties by id, and cuts out the
// requested page.
func page[T any](items []T, filters data.Filters, columns map[string]compareFunc[T], id func(T) int64) ([]T, data.Metadata) {
	by, ok := columns[filters.SortColumn()]
	if !ok {
		panic("unsupported sort column: " + filters.SortColumn())
	}
	desc := filters.SortDirection() == "DESC"
	slices.SortStableFunc(items, func(a, b T) int {
		c := by(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
	metadata := data.CalculateMetadata(len(items), filters.Page, filters.PageSize)
	start := filters.Offset()
	if start >= len(items) {
		return []T{}, metadata
	}
	end := start + filters.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], metadata
}
