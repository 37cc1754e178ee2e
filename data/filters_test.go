package data

import (
	"testing"

	"github.com/emzola/librarian/internal/validator"
	"github.com/stretchr/testify/assert"
)

func TestCalculateMetadata(t *testing.T) {
	assert.Equal(t, Metadata{}, CalculateMetadata(0, 1, 20))
	assert.Equal(t, Metadata{CurrentPage: 2, PageSize: 20, FirstPage: 1, LastPage: 3, TotalRecords: 41}, CalculateMetadata(41, 2, 20))
}

func TestFilters(t *testing.T) {
	f := Filters{Page: 3, PageSize: 10, Sort: "-title", SortSafeList: []string{"title", "-title"}}
	assert.Equal(t, "title", f.SortColumn())
	assert.Equal(t, "DESC", f.SortDirection())
	assert.Equal(t, 20, f.Offset())

	v := validator.New()
	ValidateFilters(v, Filters{Page: 0, PageSize: 10, Sort: "isbn", SortSafeList: []string{"id"}})
	assert.Contains(t, v.Errors, "page")
	assert.Contains(t, v.Errors, "sort")
}
