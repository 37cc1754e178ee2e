package dto

import "github.com/emzola/librarian/data"

// BookRequestBody defines the request body for creating and updating a book. The
// fields are set to a pointer type to allow partial updates based on whether the
// value is nil.
type BookRequestBody struct {
	Title     *string   `json:"title"`
	Authors   []int64   `json:"authors"`
	Cover     *string   `json:"cover"`
	Inventory *int      `json:"inventory"`
	DailyFee  *data.Fee `json:"daily_fee"`
}

// QsListBooks defines the query strings used for listing books.
type QsListBooks struct {
	Title   string
	Filters data.Filters
}
