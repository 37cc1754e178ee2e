package dto

import "github.com/emzola/librarian/data"

// CreateBorrowingRequestBody defines the request body for CreateBorrowing service.
type CreateBorrowingRequestBody struct {
	Book               int64     `json:"book"`
	ExpectedReturnDate data.Date `json:"expected_return_date"`
}

// ReturnBorrowingRequestBody defines the optional request body for ReturnBorrowing service.
type ReturnBorrowingRequestBody struct {
	ActualReturnDate *data.Date `json:"actual_return_date"`
}

// QsListBorrowings defines the query strings used for listing borrowings.
type QsListBorrowings struct {
	Query   data.BorrowingQuery
	Filters data.Filters
}
