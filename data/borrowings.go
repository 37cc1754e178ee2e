package data

import (
	"encoding/json"

	"github.com/emzola/librarian/internal/validator"
)

// Borrowing defines a lending of one copy of a book to a user. The borrowing is
// active until ActualReturnDate is set, which happens exactly once.
type Borrowing struct {
	ID                 int64 `json:"id"`
	BorrowDate         Date  `json:"borrow_date"`
	ExpectedReturnDate Date  `json:"expected_return_date"`
	ActualReturnDate   *Date `json:"actual_return_date"`
	BookID             int64 `json:"book"`
	UserID             int64 `json:"user"`
}

// IsActive reports whether the book has not been returned yet.
func (b *Borrowing) IsActive() bool {
	return b.ActualReturnDate == nil
}

// MarshalJSON adds the derived is_active attribute.
func (b Borrowing) MarshalJSON() ([]byte, error) {
	type alias Borrowing
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{alias(b), b.IsActive()})
}

// BorrowingQuery holds the optional list filters for borrowings.
type BorrowingQuery struct {
	UserID   *int64
	IsActive *bool
}

// Matches reports whether a borrowing satisfies the query.
func (q BorrowingQuery) Matches(b *Borrowing) bool {
	if q.UserID != nil && b.UserID != *q.UserID {
		return false
	}
	if q.IsActive != nil && b.IsActive() != *q.IsActive {
		return false
	}
	return true
}

// ValidateExpectedReturnDate checks that a new borrowing is not due before today.
func ValidateExpectedReturnDate(v *validator.Validator, expected, today Date) {
	v.Check(!expected.IsZero(), "expected_return_date", "must be provided")
	v.Check(!expected.Before(today), "expected_return_date", "can't be any sooner than "+today.String())
}

// ValidateBookInventory checks that at least one copy of the book is available.
func ValidateBookInventory(v *validator.Validator, book *Book) {
	v.Check(book.Inventory > 0, "book_inventory", "borrowing cannot be created, because the inventory of this book is 0")
}

// ValidateActualReturnDate checks that a supplied return date is today's date.
func ValidateActualReturnDate(v *validator.Validator, candidate, today Date) {
	v.Check(candidate == today, "actual_return_date", candidate.String()+" cannot be earlier or later than "+today.String())
}
