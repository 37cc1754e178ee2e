package service

import (
	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/internal/validator"
)

// validateCreation decides whether book may be lent until expected when the
// current library date is today. The date is checked before the inventory.
func validateCreation(book *data.Book, expected, today data.Date) error {
	v := validator.New()
	if data.ValidateExpectedReturnDate(v, expected, today); !v.Valid() {
		return failedValidationOf(ErrInvalidDate, v)
	}
	if data.ValidateBookInventory(v, book); !v.Valid() {
		return failedValidationOf(ErrEmptyInventory, v)
	}
	return nil
}

// validateReturn decides whether borrowing may be closed today. A client supplied
// candidate date must equal today.
func validateReturn(borrowing *data.Borrowing, candidate *data.Date, today data.Date) error {
	v := validator.New()
	if !borrowing.IsActive() {
		v.AddError("actual_return_date", "this borrowing has already been returned on "+borrowing.ActualReturnDate.String())
		return failedValidationOf(ErrAlreadyReturned, v)
	}
	if candidate == nil {
		return nil
	}
	if data.ValidateActualReturnDate(v, *candidate, today); !v.Valid() {
		return failedValidationOf(ErrInvalidDate, v)
	}
	return nil
}
