package memory

import (
	"context"
	"errors"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/repository"
)

// tx operates on a staged state; the store lock is held for its whole lifetime.
type tx struct {
	st *state
}

func (t *tx) GetBookForUpdate(_ context.Context, bookID int64) (*data.Book, error) {
	b, ok := t.st.book(bookID)
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	return b, nil
}

func (t *tx) GetBorrowingForUpdate(_ context.Context, borrowingID int64) (*data.Borrowing, error) {
	b, ok := t.st.borrowings[borrowingID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	b = copyBorrowing(b)
	return &b, nil
}

func (t *tx) InsertBorrowing(_ context.Context, borrowing *data.Borrowing) error {
	if _, ok := t.st.books[borrowing.BookID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := t.st.users[borrowing.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	t.st.lastBorrowingID++
	borrowing.ID = t.st.lastBorrowingID
	t.st.borrowings[borrowing.ID] = copyBorrowing(*borrowing)
	return nil
}

func (t *tx) CloseBorrowing(_ context.Context, borrowing *data.Borrowing) error {
	if borrowing.ActualReturnDate == nil {
		return errors.New("close borrowing: missing actual return date")
	}
	stored, ok := t.st.borrowings[borrowing.ID]
	if !ok || !stored.IsActive() {
		return repository.ErrEditConflict
	}
	d := *borrowing.ActualReturnDate
	stored.ActualReturnDate = &d
	t.st.borrowings[borrowing.ID] = stored
	return nil
}

func (t *tx) AdjustBookInventory(_ context.Context, bookID int64, delta int) (int, error) {
	b, ok := t.st.books[bookID]
	if !ok || b.Inventory+delta < 0 {
		return 0, repository.ErrInventoryExhausted
	}
	b.Inventory += delta
	b.Version++
	t.st.books[bookID] = b
	return b.Inventory, nil
}
