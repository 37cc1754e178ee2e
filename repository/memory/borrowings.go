package memory

import (
	"cmp"
	"context"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/repository"
)

var borrowingColumns = map[string]compareFunc[*data.Borrowing]{
	"id":                   func(a, b *data.Borrowing) int { return cmp.Compare(a.ID, b.ID) },
	"borrow_date":          func(a, b *data.Borrowing) int { return compareDates(a.BorrowDate, b.BorrowDate) },
	"expected_return_date": func(a, b *data.Borrowing) int { return compareDates(a.ExpectedReturnDate, b.ExpectedReturnDate) },
}

func compareDates(a, b data.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func (s *Store) GetBorrowing(_ context.Context, borrowingID int64) (*data.Borrowing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.state.borrowings[borrowingID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	b = copyBorrowing(b)
	return &b, nil
}

func (s *Store) GetAllBorrowings(_ context.Context, q data.BorrowingQuery, filters data.Filters) ([]*data.Borrowing, data.Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	borrowings := []*data.Borrowing{}
	for _, b := range s.state.borrowings {
		if q.Matches(&b) {
			b := copyBorrowing(b)
			borrowings = append(borrowings, &b)
		}
	}
	result, metadata := page(borrowings, filters, borrowingColumns, func(b *data.Borrowing) int64 { return b.ID })
	return result, metadata, nil
}
