package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/internal/policy"
	"github.com/emzola/librarian/internal/validator"
	"github.com/emzola/librarian/repository"
)

type borrowings interface {
	CreateBorrowing(ctx context.Context, user *data.User, bookID int64, expectedReturnDate data.Date) (*data.Borrowing, error)
	ReturnBorrowing(ctx context.Context, user *data.User, borrowingID int64, actualReturnDate *data.Date) (*data.Borrowing, error)
	GetBorrowing(ctx context.Context, user *data.User, borrowingID int64) (*data.Borrowing, error)
	ListBorrowings(ctx context.Context, user *data.User, q data.BorrowingQuery, filters data.Filters) ([]*data.Borrowing, data.Metadata, error)
	GetBorrowingOwner(ctx context.Context, borrowingID int64) (int64, error)
}

// CreateBorrowing service lends a book to user. The inventory check and the
// inventory decrement happen in the same atomic unit as the insert, so the book
// can never be lent out more often than it is stocked.
func (s *service) CreateBorrowing(ctx context.Context, user *data.User, bookID int64, expectedReturnDate data.Date) (*data.Borrowing, error) {
	if err := policy.Authorize(user, policy.Borrowings, policy.Create); err != nil {
		return nil, policyError(err)
	}
	var (
		borrowing *data.Borrowing
		book      *data.Book
	)
	err := s.repo.Atomically(ctx, func(tx repository.Tx) error {
		today := s.today()
		var err error
		book, err = tx.GetBookForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if err := validateCreation(book, expectedReturnDate, today); err != nil {
			return err
		}
		borrowing = &data.Borrowing{
			BorrowDate:         today,
			ExpectedReturnDate: expectedReturnDate,
			BookID:             book.ID,
			UserID:             user.ID,
		}
		if err := tx.InsertBorrowing(ctx, borrowing); err != nil {
			return err
		}
		book.Inventory, err = tx.AdjustBookInventory(ctx, book.ID, -1)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, fieldError("book", "must refer to an existing book")
		case errors.Is(err, repository.ErrInventoryExhausted):
			v := validator.New()
			data.ValidateBookInventory(v, &data.Book{})
			return nil, failedValidationOf(ErrEmptyInventory, v)
		default:
			return nil, err
		}
	}
	s.logger.PrintDebug("borrowing created", map[string]string{
		"borrowing_id": strconv.FormatInt(borrowing.ID, 10),
		"book_id":      strconv.FormatInt(book.ID, 10),
		"inventory":    strconv.Itoa(book.Inventory),
	})
	s.notify(user.Email, "borrowing_created.tmpl", map[string]any{
		"userName":           firstName(user.Name),
		"bookTitle":          book.Title,
		"borrowDate":         borrowing.BorrowDate.String(),
		"expectedReturnDate": borrowing.ExpectedReturnDate.String(),
		"dailyFee":           book.DailyFee.String(),
		"borrowingID":        borrowing.ID,
	})
	return borrowing, nil
}

// ReturnBorrowing service closes an active borrowing and puts the book back into
// the inventory. Staff may return any borrowing, other users only their own.
func (s *service) ReturnBorrowing(ctx context.Context, user *data.User, borrowingID int64, actualReturnDate *data.Date) (*data.Borrowing, error) {
	if err := policy.Authorize(user, policy.Borrowings, policy.Return); err != nil {
		return nil, policyError(err)
	}
	var (
		borrowing *data.Borrowing
		book      *data.Book
	)
	err := s.repo.Atomically(ctx, func(tx repository.Tx) error {
		today := s.today()
		var err error
		borrowing, err = tx.GetBorrowingForUpdate(ctx, borrowingID)
		if err != nil {
			return err
		}
		if err := policy.CanReturn(user, borrowing); err != nil {
			return policyError(err)
		}
		if err := validateReturn(borrowing, actualReturnDate, today); err != nil {
			return err
		}
		borrowing.ActualReturnDate = &today
		if err := tx.CloseBorrowing(ctx, borrowing); err != nil {
			return err
		}
		book, err = tx.GetBookForUpdate(ctx, borrowing.BookID)
		if err != nil {
			return err
		}
		book.Inventory, err = tx.AdjustBookInventory(ctx, book.ID, 1)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	s.logger.PrintDebug("borrowing returned", map[string]string{
		"borrowing_id": strconv.FormatInt(borrowing.ID, 10),
		"book_id":      strconv.FormatInt(book.ID, 10),
		"inventory":    strconv.Itoa(book.Inventory),
	})
	if owner, err := s.repo.GetUserByID(ctx, borrowing.UserID); err == nil {
		s.notify(owner.Email, "borrowing_returned.tmpl", map[string]any{
			"userName":           firstName(owner.Name),
			"bookTitle":          book.Title,
			"actualReturnDate":   borrowing.ActualReturnDate.String(),
			"expectedReturnDate": borrowing.ExpectedReturnDate.String(),
			"borrowingID":        borrowing.ID,
		})
	}
	return borrowing, nil
}

// GetBorrowing service retrieves a borrowing visible to user.
func (s *service) GetBorrowing(ctx context.Context, user *data.User, borrowingID int64) (*data.Borrowing, error) {
	if err := policy.Authorize(user, policy.Borrowings, policy.Read); err != nil {
		return nil, policyError(err)
	}
	borrowing, err := s.repo.GetBorrowing(ctx, borrowingID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if err := policy.CanView(user, borrowing); err != nil {
		return nil, policyError(err)
	}
	return borrowing, nil
}

// ListBorrowings service retrieves a paginated list of the borrowings user may
// see. The scope is applied to the query before it runs; a request for another
// user's borrowings by a non staff user yields an empty page.
func (s *service) ListBorrowings(ctx context.Context, user *data.User, q data.BorrowingQuery, filters data.Filters) ([]*data.Borrowing, data.Metadata, error) {
	scope, err := policy.ScopeBorrowings(user)
	if err != nil {
		return nil, data.Metadata{}, policyError(err)
	}
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v)
	}
	q, ok := scope.Narrow(q)
	if !ok {
		return []*data.Borrowing{}, data.Metadata{}, nil
	}
	return s.repo.GetAllBorrowings(ctx, q, filters)
}

// GetBorrowingOwner service returns the id of the user a borrowing belongs to.
func (s *service) GetBorrowingOwner(ctx context.Context, borrowingID int64) (int64, error) {
	borrowing, err := s.repo.GetBorrowing(ctx, borrowingID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return 0, ErrRecordNotFound
		default:
			return 0, err
		}
	}
	return borrowing.UserID, nil
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}
