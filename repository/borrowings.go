package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emzola/librarian/data"
)

type borrowings interface {
	GetBorrowing(ctx context.Context, borrowingID int64) (*data.Borrowing, error)
	GetAllBorrowings(ctx context.Context, q data.BorrowingQuery, filters data.Filters) ([]*data.Borrowing, data.Metadata, error)
}

// GetBorrowing retrieves a borrowing record by its ID.
func (r *repository) GetBorrowing(ctx context.Context, borrowingID int64) (*data.Borrowing, error) {
	if borrowingID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, borrow_date, expected_return_date, actual_return_date, book_id, user_id
		FROM borrowings
		WHERE id = $1`
	var borrowing data.Borrowing
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, borrowingID).Scan(
		&borrowing.ID,
		&borrowing.BorrowDate,
		&borrowing.ExpectedReturnDate,
		&borrowing.ActualReturnDate,
		&borrowing.BookID,
		&borrowing.UserID,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &borrowing, nil
}

// GetAllBorrowings retrieves a paginated list of borrowing records. A nil field
// of q leaves that dimension unfiltered.
func (r *repository) GetAllBorrowings(ctx context.Context, q data.BorrowingQuery, filters data.Filters) ([]*data.Borrowing, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, borrow_date, expected_return_date, actual_return_date, book_id, user_id
		FROM borrowings
		WHERE (user_id = $1 OR $1 IS NULL)
		AND ((actual_return_date IS NULL) = $2 OR $2 IS NULL)
		ORDER BY %s %s, id ASC
		LIMIT $3 OFFSET $4`,
		filters.SortColumn(), filters.SortDirection(),
	)
	var userID sql.NullInt64
	if q.UserID != nil {
		userID = sql.NullInt64{Int64: *q.UserID, Valid: true}
	}
	var isActive sql.NullBool
	if q.IsActive != nil {
		isActive = sql.NullBool{Bool: *q.IsActive, Valid: true}
	}
	args := []interface{}{userID, isActive, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	borrowings := []*data.Borrowing{}
	for rows.Next() {
		var borrowing data.Borrowing
		err := rows.Scan(
			&totalRecords,
			&borrowing.ID,
			&borrowing.BorrowDate,
			&borrowing.ExpectedReturnDate,
			&borrowing.ActualReturnDate,
			&borrowing.BookID,
			&borrowing.UserID,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		borrowings = append(borrowings, &borrowing)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return borrowings, metadata, nil
}
