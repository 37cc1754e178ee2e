package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/emzola/librarian/data"
)

// Tx is the set of operations available inside an atomic unit. Every row read
// through a Tx is locked until the unit commits or rolls back.
type Tx interface {
	GetBookForUpdate(ctx context.Context, bookID int64) (*data.Book, error)
	GetBorrowingForUpdate(ctx context.Context, borrowingID int64) (*data.Borrowing, error)
	InsertBorrowing(ctx context.Context, borrowing *data.Borrowing) error
	CloseBorrowing(ctx context.Context, borrowing *data.Borrowing) error
	AdjustBookInventory(ctx context.Context, bookID int64, delta int) (int, error)
}

type transactor interface {
	// Atomically runs fn inside a single commit unit. If fn returns an error nothing
	// it did is applied. fn may run more than once and must not keep state between
	// calls.
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// Atomically runs fn in a database transaction, retrying on serialization failures
// and deadlocks.
func (r *repository) Atomically(ctx context.Context, fn func(tx Tx) error) error {
	return r.retry.Do(ctx, func(ctx context.Context) error {
		return r.runTx(ctx, fn)
	})
}

func (r *repository) runTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()
	if err = fn(&pgTx{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// pgTx implements Tx over a *sql.Tx.
type pgTx struct {
	tx *sql.Tx
}

// GetBookForUpdate retrieves and locks a book record.
func (t *pgTx) GetBookForUpdate(ctx context.Context, bookID int64) (*data.Book, error) {
	if bookID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, title, cover, inventory, daily_fee, cover_image, version
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var book data.Book
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := t.tx.QueryRowContext(ctx, query, bookID).Scan(
		&book.ID,
		&book.Title,
		&book.Cover,
		&book.Inventory,
		&book.DailyFee,
		&book.CoverImage,
		&book.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetBorrowingForUpdate retrieves and locks a borrowing record.
func (t *pgTx) GetBorrowingForUpdate(ctx context.Context, borrowingID int64) (*data.Borrowing, error) {
	if borrowingID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, borrow_date, expected_return_date, actual_return_date, book_id, user_id
		FROM borrowings
		WHERE id = $1
		FOR UPDATE`
	var borrowing data.Borrowing
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := t.tx.QueryRowContext(ctx, query, borrowingID).Scan(
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

// InsertBorrowing creates a new borrowing record.
func (t *pgTx) InsertBorrowing(ctx context.Context, borrowing *data.Borrowing) error {
	query := `
		INSERT INTO borrowings (borrow_date, expected_return_date, book_id, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	args := []interface{}{borrowing.BorrowDate, borrowing.ExpectedReturnDate, borrowing.BookID, borrowing.UserID}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := t.tx.QueryRowContext(ctx, query, args...).Scan(&borrowing.ID)
	if err != nil {
		return translate(err)
	}
	return nil
}

// CloseBorrowing stamps the actual return date of an active borrowing.
func (t *pgTx) CloseBorrowing(ctx context.Context, borrowing *data.Borrowing) error {
	if borrowing.ActualReturnDate == nil {
		return errors.New("close borrowing: missing actual return date")
	}
	query := `
		UPDATE borrowings
		SET actual_return_date = $1
		WHERE id = $2 AND actual_return_date IS NULL`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	result, err := t.tx.ExecContext(ctx, query, *borrowing.ActualReturnDate, borrowing.ID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEditConflict
	}
	return nil
}

// AdjustBookInventory adds delta to the inventory of a book and returns the new
// inventory. The update is refused when it would make the inventory negative.
func (t *pgTx) AdjustBookInventory(ctx context.Context, bookID int64, delta int) (int, error) {
	query := `
		UPDATE books
		SET inventory = inventory + $1, version = version + 1
		WHERE id = $2 AND inventory + $1 >= 0
		RETURNING inventory`
	var inventory int
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := t.tx.QueryRowContext(ctx, query, delta, bookID).Scan(&inventory)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return 0, ErrInventoryExhausted
		default:
			return 0, translate(err)
		}
	}
	return inventory, nil
}
