package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emzola/librarian/data"
	"github.com/lib/pq"
)

type books interface {
	CreateBook(ctx context.Context, book *data.Book) error
	GetBook(ctx context.Context, bookID int64) (*data.Book, error)
	GetAllBooks(ctx context.Context, title string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(ctx context.Context, book *data.Book) error
	DeleteBook(ctx context.Context, bookID int64) error
}

// bookColumns selects a book together with its ordered author ids and names.
const bookColumns = `
	books.id, books.title, books.cover, books.inventory, books.daily_fee, books.cover_image, books.version,
	ARRAY(SELECT ba.author_id FROM books_authors ba WHERE ba.book_id = books.id ORDER BY ba.position),
	ARRAY(
		SELECT a.first_name || ' ' || a.last_name
		FROM books_authors ba INNER JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = books.id
		ORDER BY ba.position
	)`

// CreateBook creates a new book record and links it to its authors.
func (r *repository) CreateBook(ctx context.Context, book *data.Book) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	query := `
		INSERT INTO books (title, cover, inventory, daily_fee, cover_image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, version`
	args := []interface{}{book.Title, book.Cover, book.Inventory, book.DailyFee, book.CoverImage}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&book.ID, &book.Version)
	if err != nil {
		return translate(err)
	}
	if err = linkAuthors(ctx, tx, book.ID, book.Authors); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return r.fillAuthorNames(ctx, book)
}

// GetBook retrieves a book record by its ID.
func (r *repository) GetBook(ctx context.Context, bookID int64) (*data.Book, error) {
	if bookID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE books.id = $1`
	var book data.Book
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(scanBook(&book)...)
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

// GetAllBooks retrieves a paginated list of book records whose title contains
// the given text, ignoring case.
func (r *repository) GetAllBooks(ctx context.Context, title string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), %s
		FROM books
		WHERE (strpos(lower(books.title), lower($1)) > 0 OR $1 = '')
		ORDER BY books.%s %s, books.id ASC
		LIMIT $2 OFFSET $3`,
		bookColumns, filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{title, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	books := []*data.Book{}
	for rows.Next() {
		var book data.Book
		dest := append([]interface{}{&totalRecords}, scanBook(&book)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, data.Metadata{}, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// UpdateBook updates the catalog fields of a book record and replaces its author
// links. Inventory is owned by the borrowing lifecycle and is never written here.
func (r *repository) UpdateBook(ctx context.Context, book *data.Book) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	query := `
		UPDATE books
		SET title = $1, cover = $2, daily_fee = $3, cover_image = $4, version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version, inventory`
	args := []interface{}{book.Title, book.Cover, book.DailyFee, book.CoverImage, book.ID, book.Version}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&book.Version, &book.Inventory)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return translate(err)
		}
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM books_authors WHERE book_id = $1`, book.ID); err != nil {
		return err
	}
	if err = linkAuthors(ctx, tx, book.ID, book.Authors); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	return r.fillAuthorNames(ctx, book)
}

// DeleteBook deletes a book record. Its borrowings are removed with it.
func (r *repository) DeleteBook(ctx context.Context, bookID int64) error {
	if bookID < 1 {
		return ErrRecordNotFound
	}
	query := `
		DELETE FROM books
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, bookID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func linkAuthors(ctx context.Context, tx *sql.Tx, bookID int64, authorIDs []int64) error {
	query := `
		INSERT INTO books_authors (book_id, author_id, position)
		SELECT $1, author_id, position
		FROM unnest($2::bigint[]) WITH ORDINALITY AS t(author_id, position)`
	_, err := tx.ExecContext(ctx, query, bookID, pq.Array(authorIDs))
	if err != nil {
		return translate(err)
	}
	return nil
}

func (r *repository) fillAuthorNames(ctx context.Context, book *data.Book) error {
	query := `
		SELECT a.first_name || ' ' || a.last_name
		FROM books_authors ba INNER JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = $1
		ORDER BY ba.position`
	rows, err := r.db.QueryContext(ctx, query, book.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return err
	}
	book.AuthorNames = names
	return nil
}

func scanBook(book *data.Book) []interface{} {
	return []interface{}{
		&book.ID,
		&book.Title,
		&book.Cover,
		&book.Inventory,
		&book.DailyFee,
		&book.CoverImage,
		&book.Version,
		pq.Array(&book.Authors),
		pq.Array(&book.AuthorNames),
	}
}
