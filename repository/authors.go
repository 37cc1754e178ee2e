package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/emzola/librarian/data"
	"github.com/lib/pq"
)

type authors interface {
	CreateAuthor(ctx context.Context, author *data.Author) error
	GetAuthor(ctx context.Context, authorID int64) (*data.Author, error)
	GetAllAuthors(ctx context.Context, firstName string, filters data.Filters) ([]*data.Author, data.Metadata, error)
	GetAuthorsByIDs(ctx context.Context, authorIDs []int64) ([]*data.Author, error)
	UpdateAuthor(ctx context.Context, author *data.Author) error
	DeleteAuthor(ctx context.Context, authorID int64) error
}

// CreateAuthor creates a new author record.
func (r *repository) CreateAuthor(ctx context.Context, author *data.Author) error {
	query := `
		INSERT INTO authors (first_name, last_name, pseudonym)
		VALUES ($1, $2, $3)
		RETURNING id, version`
	args := []interface{}{author.FirstName, author.LastName, author.Pseudonym}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&author.ID, &author.Version)
	if err != nil {
		return translate(err)
	}
	return nil
}

// GetAuthor retrieves an author record by its ID.
func (r *repository) GetAuthor(ctx context.Context, authorID int64) (*data.Author, error) {
	if authorID < 1 {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, first_name, last_name, pseudonym, version
		FROM authors
		WHERE id = $1`
	var author data.Author
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, authorID).Scan(
		&author.ID,
		&author.FirstName,
		&author.LastName,
		&author.Pseudonym,
		&author.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &author, nil
}

// GetAllAuthors retrieves a paginated list of author records whose first name
// contains the given text, ignoring case.
func (r *repository) GetAllAuthors(ctx context.Context, firstName string, filters data.Filters) ([]*data.Author, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, first_name, last_name, pseudonym, version
		FROM authors
		WHERE (strpos(lower(first_name), lower($1)) > 0 OR $1 = '')
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`,
		filters.SortColumn(), filters.SortDirection(),
	)
	args := []interface{}{firstName, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	authors := []*data.Author{}
	for rows.Next() {
		var author data.Author
		err := rows.Scan(
			&totalRecords,
			&author.ID,
			&author.FirstName,
			&author.LastName,
			&author.Pseudonym,
			&author.Version,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		authors = append(authors, &author)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return authors, metadata, nil
}

// GetAuthorsByIDs retrieves the author records matching the given ids. Unknown ids
// are skipped.
func (r *repository) GetAuthorsByIDs(ctx context.Context, authorIDs []int64) ([]*data.Author, error) {
	query := `
		SELECT id, first_name, last_name, pseudonym, version
		FROM authors
		WHERE id = ANY($1)
		ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, pq.Array(authorIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	authors := []*data.Author{}
	for rows.Next() {
		var author data.Author
		err := rows.Scan(
			&author.ID,
			&author.FirstName,
			&author.LastName,
			&author.Pseudonym,
			&author.Version,
		)
		if err != nil {
			return nil, err
		}
		authors = append(authors, &author)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}

// UpdateAuthor updates an author record.
func (r *repository) UpdateAuthor(ctx context.Context, author *data.Author) error {
	query := `
		UPDATE authors
		SET first_name = $1, last_name = $2, pseudonym = $3, version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version`
	args := []interface{}{author.FirstName, author.LastName, author.Pseudonym, author.ID, author.Version}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&author.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return translate(err)
		}
	}
	return nil
}

// DeleteAuthor deletes an author record.
func (r *repository) DeleteAuthor(ctx context.Context, authorID int64) error {
	if authorID < 1 {
		return ErrRecordNotFound
	}
	query := `
		DELETE FROM authors
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, authorID)
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
