package service

import (
	"context"
	"errors"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/data/dto"
	"github.com/emzola/librarian/internal/validator"
	"github.com/emzola/librarian/repository"
)

type authors interface {
	CreateAuthor(ctx context.Context, requestBody dto.AuthorRequestBody) (*data.Author, error)
	GetAuthor(ctx context.Context, authorID int64) (*data.Author, error)
	ListAuthors(ctx context.Context, firstName string, filters data.Filters) ([]*data.Author, data.Metadata, error)
	UpdateAuthor(ctx context.Context, authorID int64, requestBody dto.AuthorRequestBody, partial bool) (*data.Author, error)
	DeleteAuthor(ctx context.Context, authorID int64) error
}

// CreateAuthor service creates a new author.
func (s *service) CreateAuthor(ctx context.Context, requestBody dto.AuthorRequestBody) (*data.Author, error) {
	author := &data.Author{}
	v := validator.New()
	if applyAuthor(v, author, requestBody, false); !v.Valid() {
		return nil, failedValidation(v)
	}
	if data.ValidateAuthor(v, author); !v.Valid() {
		return nil, failedValidation(v)
	}
	err := s.repo.CreateAuthor(ctx, author)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, fieldError("pseudonym", "an author with this pseudonym already exists")
		default:
			return nil, err
		}
	}
	return author, nil
}

// GetAuthor service retrieves the details of an author.
func (s *service) GetAuthor(ctx context.Context, authorID int64) (*data.Author, error) {
	author, err := s.repo.GetAuthor(ctx, authorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return author, nil
}

// ListAuthors service retrieves a paginated list of authors, optionally filtered
// by first name.
func (s *service) ListAuthors(ctx context.Context, firstName string, filters data.Filters) ([]*data.Author, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v)
	}
	return s.repo.GetAllAuthors(ctx, firstName, filters)
}

// UpdateAuthor service updates an author. A full update requires every field; a
// partial update changes only the fields present in the request.
func (s *service) UpdateAuthor(ctx context.Context, authorID int64, requestBody dto.AuthorRequestBody, partial bool) (*data.Author, error) {
	author, err := s.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	v := validator.New()
	if applyAuthor(v, author, requestBody, partial); !v.Valid() {
		return nil, failedValidation(v)
	}
	if data.ValidateAuthor(v, author); !v.Valid() {
		return nil, failedValidation(v)
	}
	err = s.repo.UpdateAuthor(ctx, author)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, fieldError("pseudonym", "an author with this pseudonym already exists")
		default:
			return nil, err
		}
	}
	return author, nil
}

// DeleteAuthor service deletes an author.
func (s *service) DeleteAuthor(ctx context.Context, authorID int64) error {
	err := s.repo.DeleteAuthor(ctx, authorID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// applyAuthor copies the request fields onto author. Unless partial is set, the
// required fields must be present. A pseudonym that is absent from a full update
// is cleared.
func applyAuthor(v *validator.Validator, author *data.Author, requestBody dto.AuthorRequestBody, partial bool) {
	if !partial {
		v.Check(requestBody.FirstName != nil, "first_name", "must be provided")
		v.Check(requestBody.LastName != nil, "last_name", "must be provided")
		author.Pseudonym = requestBody.Pseudonym
	} else if requestBody.Pseudonym != nil {
		author.Pseudonym = requestBody.Pseudonym
	}
	if requestBody.FirstName != nil {
		author.FirstName = *requestBody.FirstName
	}
	if requestBody.LastName != nil {
		author.LastName = *requestBody.LastName
	}
}
