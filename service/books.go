package service

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/data/dto"
	"github.com/emzola/librarian/internal/validator"
	"github.com/emzola/librarian/repository"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// maxCoverSize bounds uploaded cover images.
const maxCoverSize = 2 << 20

type books interface {
	CreateBook(ctx context.Context, requestBody dto.BookRequestBody) (*data.Book, error)
	GetBook(ctx context.Context, bookID int64) (*data.Book, error)
	ListBooks(ctx context.Context, title string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(ctx context.Context, bookID int64, requestBody dto.BookRequestBody, partial bool) (*data.Book, error)
	UpdateBookCover(ctx context.Context, bookID int64, r *http.Request) (*data.Book, error)
	DeleteBook(ctx context.Context, bookID int64) error
}

// CreateBook service creates a new book.
func (s *service) CreateBook(ctx context.Context, requestBody dto.BookRequestBody) (*data.Book, error) {
	book := &data.Book{}
	v := validator.New()
	v.Check(requestBody.Inventory != nil, "inventory", "must be provided")
	if requestBody.Inventory != nil {
		book.Inventory = *requestBody.Inventory
	}
	if applyBook(v, book, requestBody, false); !v.Valid() {
		return nil, failedValidation(v)
	}
	if err := s.validateBook(ctx, v, book); err != nil {
		return nil, err
	}
	err := s.repo.CreateBook(ctx, book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, fieldError("authors", "must only contain existing authors")
		default:
			return nil, err
		}
	}
	return book, nil
}

// GetBook service retrieves the details of a book.
func (s *service) GetBook(ctx context.Context, bookID int64) (*data.Book, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// ListBooks service retrieves a paginated list of books whose title contains the
// given text.
func (s *service) ListBooks(ctx context.Context, title string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v)
	}
	return s.repo.GetAllBooks(ctx, title, filters)
}

// UpdateBook service updates the catalog details of a book. Inventory only moves
// through borrowings and returns; a request that tries to change it is rejected.
func (s *service) UpdateBook(ctx context.Context, bookID int64, requestBody dto.BookRequestBody, partial bool) (*data.Book, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	v := validator.New()
	if requestBody.Inventory != nil {
		v.Check(*requestBody.Inventory == book.Inventory, "inventory", "cannot be changed directly, it follows borrowings and returns")
	}
	if applyBook(v, book, requestBody, partial); !v.Valid() {
		return nil, failedValidation(v)
	}
	if err := s.validateBook(ctx, v, book); err != nil {
		return nil, err
	}
	err = s.repo.UpdateBook(ctx, book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, fieldError("authors", "must only contain existing authors")
		default:
			return nil, err
		}
	}
	return book, nil
}

// UpdateBookCover service uploads a cover image for a book.
func (s *service) UpdateBookCover(ctx context.Context, bookID int64, r *http.Request) (*data.Book, error) {
	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	err = r.ParseMultipartForm(maxCoverSize)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			return nil, ErrContentTooLarge
		default:
			return nil, ErrBadRequest
		}
	}
	file, fileHeader, err := r.FormFile("cover")
	if err != nil {
		return nil, ErrBadRequest
	}
	defer file.Close()
	if fileHeader.Size > maxCoverSize {
		return nil, ErrContentTooLarge
	}
	buffer, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	mtype := mimetype.Detect(buffer)
	if !validator.Mime(mtype, "image/jpeg", "image/png") {
		return nil, ErrUnsupportedMediaType
	}
	key := "bookcovers/" + uuid.NewString() + mtype.Extension()
	url, err := s.store.Put(ctx, key, mtype.String(), buffer)
	if err != nil {
		return nil, err
	}
	book.CoverImage = url
	err = s.repo.UpdateBook(ctx, book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	return book, nil
}

// DeleteBook service deletes a book.
func (s *service) DeleteBook(ctx context.Context, bookID int64) error {
	err := s.repo.DeleteBook(ctx, bookID)
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

// validateBook runs the field rules and checks that every listed author exists.
func (s *service) validateBook(ctx context.Context, v *validator.Validator, book *data.Book) error {
	if data.ValidateBook(v, book); !v.Valid() {
		return failedValidation(v)
	}
	authors, err := s.repo.GetAuthorsByIDs(ctx, book.Authors)
	if err != nil {
		return err
	}
	if len(authors) != len(book.Authors) {
		return fieldError("authors", "must only contain existing authors")
	}
	return nil
}

// applyBook copies the catalog fields of the request onto book. Unless partial is
// set, every catalog field must be present.
func applyBook(v *validator.Validator, book *data.Book, requestBody dto.BookRequestBody, partial bool) {
	if !partial {
		v.Check(requestBody.Title != nil, "title", "must be provided")
		v.Check(requestBody.Authors != nil, "authors", "must be provided")
		v.Check(requestBody.Cover != nil, "cover", "must be provided")
		v.Check(requestBody.DailyFee != nil, "daily_fee", "must be provided")
	}
	if requestBody.Title != nil {
		book.Title = *requestBody.Title
	}
	if requestBody.Authors != nil {
		book.Authors = requestBody.Authors
	}
	if requestBody.Cover != nil {
		book.Cover = *requestBody.Cover
	}
	if requestBody.DailyFee != nil {
		book.DailyFee = *requestBody.DailyFee
	}
}
