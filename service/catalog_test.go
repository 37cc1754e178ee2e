package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emzola/librarian/data"
	"github.com/emzola/librarian/data/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCreateAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	author, err := f.svc.CreateAuthor(ctx, dto.AuthorRequestBody{
		FirstName: ptr("Mary Ann"),
		LastName:  ptr("Evans"),
		Pseudonym: ptr("George Eliot"),
	})
	require.NoError(t, err)
	assert.NotZero(t, author.ID)

	_, err = f.svc.CreateAuthor(ctx, dto.AuthorRequestBody{
		FirstName: ptr("Someone"),
		LastName:  ptr("Else"),
		Pseudonym: ptr("George Eliot"),
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "pseudonym")

	_, err = f.svc.CreateAuthor(ctx, dto.AuthorRequestBody{FirstName: ptr("Only")})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "last_name")
}

func TestUpdateAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, err := f.svc.CreateAuthor(ctx, dto.AuthorRequestBody{
		FirstName: ptr("Eric"),
		LastName:  ptr("Blair"),
		Pseudonym: ptr("George Orwell"),
	})
	require.NoError(t, err)

	patched, err := f.svc.UpdateAuthor(ctx, author.ID, dto.AuthorRequestBody{FirstName: ptr("Eric Arthur")}, true)
	require.NoError(t, err)
	assert.Equal(t, "Eric Arthur", patched.FirstName)
	assert.Equal(t, "Blair", patched.LastName)
	require.NotNil(t, patched.Pseudonym)

	_, err = f.svc.UpdateAuthor(ctx, author.ID, dto.AuthorRequestBody{FirstName: ptr("Eric")}, false)
	assert.ErrorIs(t, err, ErrFailedValidation)

	put, err := f.svc.UpdateAuthor(ctx, author.ID, dto.AuthorRequestBody{FirstName: ptr("Eric"), LastName: ptr("Blair")}, false)
	require.NoError(t, err)
	assert.Nil(t, put.Pseudonym)

	_, err = f.svc.UpdateAuthor(ctx, 999, dto.AuthorRequestBody{}, true)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, err := f.svc.CreateAuthor(ctx, dto.AuthorRequestBody{FirstName: ptr("Ursula"), LastName: ptr("Le Guin")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAuthor(ctx, author.ID))
	assert.ErrorIs(t, f.svc.DeleteAuthor(ctx, author.ID), ErrRecordNotFound)
	_, err = f.svc.GetAuthor(ctx, author.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func newBookBody(authors ...int64) dto.BookRequestBody {
	fee, _ := data.NewFee("1.25")
	return dto.BookRequestBody{
		Title:     ptr("The Left Hand of Darkness"),
		Authors:   authors,
		Cover:     ptr(data.CoverSoft),
		Inventory: ptr(3),
		DailyFee:  &fee,
	}
}

func TestCreateBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author, err := f.svc.CreateAuthor(ctx, dto.AuthorRequestBody{FirstName: ptr("Ursula"), LastName: ptr("Le Guin")})
	require.NoError(t, err)

	book, err := f.svc.CreateBook(ctx, newBookBody(author.ID))
	require.NoError(t, err)
	assert.Equal(t, 3, book.Inventory)
	assert.Equal(t, "1.25", book.DailyFee.String())

	got, err := f.svc.GetBook(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ursula Le Guin"}, got.AuthorNames)

	_, err = f.svc.CreateBook(ctx, newBookBody(author.ID, 999))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "authors")

	body := newBookBody(author.ID)
	body.Inventory = nil
	_, err = f.svc.CreateBook(ctx, body)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "inventory")

	body = newBookBody(author.ID)
	body.Inventory = ptr(-1)
	_, err = f.svc.CreateBook(ctx, body)
	assert.ErrorIs(t, err, ErrFailedValidation)
}

func TestUpdateBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.book(t, 4)

	_, err := f.svc.UpdateBook(ctx, book.ID, dto.BookRequestBody{Inventory: ptr(10)}, true)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "inventory")
	assert.Equal(t, 4, f.inventory(t, book.ID))

	patched, err := f.svc.UpdateBook(ctx, book.ID, dto.BookRequestBody{Title: ptr("Dune Messiah"), Inventory: ptr(4)}, true)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", patched.Title)
	assert.Equal(t, data.CoverHard, patched.Cover)

	_, err = f.svc.UpdateBook(ctx, book.ID, dto.BookRequestBody{Title: ptr("Children of Dune")}, false)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "cover")
	assert.Contains(t, verr.Fields, "daily_fee")

	_, err = f.svc.UpdateBook(ctx, book.ID, dto.BookRequestBody{Cover: ptr("leather")}, true)
	assert.ErrorIs(t, err, ErrFailedValidation)
}

func TestListBooksByTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, 1)
	author, err := f.svc.CreateAuthor(ctx, dto.AuthorRequestBody{FirstName: ptr("Ursula"), LastName: ptr("Le Guin")})
	require.NoError(t, err)
	_, err = f.svc.CreateBook(ctx, newBookBody(author.ID))
	require.NoError(t, err)

	filters := data.Filters{Page: 1, PageSize: 10, Sort: "title", SortSafeList: []string{"title"}}
	books, metadata, err := f.svc.ListBooks(ctx, "darkness", filters)
	require.NoError(t, err)
	assert.Equal(t, 1, metadata.TotalRecords)
	require.Len(t, books, 1)
	assert.Equal(t, "The Left Hand of Darkness", books[0].Title)

	filters.Page = 0
	_, _, err = f.svc.ListBooks(ctx, "", filters)
	assert.ErrorIs(t, err, ErrFailedValidation)
}

// pngHeader is enough of a PNG file for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func coverRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("cover", "cover.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	r := httptest.NewRequest(http.MethodPatch, "/v1/books/1/cover", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	return r
}

func TestUpdateBookCover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.book(t, 1)

	updated, err := f.svc.UpdateBookCover(ctx, book.ID, coverRequest(t, pngHeader))
	require.NoError(t, err)
	require.Len(t, f.store.keys, 1)
	assert.True(t, strings.HasPrefix(f.store.keys[0], "bookcovers/"))
	assert.True(t, strings.HasSuffix(f.store.keys[0], ".png"))
	assert.Equal(t, "https://covers.example/"+f.store.keys[0], updated.CoverImage)
	assert.Equal(t, 1, f.inventory(t, book.ID))

	_, err = f.svc.UpdateBookCover(ctx, book.ID, coverRequest(t, []byte("plain text, not an image")))
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)

	r := httptest.NewRequest(http.MethodPatch, "/v1/books/1/cover", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json")
	_, err = f.svc.UpdateBookCover(ctx, book.ID, r)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestDeleteBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.book(t, 1)
	_, err := f.svc.CreateBorrowing(ctx, f.alice, book.ID, day)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBook(ctx, book.ID))
	assert.Zero(t, f.borrowingCount(t))
	assert.ErrorIs(t, f.svc.DeleteBook(ctx, book.ID), ErrRecordNotFound)
}
