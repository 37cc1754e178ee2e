package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/librarian/data/dto"
	"github.com/emzola/librarian/internal/validator"
	"github.com/emzola/librarian/service"
)

// createBookHandler godoc
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param body body dto.BookRequestBody true "Book"
// @Success 201 {object} data.Book
// @Failure 400,401,403,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/books [post]
func (h *Handler) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.BookRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.CreateBook(r.Context(), requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/books/%d", book.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"book": book}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showBookHandler godoc
// @Summary Show a book
// @Tags books
// @Produce json
// @Param bookId path int true "Book ID"
// @Success 200 {object} data.Book
// @Failure 404,500 {object} map[string]interface{}
// @Router /v1/books/{bookId} [get]
func (h *Handler) showBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	book, err := h.service.GetBook(r.Context(), bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler godoc
// @Summary List books
// @Tags books
// @Produce json
// @Param title query string false "Case insensitive title fragment"
// @Param page query int false "Page"
// @Param sort query string false "Sort by title (default), id, inventory or daily_fee, prefix - for descending"
// @Success 200 {object} map[string]interface{}
// @Failure 400,500 {object} map[string]interface{}
// @Router /v1/books [get]
func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListBooks
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Title = h.readString(qs, "title", "")
	qsInput.Filters = h.readFilters(qs, v, "title", "id", "inventory", "daily_fee")
	if !v.Valid() {
		h.errorResponse(w, r, http.StatusBadRequest, v.Errors)
		return
	}
	books, metadata, err := h.service.ListBooks(r.Context(), qsInput.Title, qsInput.Filters)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"results": books, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler godoc
// @Summary Update a book
// @Description PUT replaces every catalog field, PATCH changes only the fields sent.
// @Description The inventory follows borrowings and cannot be changed here.
// @Tags books
// @Accept json
// @Produce json
// @Param bookId path int true "Book ID"
// @Param body body dto.BookRequestBody true "Book"
// @Success 200 {object} data.Book
// @Failure 400,401,403,404,409,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/books/{bookId} [put]
// @Router /v1/books/{bookId} [patch]
func (h *Handler) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.BookRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.UpdateBook(r.Context(), bookID, requestBody, r.Method == http.MethodPatch)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateBookCoverHandler godoc
// @Summary Upload a book cover image
// @Tags books
// @Accept mpfd
// @Produce json
// @Param bookId path int true "Book ID"
// @Param cover formData file true "JPEG or PNG image"
// @Success 200 {object} data.Book
// @Failure 400,401,403,404,409,413,415,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/books/{bookId}/cover [put]
func (h *Handler) updateBookCoverHandler(w http.ResponseWriter, r *http.Request) {
	// Set 2MB limit for request body size
	maxBytes := int64(2_097_152)
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	book, err := h.service.UpdateBookCover(r.Context(), bookID, r)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContentTooLarge):
			h.contentTooLargeResponse(w, r)
		case errors.Is(err, service.ErrBadRequest):
			h.badRequestResponse(w, r, err)
		case errors.Is(err, service.ErrUnsupportedMediaType):
			h.unsupportedMediaTypeResponse(w, r)
		default:
			h.serviceErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler godoc
// @Summary Delete a book
// @Description Deleting a book also deletes its borrowings.
// @Tags books
// @Param bookId path int true "Book ID"
// @Success 204
// @Failure 401,403,404,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/books/{bookId} [delete]
func (h *Handler) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteBook(r.Context(), bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
