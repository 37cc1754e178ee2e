package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/emzola/librarian/data/dto"
	"github.com/emzola/librarian/internal/validator"
	"github.com/emzola/librarian/service"
)

// createAuthorHandler godoc
// @Summary Create an author
// @Tags authors
// @Accept json
// @Produce json
// @Param body body dto.AuthorRequestBody true "Author"
// @Success 201 {object} data.Author
// @Failure 400,401,403,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/authors [post]
func (h *Handler) createAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.AuthorRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	author, err := h.service.CreateAuthor(r.Context(), requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/authors/%d", author.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"author": author}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showAuthorHandler godoc
// @Summary Show an author
// @Tags authors
// @Produce json
// @Param authorId path int true "Author ID"
// @Success 200 {object} data.Author
// @Failure 404,500 {object} map[string]interface{}
// @Router /v1/authors/{authorId} [get]
func (h *Handler) showAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := h.readIDParam(r, "authorId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	author, err := h.service.GetAuthor(r.Context(), authorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"author": author}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listAuthorsHandler godoc
// @Summary List authors
// @Tags authors
// @Produce json
// @Param first_name query string false "Case insensitive first name fragment"
// @Param page query int false "Page"
// @Param sort query string false "Sort by id, first_name or last_name, prefix - for descending"
// @Success 200 {object} map[string]interface{}
// @Failure 400,500 {object} map[string]interface{}
// @Router /v1/authors [get]
func (h *Handler) listAuthorsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListAuthors
	v := validator.New()
	qs := r.URL.Query()
	qsInput.FirstName = h.readString(qs, "first_name", "")
	qsInput.Filters = h.readFilters(qs, v, "id", "first_name", "last_name")
	if !v.Valid() {
		h.errorResponse(w, r, http.StatusBadRequest, v.Errors)
		return
	}
	authors, metadata, err := h.service.ListAuthors(r.Context(), qsInput.FirstName, qsInput.Filters)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"results": authors, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateAuthorHandler godoc
// @Summary Update an author
// @Description PUT replaces every field, PATCH changes only the fields sent.
// @Tags authors
// @Accept json
// @Produce json
// @Param authorId path int true "Author ID"
// @Param body body dto.AuthorRequestBody true "Author"
// @Success 200 {object} data.Author
// @Failure 400,401,403,404,409,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/authors/{authorId} [put]
// @Router /v1/authors/{authorId} [patch]
func (h *Handler) updateAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := h.readIDParam(r, "authorId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.AuthorRequestBody
	err = h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	author, err := h.service.UpdateAuthor(r.Context(), authorID, requestBody, r.Method == http.MethodPatch)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"author": author}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteAuthorHandler godoc
// @Summary Delete an author
// @Tags authors
// @Param authorId path int true "Author ID"
// @Success 204
// @Failure 401,403,404,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/authors/{authorId} [delete]
func (h *Handler) deleteAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := h.readIDParam(r, "authorId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteAuthor(r.Context(), authorID)
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
