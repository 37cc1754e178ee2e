package handler

import (
	"fmt"
	"net/http"

	"github.com/emzola/librarian/data/dto"
	"github.com/emzola/librarian/internal/validator"
)

// createBorrowingHandler godoc
// @Summary Borrow a book
// @Description Lends one copy of a book to the current user and takes it out of the inventory.
// @Tags borrowings
// @Accept json
// @Produce json
// @Param body body dto.CreateBorrowingRequestBody true "Borrowing"
// @Success 201 {object} data.Borrowing
// @Failure 400,401,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/borrowings [post]
func (h *Handler) createBorrowingHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.CreateBorrowingRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	borrowing, err := h.service.CreateBorrowing(r.Context(), user, requestBody.Book, requestBody.ExpectedReturnDate)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/borrowings/%d", borrowing.ID))
	err = h.encodeJSON(w, http.StatusCreated, envelope{"borrowing": borrowing}, headers)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showBorrowingHandler godoc
// @Summary Show a borrowing
// @Tags borrowings
// @Produce json
// @Param borrowingId path int true "Borrowing ID"
// @Success 200 {object} data.Borrowing
// @Failure 401,403,404,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/borrowings/{borrowingId} [get]
func (h *Handler) showBorrowingHandler(w http.ResponseWriter, r *http.Request) {
	borrowingID, err := h.readIDParam(r, "borrowingId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	borrowing, err := h.service.GetBorrowing(r.Context(), h.contextGetUser(r), borrowingID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"borrowing": borrowing}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listBorrowingsHandler godoc
// @Summary List borrowings
// @Description Staff see every borrowing, other users only their own.
// @Tags borrowings
// @Produce json
// @Param user_id query int false "Owner ID"
// @Param is_active query bool false "Only active or only returned borrowings"
// @Param page query int false "Page"
// @Param sort query string false "Sort by id, borrow_date or expected_return_date, prefix - for descending"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/borrowings [get]
func (h *Handler) listBorrowingsHandler(w http.ResponseWriter, r *http.Request) {
	var qsInput dto.QsListBorrowings
	v := validator.New()
	qs := r.URL.Query()
	qsInput.Query.UserID = h.readID(qs, "user_id", v)
	qsInput.Query.IsActive = h.readBool(qs, "is_active", v)
	qsInput.Filters = h.readFilters(qs, v, "id", "borrow_date", "expected_return_date")
	if !v.Valid() {
		h.errorResponse(w, r, http.StatusBadRequest, v.Errors)
		return
	}
	borrowings, metadata, err := h.service.ListBorrowings(r.Context(), h.contextGetUser(r), qsInput.Query, qsInput.Filters)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"results": borrowings, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// returnBorrowingHandler godoc
// @Summary Return a borrowed book
// @Description Closes the borrowing with today's date and puts the book back into the inventory.
// @Description An optional actual_return_date must equal today.
// @Tags borrowings
// @Accept json
// @Produce json
// @Param borrowingId path int true "Borrowing ID"
// @Param body body dto.ReturnBorrowingRequestBody false "Return"
// @Success 200 {object} data.Borrowing
// @Failure 400,401,403,404,409,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/borrowings/{borrowingId}/return [post]
func (h *Handler) returnBorrowingHandler(w http.ResponseWriter, r *http.Request) {
	borrowingID, err := h.readIDParam(r, "borrowingId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var requestBody dto.ReturnBorrowingRequestBody
	err = h.decodeOptionalJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	borrowing, err := h.service.ReturnBorrowing(r.Context(), h.contextGetUser(r), borrowingID, requestBody.ActualReturnDate)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"borrowing": borrowing}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
