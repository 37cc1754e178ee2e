package handler

import (
	"net/http"

	"github.com/emzola/librarian/data/dto"
)

// registerUserHandler godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.RegisterUserRequestBody true "User"
// @Success 201 {object} data.User
// @Failure 400,500 {object} map[string]interface{}
// @Router /v1/users [post]
func (h *Handler) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.RegisterUserRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.RegisterUser(r.Context(), requestBody.Name, requestBody.Email, requestBody.Password)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"user": user}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showUserHandler godoc
// @Summary Show the current user
// @Tags users
// @Produce json
// @Success 200 {object} data.User
// @Failure 401,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/users/me [get]
func (h *Handler) showUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), h.contextGetUser(r).ID)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateUserHandler godoc
// @Summary Update the current user
// @Tags users
// @Accept json
// @Produce json
// @Param body body dto.UpdateUserRequestBody true "Profile"
// @Success 200 {object} data.User
// @Failure 400,401,409,500 {object} map[string]interface{}
// @Security BearerAuth
// @Router /v1/users/me [patch]
func (h *Handler) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody dto.UpdateUserRequestBody
	err := h.decodeJSON(w, r, &requestBody)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.UpdateUser(r.Context(), h.contextGetUser(r).ID, requestBody)
	if err != nil {
		h.serviceErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
