package handler

import (
	"net/http"

	"go-project-hub/internal/model"
	"go-project-hub/internal/service"
)

type UserHandler struct {
	service *service.AuthService
}

func NewUserHandler(service *service.AuthService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	var payload model.UpdateProfileRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated, nil)
}
