package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/model"
	"go-project-hub/internal/service"
)

type ProjectHandler struct {
	service *service.ProjectService
}

func NewProjectHandler(service *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func projectIDParam(r *http.Request) (int64, error) {
	return parseID(chi.URLParam(r, "id"), "project id")
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	items, meta, err := h.service.List(r.Context(), optionalPrincipal(r),
		parseIntOrDefault(query.Get("page"), 1),
		parseIntOrDefault(query.Get("limit"), 50))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ProjectListData{Items: items}, &meta)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := projectIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.service.Get(r.Context(), optionalPrincipal(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, project, nil)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	var payload model.ProjectRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.service.Create(r.Context(), owner, payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, project, nil)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	id, err := projectIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.ProjectRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	project, err := h.service.Update(r.Context(), owner, id, payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, project, nil)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	id, err := projectIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), owner, id, actorFromRequest(r)); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
