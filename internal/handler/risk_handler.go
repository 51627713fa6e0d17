package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/model"
	"go-project-hub/internal/service"
)

type RiskHandler struct {
	service *service.RiskService
}

func NewRiskHandler(service *service.RiskService) *RiskHandler {
	return &RiskHandler{service: service}
}

func riskIDParams(r *http.Request) (int64, int64, error) {
	projectID, err := projectIDParam(r)
	if err != nil {
		return 0, 0, err
	}

	riskID, err := parseID(chi.URLParam(r, "risk_id"), "risk id")
	if err != nil {
		return 0, 0, err
	}

	return projectID, riskID, nil
}

func (h *RiskHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := projectIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.service.List(r.Context(), optionalPrincipal(r), projectID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.RiskListData{Items: items}, nil)
}

func (h *RiskHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, riskID, err := riskIDParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	risk, err := h.service.Get(r.Context(), optionalPrincipal(r), projectID, riskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, risk, nil)
}

func (h *RiskHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	projectID, err := projectIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.RiskRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	risk, err := h.service.Create(r.Context(), owner, projectID, payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, risk, nil)
}

func (h *RiskHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	projectID, riskID, err := riskIDParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.RiskRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	risk, err := h.service.Update(r.Context(), owner, projectID, riskID, payload, actorFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, risk, nil)
}

func (h *RiskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	projectID, riskID, err := riskIDParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), owner, projectID, riskID, actorFromRequest(r)); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}
