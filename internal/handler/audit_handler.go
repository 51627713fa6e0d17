package handler

import (
	"net/http"
	"strings"

	"go-project-hub/internal/model"
	"go-project-hub/internal/service"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List returns the caller's own audit trail.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := principal(r)
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	query := r.URL.Query()
	items, meta, err := h.service.Query(r.Context(), model.AuditQuery{
		ActorID: user.ID,
		Action:  strings.TrimSpace(query.Get("action")),
		Status:  strings.TrimSpace(query.Get("status")),
		From:    strings.TrimSpace(query.Get("from")),
		To:      strings.TrimSpace(query.Get("to")),
		Page:    parseIntOrDefault(query.Get("page"), 1),
		Limit:   parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.AuditListData{Items: items}, &meta)
}
