package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go-project-hub/internal/middleware"
	"go-project-hub/internal/model"
	"go-project-hub/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Success(data, meta))
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: more specific sentinels come before the ones they wrap.
var errorMappings = []errorMapping{
	{model.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired"},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials"},
	{model.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token"},
	{model.ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated"},
	{model.ErrInactivePrincipal, http.StatusForbidden, "FORBIDDEN", "inactive user"},
	{model.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "Access denied"},
	{model.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", "User not found"},
	{model.ErrProjectNotFound, http.StatusNotFound, "NOT_FOUND", "Project not found"},
	{model.ErrRiskNotFound, http.StatusNotFound, "NOT_FOUND", "Risk not found"},
	{model.ErrUserAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "User already exists"},
	{model.ErrProjectAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "Project already exists"},
	{model.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST", "Invalid input"},
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := model.Failure("INTERNAL_ERROR", "Unexpected server error", "")

	classified := false
	if apiErr, ok := apierror.From(err); ok {
		status = apiErr.HTTPStatus
		body = model.Failure(apiErr.Code, apiErr.Message, apiErr.Details)
		classified = true
	} else {
		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				status = m.status
				body = model.Failure(m.code, m.message, "")
				classified = true
				break
			}
		}
	}

	if !classified {
		slog.Error("unhandled error",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error())
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a single JSON object from the request body. Syntactically
// broken or oversized bodies are unprocessable.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apierror.Unprocessable("request body too large", "")
		}
		if errors.Is(err, io.EOF) {
			return apierror.Unprocessable("request body is required", "")
		}
		return apierror.Unprocessable("invalid JSON body", err.Error())
	}

	if dec.More() {
		return apierror.Unprocessable("invalid JSON body", "unexpected data after object")
	}

	return nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}

	return v
}

func parseID(raw string, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest(field+" must be a positive integer", raw)
	}
	return id, nil
}
