package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go-project-hub/internal/model"
	"go-project-hub/pkg/apierror"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var resp model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestWriteErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"expired token", model.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"wrapped credentials", fmt.Errorf("login: %w", model.ErrInvalidCredentials), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"inactive", model.ErrInactivePrincipal, http.StatusForbidden, "FORBIDDEN"},
		{"missing project", model.ErrProjectNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"duplicate user", model.ErrUserAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"coded validation", fmt.Errorf("%w: %w", model.ErrInvalidInput, apierror.BadRequest("name is required", "name")), http.StatusBadRequest, "BAD_REQUEST"},
		{"unclassified", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil), tc.err)

			require.Equal(t, tc.status, rec.Code)
			resp := decodeEnvelope(t, rec)
			require.False(t, resp.Success)
			require.Equal(t, tc.code, resp.Error.Code)

			if tc.status == http.StatusUnauthorized {
				require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
			if tc.status == http.StatusInternalServerError {
				require.NotContains(t, rec.Body.String(), "connection reset")
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"Bridge"}`, false},
		{"empty", ``, true},
		{"truncated", `{"name":`, true},
		{"wrong type", `{"name":7}`, true},
		{"trailing data", `{"name":"a"}{"name":"b"}`, true},
		{"too large", `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var dst model.ProjectRequest
			rec := httptest.NewRecorder()
			err := decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body)), &dst)
			if !tc.wantErr {
				require.NoError(t, err)
				require.Equal(t, "Bridge", dst.Name)
				return
			}

			apiErr, ok := apierror.From(err)
			require.True(t, ok)
			require.Equal(t, http.StatusUnprocessableEntity, apiErr.HTTPStatus)
		})
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := parseID(" 17 ", "id")
	require.NoError(t, err)
	require.Equal(t, int64(17), id)

	for _, raw := range []string{"", "0", "-3", "abc", "99999999999999999999"} {
		_, err := parseID(raw, "id")
		require.Error(t, err, raw)
	}
}
