package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go-project-hub/internal/model"
)

type principalResolver interface {
	Required(ctx context.Context, header string) (model.User, error)
	Optional(ctx context.Context, header string) (*model.User, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

type AuthMiddleware struct {
	resolver principalResolver
}

func NewAuthMiddleware(resolver principalResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequirePrincipal rejects requests without a valid, active principal.
func (m *AuthMiddleware) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolver.Required(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeAuthError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
	})
}

// OptionalPrincipal lets anonymous requests through. A credential that is
// present but invalid is rejected exactly as RequirePrincipal would.
func (m *AuthMiddleware) OptionalPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolver.Optional(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeAuthError(w, r, err)
			return
		}

		if user != nil {
			r = r.WithContext(WithPrincipal(r.Context(), *user))
		}
		next.ServeHTTP(w, r)
	})
}

func WithPrincipal(ctx context.Context, user model.User) context.Context {
	notePrincipal(ctx, user.ID)
	return context.WithValue(ctx, principalContextKey, user)
}

func PrincipalFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(principalContextKey).(model.User)
	return user, ok
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := authErrorResponse(err)
	if status == http.StatusInternalServerError {
		slog.Error("principal resolution failed",
			"request_id", RequestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	writeJSONError(w, status, code, message)
}

func authErrorResponse(err error) (int, string, string) {
	switch {
	case errors.Is(err, model.ErrInactivePrincipal):
		return http.StatusForbidden, "FORBIDDEN", "inactive user"
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "insufficient permissions"
	case errors.Is(err, model.ErrTokenExpired):
		return http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired"
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials"
	case errors.Is(err, model.ErrInvalidToken):
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid token"
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected server error"
	}
}
