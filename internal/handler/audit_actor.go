package handler

import (
	"net/http"

	"go-project-hub/internal/middleware"
	"go-project-hub/internal/model"
)

func actorFromRequest(r *http.Request) model.AuditActor {
	actor := model.AuditActor{IP: middleware.ClientIP(r)}

	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = user.ID
	actor.Email = user.Email

	return actor
}

// principal is only called behind RequirePrincipal.
func principal(r *http.Request) (model.User, bool) {
	return middleware.PrincipalFromContext(r.Context())
}

func optionalPrincipal(r *http.Request) *model.User {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	return &user
}
