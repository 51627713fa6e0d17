package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-project-hub/internal/config"
	"go-project-hub/internal/handler"
	"go-project-hub/internal/middleware"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Project *handler.ProjectHandler
	Risk    *handler.RiskHandler
	Audit   *handler.AuditHandler
	Health  *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)

	required := authMiddleware.RequirePrincipal
	optional := authMiddleware.OptionalPrincipal

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/register", h.Auth.Register)
			auth.Post("/google", h.Auth.ExternalLogin)
			auth.With(required).Get("/me", h.Auth.Me)
		})

		api.With(required).Put("/users/me", h.User.UpdateMe)

		api.Route("/projects", func(projects chi.Router) {
			projects.With(optional).Get("/", h.Project.List)
			projects.With(required).Post("/", h.Project.Create)

			projects.Route("/{id}", func(project chi.Router) {
				project.With(optional).Get("/", h.Project.Get)
				project.With(required).Put("/", h.Project.Update)
				project.With(required).Delete("/", h.Project.Delete)

				project.With(optional).Get("/risks", h.Risk.List)
				project.With(required).Post("/risks", h.Risk.Create)
				project.With(optional).Get("/risks/{risk_id}", h.Risk.Get)
				project.With(required).Put("/risks/{risk_id}", h.Risk.Update)
				project.With(required).Delete("/risks/{risk_id}", h.Risk.Delete)
			})
		})

		api.With(required).Get("/audit", h.Audit.List)
	})

	return r
}
