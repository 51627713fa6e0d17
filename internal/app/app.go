package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-project-hub/internal/auth"
	"go-project-hub/internal/config"
	"go-project-hub/internal/database"
	"go-project-hub/internal/handler"
	"go-project-hub/internal/middleware"
	"go-project-hub/internal/repository"
	"go-project-hub/internal/router"
	"go-project-hub/internal/service"
	"go-project-hub/internal/writelock"
)

const startupTimeout = 30 * time.Second

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, database.Options{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		ConnectAttempts: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	riskRepo := repository.NewRiskRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.IsProduction())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	if !cfg.IsProduction() {
		slog.Warn("debug access tokens are accepted", "prefix", auth.DebugTokenPrefix, "app_env", cfg.AppEnv)
	}

	identities, err := identityVerifier(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize identity verifier: %w", err)
	}

	locks := writelock.New()
	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(
		userRepo,
		issuer,
		auth.NewPasswordHasher(cfg.BcryptCost),
		identities,
		locks,
		auditService,
	)
	projectService := service.NewProjectService(projectRepo, locks, auditService)
	riskService := service.NewRiskService(riskRepo, projectService, locks, auditService)

	authMiddleware := middleware.NewAuthMiddleware(auth.NewResolver(verifier, userRepo))

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(authService),
		Project: handler.NewProjectHandler(projectService),
		Risk:    handler.NewRiskHandler(riskService),
		Audit:   handler.NewAuditHandler(auditService),
		Health:  handler.NewHealthHandler(db),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			db.Close,
		},
	}, nil
}

// identityVerifier checks external ID tokens against the OIDC issuer when a
// client id is configured. Without one, claimed identities are trusted, which
// config validation only permits outside production.
func identityVerifier(ctx context.Context, cfg *config.Config) (auth.IdentityVerifier, error) {
	if cfg.GoogleClientID == "" {
		slog.Warn("external logins are not verified; set GOOGLE_CLIENT_ID to enable OIDC")
		return auth.TrustedIdentityVerifier{}, nil
	}

	return auth.NewOIDCIdentityVerifier(ctx, cfg.OIDCIssuer, cfg.GoogleClientID)
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}
