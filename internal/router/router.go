package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-taskboard/internal/config"
	"go-taskboard/internal/handler"
	"go-taskboard/internal/metrics"
	"go-taskboard/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Health *handler.HealthHandler
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.Metrics,
	authMiddleware *middleware.AuthMiddleware,
	handlers Handlers,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging(logger, m))
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", handlers.Health.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", handlers.Auth.Register)
			auth.Post("/login", handlers.Auth.Login)
			auth.Post("/refresh", handlers.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Get("/me", handlers.Auth.Me)
		})
	})

	return r
}
