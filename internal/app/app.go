package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go-taskboard/internal/config"
	"go-taskboard/internal/database"
	"go-taskboard/internal/handler"
	"go-taskboard/internal/metrics"
	"go-taskboard/internal/middleware"
	"go-taskboard/internal/repository"
	"go-taskboard/internal/router"
	"go-taskboard/internal/service"
)

type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	server       *http.Server
	cleanupFuncs []func()
}

// New wires the service. With DATABASE_URL set it migrates and connects to
// PostgreSQL; otherwise credentials live in memory for the life of the process.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		users        service.UserStore
		auditStore   service.AuditStore
		healthCheck  *database.DB
		cleanupFuncs []func()
	)

	if cfg.DatabaseURL != "" {
		logger.Info("applying database migrations")
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		logger.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		users = repository.NewUserRepository(db.Pool)
		auditStore = repository.NewAuditRepository(db.Pool)
		healthCheck = db
		cleanupFuncs = append(cleanupFuncs, db.Close)
		logger.Info("database ready")
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory credential store")
		users = repository.NewMemoryUserRepository()
	}

	m := metrics.New(cfg.MetricsNamespace)

	authService, err := service.NewAuthService(cfg.TokenConfig(), users, m, logger)
	if err != nil {
		runCleanup(cleanupFuncs)
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	auditService := service.NewAuditService(auditStore, logger)

	healthHandler := handler.NewHealthHandler(nil, version)
	if healthCheck != nil {
		healthHandler = handler.NewHealthHandler(healthCheck, version)
	}

	appRouter := router.New(cfg, logger, m, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:   handler.NewAuthHandler(authService, auditService),
		Health: healthHandler,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		server:       server,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// SHUTDOWN_TIMEOUT before releasing resources.
func (a *App) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		runCleanup(a.cleanupFuncs)
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}

	return a.Serve(ctx, listener)
}

func (a *App) Serve(ctx context.Context, listener net.Listener) error {
	defer runCleanup(a.cleanupFuncs)

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", listener.Addr().String())
		serveErr <- a.server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", "timeout", a.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

func runCleanup(funcs []func()) {
	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
}
