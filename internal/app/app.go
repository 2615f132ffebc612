package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"nbadash/internal/config"
	"nbadash/internal/dataset"
	"nbadash/internal/infrastructure"
	customMiddleware "nbadash/internal/middleware"
	"nbadash/internal/services"
	"nbadash/internal/stats"
	handlers "nbadash/internal/transport/http"
	ws "nbadash/internal/websocket"
)

// AppName identifies the service in startup logs.
const AppName = "nbadash - NBA season dashboard backend"

// Application is the main application container.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *infrastructure.Metrics
	Store   *dataset.Store
	Router  *chi.Mux
	Server  *http.Server

	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// New creates an application from the default configuration sources.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewWithConfig(cfg, logger)
}

// NewWithConfig wires the application with an explicit config and logger,
// used by tests to avoid global state.
func NewWithConfig(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", services.Version),
		slog.String("dataset", cfg.Dataset.Path))

	metrics := infrastructure.NewMetrics()

	loader := dataset.NewLoader(dataset.NewFileSource(cfg.Dataset.Path), logger)
	store := dataset.NewStore(loader, logger, metrics)

	engine := stats.NewEngine(logger)
	dashboardService := services.NewDashboardService(store, engine, metrics, logger)
	healthService := services.NewHealthService(store, logger)

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics,
		Store:     store,
		Dashboard: dashboardService,
		Health:    healthService,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

func (a *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(a.Metrics.HTTPMiddleware)

	if a.Config.Security.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.Config.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	wsHandler := ws.NewHandler(a.Dashboard, a.checkWSOrigin, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", dashboardHandler.Routes())
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/version", healthHandler.Version)
	})
	r.Handle("/metrics", a.Metrics.Handler())
	r.Get("/ws", wsHandler.ServeHTTP)

	return r
}

// checkWSOrigin allows websocket upgrades from the configured origins.
func (a *Application) checkWSOrigin(r *http.Request) bool {
	if !a.Config.Security.EnableCORS {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range a.Config.Security.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Run warms the dataset cache, starts the HTTP server and blocks until the
// context is cancelled or a termination signal arrives, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the single cache slot up front. A load failure is not fatal to
	// the process: the API keeps answering with a fixed dataset error.
	if _, err := a.Store.Table(ctx); err != nil {
		a.Logger.Error("dataset unavailable, dashboard will serve errors",
			slog.String("error", err.Error()))
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	a.Logger.Info("shutdown complete")
	return nil
}
