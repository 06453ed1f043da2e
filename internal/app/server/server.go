package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/appraisal"
	"pms/internal/domain/employee"
	"pms/internal/domain/reports"
	"pms/internal/platform/config"
	"pms/internal/platform/db"
	"pms/internal/platform/email"
	"pms/internal/platform/metrics"
	"pms/internal/transport/http/api"
	appraisalhandler "pms/internal/transport/http/handlers/appraisal"
	authhandler "pms/internal/transport/http/handlers/auth"
	employeehandler "pms/internal/transport/http/handlers/employee"
	reportshandler "pms/internal/transport/http/handlers/reports"
	"pms/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Pool    *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New connects to the database, runs migrations and seeding when enabled,
// and assembles the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	app := &App{Config: cfg, Pool: pool, Metrics: metrics.New()}
	app.Router = app.buildRouter()
	return app, nil
}

func (a *App) buildRouter() http.Handler {
	employeeService := employee.NewService(employee.NewStore(a.Pool))
	appraisalService := appraisal.NewService(appraisal.NewStore(a.Pool), email.New(a.Config), a.Config.EmailFrom)
	reportsService := reports.NewService(reports.NewStore(a.Pool))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))
	router.Use(middleware.Auth(a.Config.JWTSecret))
	router.Use(middleware.RateLimit(a.Config.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Config.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(employeeService, a.Config.JWTSecret, a.Config.TokenTTL).RegisterRoutes(r)
		employeehandler.NewHandler(employeeService).RegisterRoutes(r)
		appraisalhandler.NewHandler(appraisalService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, a.Config.ExportDir).RegisterRoutes(r)
	})

	return router
}

// Run serves until the context is cancelled or a SIGINT/SIGTERM arrives,
// then drains in-flight requests before returning.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	a.Pool.Close()
}
