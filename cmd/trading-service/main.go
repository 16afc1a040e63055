package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftea/trading-system/shared/telemetry"
	"github.com/draftea/trading-system/trading-service/config"
	"github.com/draftea/trading-system/trading-service/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.ReadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = logger.With("service", cfg.ServiceName, "env", cfg.Env)
	logger.Info("starting", "port", cfg.Port, "storage", cfg.Storage.Driver)

	// Initialize dependencies
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := config.BuildDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Error("error closing dependencies", "error", err)
		}
	}()

	// Start event subscriber
	subscriberCtx := ctx
	if deps.Telemetry != nil {
		subscriberCtx = telemetry.WithTelemetry(ctx, deps.Telemetry)
	}
	if err := deps.EventSubscriber.Subscribe(subscriberCtx, deps.TradingEventHandlers); err != nil {
		logger.Error("failed to start event subscriber", "error", err)
		return
	}

	// Setup and start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(deps),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("stopped")
}

func setupRouter(deps *config.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Telemetry middleware (inject telemetry into context)
	if deps.Telemetry != nil {
		r.Use(telemetry.Middleware(deps.Telemetry))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", handlers.NewMetricsHandler())

	// Purchase status push channel; long-lived, so it stays outside the request timeout
	r.Handle("/messagehub", deps.Notifier)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		deps.TradingHandlers.RegisterRoutes(r)
	})

	return r
}
