package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"shipment-dashboard/internal/config"
	"shipment-dashboard/internal/handlers"
	"shipment-dashboard/internal/middleware"
	"shipment-dashboard/internal/observability"
	"shipment-dashboard/internal/server"
	"shipment-dashboard/internal/services"
	"shipment-dashboard/internal/ui/templates"
)

const (
	renderTimeout   = 10 * time.Second
	datasetTimeout  = 30 * time.Second
	dashboardMaxAge = "public, max-age=300"
)

// dashboardHandler renders the page with the session's filter options.
func dashboardHandler(source handlers.ViewSource, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", dashboardMaxAge)
		if err := templates.Dashboard(source.Options()).Render(ctx, w); err != nil {
			logger.Error("render dashboard", "error", err)
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

// newHandler wires routes and the middleware chain around a loaded session.
func newHandler(cfg *config.Config, session handlers.ViewSource, metrics *observability.Metrics, logger *slog.Logger) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(session, logger),
	}
	srv := server.NewServer(session, metrics, logger, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.Metrics(metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"data_file", cfg.Data.File,
	)

	shutdownTracing, err := observability.InitTracing(cfg.Tracing, os.Stderr)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), datasetTimeout)
	start := time.Now()
	session, err := services.LoadSession(ctx, cfg.Data.File, services.SessionOptions{
		SampleSize: cfg.Data.SampleSize,
		Seed:       cfg.Data.SampleSeed,
		Logger:     logger,
	})
	cancel()
	if err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("dataset ready", "rows", session.Len(), "duration", time.Since(start))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, session, metrics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("flushing traces")
		return shutdownTracing(ctx)
	})

	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
