package server

import (
	"log/slog"
	"net/http"

	"shipment-dashboard/internal/handlers"
	"shipment-dashboard/internal/observability"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	metrics       *observability.Metrics
	apiHandlers   *handlers.APIHandlers
	sseHandlers   *handlers.SSEHandlers
	chartHandlers *handlers.ChartHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(source handlers.ViewSource, metrics *observability.Metrics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		metrics:       metrics,
		apiHandlers:   handlers.NewAPIHandlers(source, metrics, logger),
		sseHandlers:   handlers.NewSSEHandlers(source, metrics, logger),
		chartHandlers: handlers.NewChartHandlers(source, metrics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", s.apiHandlers.HandleOptions)
	s.mux.HandleFunc("GET /api/catalog", s.apiHandlers.HandleCatalog)
	s.mux.HandleFunc("GET /api/views", s.apiHandlers.HandleViews)
	s.mux.HandleFunc("GET /api/views/{view}", s.apiHandlers.HandleView)

	// Rendered charts
	s.mux.HandleFunc("GET /charts/{view}", s.chartHandlers.HandleChart)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/views", s.sseHandlers.HandleViews)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, pattern := s.mux.Handler(r)
	observability.SetRoute(r.Context(), pattern)
	s.mux.ServeHTTP(w, r)
}
