package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/errors"
	"shipment-dashboard/internal/models"
	"shipment-dashboard/internal/observability"
)

var noStore = map[string]string{
	"Cache-Control": "no-store",
}

type APIHandlers struct {
	computer
	logger *slog.Logger
}

func NewAPIHandlers(source ViewSource, metrics *observability.Metrics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		computer: computer{source: source, metrics: metrics},
		logger:   logger,
	}
}

type viewsResponse struct {
	RowCount  int              `json:"row_count"`
	Selection models.Selection `json:"selection"`
	Views     map[string]any   `json:"views"`
}

type viewResponse struct {
	View      charts.ViewSpec  `json:"view"`
	RowCount  int              `json:"row_count"`
	Selection models.Selection `json:"selection"`
	Table     any              `json:"table"`
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.source.Options())
}

func (h *APIHandlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, charts.Catalog)
}

func (h *APIHandlers) HandleViews(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	sel := selectionFromQuery(r.URL.Query(), h.source.DefaultSelection())

	views, err := h.compute(r.Context(), sel)
	if err != nil {
		errors.WriteError(w, observability.RequestLogger(r.Context(), h.logger), err, requestID)
		return
	}

	tables, err := viewTables(views)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, viewsResponse{
		RowCount:  views.RowCount,
		Selection: sel,
		Views:     tables,
	}, noStore)
}

func (h *APIHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	spec, err := charts.Lookup(r.PathValue("view"))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	sel := selectionFromQuery(r.URL.Query(), h.source.DefaultSelection())
	views, err := h.compute(r.Context(), sel)
	if err != nil {
		errors.WriteError(w, observability.RequestLogger(r.Context(), h.logger), err, requestID)
		return
	}

	table, err := charts.Table(views, spec.ID)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	errors.WriteSuccessWithHeaders(w, viewResponse{
		View:      spec,
		RowCount:  views.RowCount,
		Selection: sel,
		Table:     table,
	}, noStore)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.source.Stats())
}
