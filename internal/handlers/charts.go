package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/errors"
	"shipment-dashboard/internal/observability"
)

type ChartHandlers struct {
	computer
	logger *slog.Logger
}

func NewChartHandlers(source ViewSource, metrics *observability.Metrics, logger *slog.Logger) *ChartHandlers {
	return &ChartHandlers{
		computer: computer{source: source, metrics: metrics},
		logger:   logger,
	}
}

// HandleChart serves /charts/{view}.png for the filters in the query string.
func (h *ChartHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	logger := observability.RequestLogger(r.Context(), h.logger)

	name := r.PathValue("view")
	id, ok := strings.CutSuffix(name, ".png")
	if !ok {
		errors.WriteError(w, logger, errors.NotFound("charts are served as .png"), requestID)
		return
	}
	if _, err := charts.Lookup(id); err != nil {
		errors.WriteError(w, logger, err, requestID)
		return
	}

	sel := selectionFromQuery(r.URL.Query(), h.source.DefaultSelection())
	views, err := h.compute(r.Context(), sel)
	if err != nil {
		errors.WriteError(w, logger, err, requestID)
		return
	}

	var buf bytes.Buffer
	if err := charts.Render(&buf, id, views); err != nil {
		errors.WriteError(w, logger, err, requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("write chart", "view", id, "error", err)
	}
}
