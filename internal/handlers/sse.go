package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"shipment-dashboard/internal/errors"
	"shipment-dashboard/internal/models"
	"shipment-dashboard/internal/observability"
)

var countryTableTemplate = template.Must(template.New("countryTable").Parse(`
<div id="country-content">
<table class="modern-table">
<thead><tr><th>Direction</th><th>Country</th><th>Shipments</th></tr></thead>
<tbody>
{{range .Import}}<tr>
<td><span class="category-badge">Import</span></td>
<td>{{.Country}}</td>
<td>{{.Count}}</td>
</tr>{{end}}{{range .Export}}<tr>
<td><span class="category-badge">Export</span></td>
<td>{{.Country}}</td>
<td>{{.Count}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var summaryTemplate = template.Must(template.New("summary").Parse(`
<div id="summary">{{if .Err}}<span class="error">{{.Err}}</span>{{else if eq .Rows 0}}No shipments match the current filters.{{else}}{{.Rows}} shipments match the current filters.{{end}}</div>`))

// datastarParam carries the client signals on GET requests.
const datastarParam = "datastar"

// filterSignals mirrors the datastar signals bound to the three selectors.
type filterSignals struct {
	ShippingMethods []string `json:"shippingMethods"`
	Directions      []string `json:"directions"`
	Categories      []string `json:"categories"`
}

type SSEHandlers struct {
	computer
	logger *slog.Logger
}

func NewSSEHandlers(source ViewSource, metrics *observability.Metrics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		computer: computer{source: source, metrics: metrics},
		logger:   logger,
	}
}

func (h *SSEHandlers) renderCountryTable(top models.TopCountries) (string, error) {
	var buf strings.Builder
	err := countryTableTemplate.Execute(&buf, top)
	return buf.String(), err
}

func (h *SSEHandlers) renderSummary(rows int, failure string) (string, error) {
	var buf strings.Builder
	err := summaryTemplate.Execute(&buf, struct {
		Rows int
		Err  string
	}{rows, failure})
	return buf.String(), err
}

// selection reads the filter signals. Requests without datastar signals
// get the default selection.
func (h *SSEHandlers) selection(r *http.Request) (models.Selection, error) {
	if r.URL.Query().Get(datastarParam) == "" {
		return h.source.DefaultSelection(), nil
	}

	var signals filterSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return models.Selection{}, err
	}
	return models.Selection{
		ShippingMethods: signals.ShippingMethods,
		Directions:      signals.Directions,
		Categories:      signals.Categories,
	}, nil
}

// HandleViews recomputes every view for the selected filters and patches
// them into the page: tables as signals, the summary and the country table
// as elements.
func (h *SSEHandlers) HandleViews(w http.ResponseWriter, r *http.Request) {
	logger := observability.RequestLogger(r.Context(), h.logger)

	sel, err := h.selection(r)
	if err != nil {
		logger.Warn("read filter signals", "error", err)
		errors.WriteError(w, logger, errors.BadRequest("Invalid filter signals"), observability.GetRequestID(r.Context()))
		return
	}

	sse := datastar.NewSSE(w, r)

	views, err := h.compute(r.Context(), sel)
	if err != nil {
		appErr := errors.FromDomain(err)
		logger.Error("compute views", "error", err, "code", appErr.Code)

		html, rerr := h.renderSummary(0, appErr.Message)
		if rerr != nil {
			logger.Error("render summary", "error", rerr)
			return
		}
		if err := sse.PatchElements(html); err != nil {
			logger.Warn("patch summary", "error", err)
		}
		return
	}

	tables, err := viewTables(views)
	if err != nil {
		logger.Error("select view tables", "error", err)
		return
	}

	if err := sse.MarshalAndPatchSignals(map[string]any{
		"rowCount": views.RowCount,
		"views":    tables,
	}); err != nil {
		logger.Warn("patch view signals", "error", err)
		return
	}

	summary, err := h.renderSummary(views.RowCount, "")
	if err != nil {
		logger.Error("render summary", "error", err)
		return
	}
	if err := sse.PatchElements(summary); err != nil {
		logger.Warn("patch summary", "error", err)
		return
	}

	table, err := h.renderCountryTable(views.TopCountries)
	if err != nil {
		logger.Error("render country table", "error", err)
		return
	}
	if err := sse.PatchElements(table); err != nil {
		logger.Warn("patch country table", "error", err)
	}
}
