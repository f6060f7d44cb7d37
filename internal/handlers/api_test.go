package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/models"
	"shipment-dashboard/internal/services"
)

// fakeSource computes views over a fixed slice and records the last selection.
type fakeSource struct {
	records []models.Shipment
	err     error
	last    models.Selection
}

func newFakeSource() *fakeSource {
	return &fakeSource{records: []models.Shipment{
		{ShippingMethod: "Sea", ImportExport: models.DirectionImport, Category: "Toys", Country: "India", PaymentTerms: "Prepaid", Quantity: 10, Weight: 100, Value: 1000, Date: "15-01-2022"},
		{ShippingMethod: "Air", ImportExport: models.DirectionExport, Category: "Machinery", Country: "China", PaymentTerms: "Net 30", Quantity: 20, Weight: 200, Value: 2000, Date: "3-02-2022"},
		{ShippingMethod: "Sea", ImportExport: models.DirectionExport, Category: "Toys", Country: "India", PaymentTerms: "Prepaid", Quantity: 4, Weight: 40, Value: 400, Date: "9-02-2022"},
	}}
}

func (f *fakeSource) Options() models.FilterOptions {
	return models.FilterOptions{
		ShippingMethods: []string{"Sea", "Air"},
		Directions:      []string{models.DirectionImport, models.DirectionExport},
		Categories:      []string{"Toys", "Machinery"},
	}
}

func (f *fakeSource) DefaultSelection() models.Selection {
	opts := f.Options()
	return models.Selection{
		ShippingMethods: opts.ShippingMethods,
		Directions:      opts.Directions,
		Categories:      opts.Categories,
	}
}

func (f *fakeSource) Compute(_ context.Context, sel models.Selection) (*models.Views, error) {
	f.last = sel
	if f.err != nil {
		return nil, f.err
	}
	return services.ComputeViews(f.records, sel)
}

func (f *fakeSource) Stats() map[string]any {
	return map[string]any{"record_count": len(f.records)}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(handler http.HandlerFunc, pattern, target string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestSelectionFromQuery(t *testing.T) {
	defaults := models.Selection{
		ShippingMethods: []string{"Sea", "Air"},
		Directions:      []string{"Import", "Export"},
		Categories:      []string{"Toys"},
	}

	tests := []struct {
		name  string
		query string
		want  models.Selection
	}{
		{
			name:  "absent parameters select everything",
			query: "",
			want:  defaults,
		},
		{
			name:  "repeated values",
			query: "shipping_method=Sea&shipping_method=Air&import_export=Import&import_export=Export",
			want: models.Selection{
				ShippingMethods: []string{"Sea", "Air"},
				Directions:      []string{"Import", "Export"},
				Categories:      []string{"Toys"},
			},
		},
		{
			name:  "values keep their commas",
			query: "category=" + url.QueryEscape("Toys, Games") + "&category=Books",
			want: models.Selection{
				ShippingMethods: []string{"Sea", "Air"},
				Directions:      []string{"Import", "Export"},
				Categories:      []string{"Toys, Games", "Books"},
			},
		},
		{
			name:  "empty parameter selects nothing",
			query: "category=",
			want: models.Selection{
				ShippingMethods: []string{"Sea", "Air"},
				Directions:      []string{"Import", "Export"},
				Categories:      []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, selectionFromQuery(q, defaults))
		})
	}
}

func TestAPIHandlers_HandleViews(t *testing.T) {
	source := newFakeSource()
	h := NewAPIHandlers(source, nil, discardLogger())

	w := serve(h.HandleViews, "GET /api/views", "/api/views?shipping_method=Sea")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	env := decode(t, w)
	require.True(t, env.Success)

	var resp struct {
		RowCount int                        `json:"row_count"`
		Views    map[string]json.RawMessage `json:"views"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.RowCount)
	for _, spec := range charts.Catalog {
		assert.Contains(t, resp.Views, spec.ID)
	}
	assert.Equal(t, []string{"Sea"}, source.last.ShippingMethods)
}

func TestAPIHandlers_HandleView(t *testing.T) {
	h := NewAPIHandlers(newFakeSource(), nil, discardLogger())

	w := serve(h.HandleView, "GET /api/views/{view}", "/api/views/top_countries")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		View  charts.ViewSpec     `json:"view"`
		Table models.TopCountries `json:"table"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Equal(t, charts.ViewTopCountries, resp.View.ID)
	assert.Equal(t, []models.CountryCount{{Country: "India", Count: 1}}, resp.Table.Import)
	assert.Equal(t, []models.CountryCount{{Country: "China", Count: 1}, {Country: "India", Count: 1}}, resp.Table.Export)
}

func TestAPIHandlers_HandleView_Unknown(t *testing.T) {
	h := NewAPIHandlers(newFakeSource(), nil, discardLogger())

	w := serve(h.HandleView, "GET /api/views/{view}", "/api/views/pie")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)
}

func TestAPIHandlers_ParseError(t *testing.T) {
	source := newFakeSource()
	source.err = &services.ParseError{Row: 4, Value: "2022-13-01", Err: stderrors.New("bad date")}
	h := NewAPIHandlers(source, nil, discardLogger())

	w := serve(h.HandleViews, "GET /api/views", "/api/views")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "PARSE_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "2022-13-01")
}

func TestAPIHandlers_HandleOptions(t *testing.T) {
	h := NewAPIHandlers(newFakeSource(), nil, discardLogger())

	w := serve(h.HandleOptions, "GET /api/options", "/api/options")
	require.Equal(t, http.StatusOK, w.Code)

	var opts models.FilterOptions
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &opts))
	assert.Equal(t, []string{"Toys", "Machinery"}, opts.Categories)
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	h := NewAPIHandlers(newFakeSource(), nil, discardLogger())

	w := serve(h.HandleHealth, "GET /health", "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]string
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.NotEmpty(t, health["timestamp"])
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	h := NewAPIHandlers(newFakeSource(), nil, discardLogger())

	w := serve(h.HandleStats, "GET /admin/stats", "/admin/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"record_count":3}`, string(decode(t, w).Data))
}
