package handlers

import (
	"bytes"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/observability"
)

func TestChartHandlers_HandleChart(t *testing.T) {
	h := NewChartHandlers(newFakeSource(), observability.NewMetrics(), discardLogger())

	for _, spec := range charts.Catalog {
		t.Run(spec.ID, func(t *testing.T) {
			w := serve(h.HandleChart, "GET /charts/{view}", "/charts/"+spec.ID+".png")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

			_, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
			assert.NoError(t, err)
		})
	}
}

func TestChartHandlers_EmptySelection(t *testing.T) {
	h := NewChartHandlers(newFakeSource(), nil, discardLogger())

	w := serve(h.HandleChart, "GET /charts/{view}", "/charts/trade_volume_map.png?category=")
	require.Equal(t, http.StatusOK, w.Code)

	_, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	assert.NoError(t, err)
}

func TestChartHandlers_NotFound(t *testing.T) {
	h := NewChartHandlers(newFakeSource(), nil, discardLogger())

	tests := []string{
		"/charts/top_countries.svg",
		"/charts/pie.png",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			w := serve(h.HandleChart, "GET /charts/{view}", target)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}
