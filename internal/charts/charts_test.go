package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-dashboard/internal/models"
	"shipment-dashboard/internal/services"
)

func testViews(t *testing.T) *models.Views {
	t.Helper()
	records := []models.Shipment{
		{ShippingMethod: "Air", ImportExport: "Import", Category: "Electronics", Country: "India", PaymentTerms: "Prepaid", Quantity: 10, Weight: 2.5, Value: 100, Date: "15-03-2022"},
		{ShippingMethod: "Sea", ImportExport: "Export", Category: "Clothing", Country: "China", PaymentTerms: "Net 30", Quantity: 20, Weight: 8, Value: 250, Date: "02-01-2023"},
		{ShippingMethod: "Air", ImportExport: "Export", Category: "Electronics", Country: "Germany", PaymentTerms: "Prepaid", Quantity: 5, Weight: 1, Value: 80, Date: "28-03-2021"},
		{ShippingMethod: "Land", ImportExport: "Import", Category: "Furniture", Country: "India", PaymentTerms: "COD", Quantity: 7, Weight: 30, Value: 400, Date: "10-07-2022"},
	}
	views, err := services.ComputeViews(records, models.Selection{
		ShippingMethods: []string{"Air", "Sea", "Land"},
		Directions:      []string{"Import", "Export"},
		Categories:      []string{"Electronics", "Clothing", "Furniture"},
	})
	require.NoError(t, err)
	return views
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{8, 1, 7, 2, 6, 3, 5, 4})

	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 8.0, s.Max)
	assert.Equal(t, 4.5, s.Median)
	assert.Equal(t, 4.5, s.Mean)
	assert.InDelta(t, 2.75, s.Q1, 1e-9)
	assert.InDelta(t, 6.25, s.Q3, 1e-9)
	assert.LessOrEqual(t, s.Q1, s.Median)
	assert.LessOrEqual(t, s.Median, s.Q3)
}

func TestSummarize_SmallInputs(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]float64{5})
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 5.0, s.Median)
	assert.Equal(t, 5.0, s.Mean)
	assert.Equal(t, 5.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 5.0, s.Q1)
	assert.Equal(t, 5.0, s.Q3)

	s = Summarize([]float64{3, 1})
	assert.InDelta(t, 1.5, s.Q1, 1e-9)
	assert.InDelta(t, 2.5, s.Q3, 1e-9)
}

func TestDistribution_KeepsValues(t *testing.T) {
	groups := []models.MethodSamples{
		{ShippingMethod: "Air", Values: []float64{1, 2, 3}},
		{ShippingMethod: "Sea", Values: []float64{10}},
	}

	got := Distribution(groups)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1, 2, 3}, got[0].Values)
	assert.Equal(t, 2.0, got[0].Summary.Median)
	assert.Equal(t, "Sea", got[1].ShippingMethod)
}

func TestLookup(t *testing.T) {
	spec, err := Lookup(ViewPaymentTerms)
	require.NoError(t, err)
	assert.Equal(t, KindStackedBar, spec.Kind)

	_, err = Lookup("pie")
	assert.ErrorIs(t, err, ErrUnknownView)
	assert.Len(t, Catalog, 8)
}

func TestTable(t *testing.T) {
	views := testViews(t)

	for _, spec := range Catalog {
		table, err := Table(views, spec.ID)
		require.NoError(t, err, spec.ID)
		assert.NotNil(t, table, spec.ID)
	}

	_, err := Table(views, "nope")
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestRender_AllViews(t *testing.T) {
	views := testViews(t)

	for _, spec := range Catalog {
		t.Run(spec.ID, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, spec.ID, views))

			cfg, err := png.DecodeConfig(&buf)
			require.NoError(t, err)
			assert.Greater(t, cfg.Width, 0)
			assert.Greater(t, cfg.Height, 0)
		})
	}
}

func TestRender_EmptyViewsDrawPlaceholder(t *testing.T) {
	views, err := services.ComputeViews(nil, models.Selection{})
	require.NoError(t, err)

	for _, spec := range Catalog {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, spec.ID, views), spec.ID)

		cfg, err := png.DecodeConfig(&buf)
		require.NoError(t, err)
		assert.Equal(t, defaultWidth, cfg.Width)
		assert.Equal(t, defaultHeight, cfg.Height)
	}
}

func TestRender_UnknownView(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "pie", testViews(t))
	assert.ErrorIs(t, err, ErrUnknownView)
	assert.Zero(t, buf.Len())
}
