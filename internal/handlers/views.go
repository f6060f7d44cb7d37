package handlers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/models"
	"shipment-dashboard/internal/observability"
)

// ViewSource is the dataset session the handlers read from.
type ViewSource interface {
	Options() models.FilterOptions
	DefaultSelection() models.Selection
	Compute(ctx context.Context, sel models.Selection) (*models.Views, error)
	Stats() map[string]any
}

const (
	paramShippingMethod = "shipping_method"
	paramImportExport   = "import_export"
	paramCategory       = "category"
)

// selectionFromQuery reads the three filters from query parameters. An
// absent parameter selects every value; a present but empty one (?category=)
// selects none. Each value is its own repeated parameter, so values may
// contain commas.
func selectionFromQuery(q url.Values, defaults models.Selection) models.Selection {
	return models.Selection{
		ShippingMethods: queryValues(q, paramShippingMethod, defaults.ShippingMethods),
		Directions:      queryValues(q, paramImportExport, defaults.Directions),
		Categories:      queryValues(q, paramCategory, defaults.Categories),
	}
}

func queryValues(q url.Values, key string, fallback []string) []string {
	raw, ok := q[key]
	if !ok {
		return fallback
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type computer struct {
	source  ViewSource
	metrics *observability.Metrics
}

func (c computer) compute(ctx context.Context, sel models.Selection) (*models.Views, error) {
	start := time.Now()
	views, err := c.source.Compute(ctx, sel)

	if c.metrics != nil {
		rows := 0
		if views != nil {
			rows = views.RowCount
		}
		c.metrics.ObserveCompute(rows, time.Since(start), err)
	}
	return views, err
}

// viewTables keys every catalog view's table by its id.
func viewTables(views *models.Views) (map[string]any, error) {
	tables := make(map[string]any, len(charts.Catalog))
	for _, spec := range charts.Catalog {
		table, err := charts.Table(views, spec.ID)
		if err != nil {
			return nil, err
		}
		tables[spec.ID] = table
	}
	return tables, nil
}
