// Package charts turns derived view tables into rendered charts.
package charts

import (
	"errors"
	"fmt"

	"shipment-dashboard/internal/models"
)

type Kind string

const (
	KindBar        Kind = "bar"
	KindStackedBar Kind = "stacked_bar"
	KindBox        Kind = "box"
	KindSunburst   Kind = "sunburst"
	KindLine       Kind = "line"
	KindChoropleth Kind = "choropleth"
)

const (
	ViewTopCountries         = "top_countries"
	ViewPaymentTerms         = "payment_terms"
	ViewQuantityDistribution = "quantity_distribution"
	ViewWeightDistribution   = "weight_distribution"
	ViewMonthlyDemand        = "monthly_demand"
	ViewMonthlyExportValue   = "monthly_export_value"
	ViewCategoryTrends       = "category_trends"
	ViewTradeVolumeMap       = "trade_volume_map"
)

var ErrUnknownView = errors.New("unknown view")

type ViewSpec struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Kind  Kind   `json:"kind"`
}

// Catalog lists the dashboard views in display order.
var Catalog = []ViewSpec{
	{ID: ViewTopCountries, Title: "Top 5 Countries by Number of Products Imported and Exported", Kind: KindBar},
	{ID: ViewPaymentTerms, Title: "Payment Terms Across Product Categories", Kind: KindStackedBar},
	{ID: ViewQuantityDistribution, Title: "Quantity Distribution Across Shipping Methods", Kind: KindBox},
	{ID: ViewWeightDistribution, Title: "Weight Distribution Across Shipping Methods", Kind: KindBox},
	{ID: ViewMonthlyDemand, Title: "Monthly Demand for Product Categories", Kind: KindSunburst},
	{ID: ViewMonthlyExportValue, Title: "Monthly Export Value", Kind: KindSunburst},
	{ID: ViewCategoryTrends, Title: "Product Category Trends Over Time", Kind: KindLine},
	{ID: ViewTradeVolumeMap, Title: "Trade Volume by Country", Kind: KindChoropleth},
}

func Lookup(id string) (ViewSpec, error) {
	for _, spec := range Catalog {
		if spec.ID == id {
			return spec, nil
		}
	}
	return ViewSpec{}, fmt.Errorf("%w: %q", ErrUnknownView, id)
}

// Table returns the derived table behind one view.
func Table(views *models.Views, id string) (any, error) {
	switch id {
	case ViewTopCountries:
		return views.TopCountries, nil
	case ViewPaymentTerms:
		return views.PaymentTerms, nil
	case ViewQuantityDistribution:
		return Distribution(views.QuantityDistribution), nil
	case ViewWeightDistribution:
		return Distribution(views.WeightDistribution), nil
	case ViewMonthlyDemand:
		return views.MonthlyDemand, nil
	case ViewMonthlyExportValue:
		return views.MonthlyExportValue, nil
	case ViewCategoryTrends:
		return views.CategoryTrends, nil
	case ViewTradeVolumeMap:
		return views.TradeVolumeMap, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownView, id)
}
