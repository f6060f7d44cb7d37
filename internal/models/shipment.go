package models

const (
	DirectionImport = "Import"
	DirectionExport = "Export"
)

// Shipment is one row of the dataset. Date keeps the raw day-month-year
// text; it is parsed per render pass so a malformed value surfaces as an error.
type Shipment struct {
	ShippingMethod string
	ImportExport   string
	Category       string
	Country        string
	PaymentTerms   string
	Quantity       float64
	Weight         float64
	Value          float64
	Date           string
}

// Selection holds the values picked in each of the three filters. A nil or
// empty slice selects nothing.
type Selection struct {
	ShippingMethods []string `json:"shipping_methods"`
	Directions      []string `json:"directions"`
	Categories      []string `json:"categories"`
}

type FilterOptions struct {
	ShippingMethods []string `json:"shipping_methods"`
	Directions      []string `json:"directions"`
	Categories      []string `json:"categories"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type TopCountries struct {
	Import []CountryCount `json:"import"`
	Export []CountryCount `json:"export"`
}

type PaymentTermsRow struct {
	Category string         `json:"category"`
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
}

type PaymentTermsTable struct {
	Terms []string          `json:"terms"`
	Rows  []PaymentTermsRow `json:"rows"`
}

type MethodSamples struct {
	ShippingMethod string    `json:"shipping_method"`
	Values         []float64 `json:"values"`
}

type MonthCategoryQuantity struct {
	Month    string  `json:"month"`
	Category string  `json:"category"`
	Quantity float64 `json:"quantity"`
}

type MonthValue struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

type CountryTotal struct {
	Country  string  `json:"country"`
	ISO3     string  `json:"iso3,omitempty"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
}

// Views are the eight derived tables of one render pass.
type Views struct {
	RowCount             int                     `json:"row_count"`
	TopCountries         TopCountries            `json:"top_countries"`
	PaymentTerms         PaymentTermsTable       `json:"payment_terms"`
	QuantityDistribution []MethodSamples         `json:"quantity_distribution"`
	WeightDistribution   []MethodSamples         `json:"weight_distribution"`
	MonthlyDemand        []MonthCategoryQuantity `json:"monthly_demand"`
	MonthlyExportValue   []MonthValue            `json:"monthly_export_value"`
	CategoryTrends       []MonthCategoryQuantity `json:"category_trends"`
	TradeVolumeMap       []CountryTotal          `json:"trade_volume_map"`
}

// Empty reports whether the filtered table behind the views had no rows.
func (v *Views) Empty() bool {
	return v.RowCount == 0
}
