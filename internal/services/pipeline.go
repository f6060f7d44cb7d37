package services

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/biter777/countries"

	"shipment-dashboard/internal/models"
)

// TopN is the number of countries kept per trade direction.
const TopN = 5

// DateLayout accepts one or two digit day and month, e.g. 15-03-2022 or 5-3-2022.
const DateLayout = "2-1-2006"

// Filter keeps the records whose shipping method, trade direction and
// category are all members of the selection. An empty set in any dimension
// selects nothing.
func Filter(records []models.Shipment, sel models.Selection) []models.Shipment {
	methods := toSet(sel.ShippingMethods)
	directions := toSet(sel.Directions)
	categories := toSet(sel.Categories)

	out := make([]models.Shipment, 0)
	if len(methods) == 0 || len(directions) == 0 || len(categories) == 0 {
		return out
	}

	for _, r := range records {
		if _, ok := methods[r.ShippingMethod]; !ok {
			continue
		}
		if _, ok := directions[r.ImportExport]; !ok {
			continue
		}
		if _, ok := categories[r.Category]; !ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TopCountries counts rows per country within one trade direction and keeps
// the n largest. Equal counts keep the order in which the countries were
// first seen.
func TopCountries(rows []models.Shipment, direction string, n int) []models.CountryCount {
	counts := make([]models.CountryCount, 0)
	pos := make(map[string]int)

	for _, r := range rows {
		if r.ImportExport != direction {
			continue
		}
		i, ok := pos[r.Country]
		if !ok {
			i = len(counts)
			pos[r.Country] = i
			counts = append(counts, models.CountryCount{Country: r.Country})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b models.CountryCount) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// PaymentTermsByCategory builds the category by payment terms contingency
// table. Every row carries a count for every term, zero when absent.
func PaymentTermsByCategory(rows []models.Shipment) models.PaymentTermsTable {
	termSet := make(map[string]struct{})
	cells := make(map[string]map[string]int)

	for _, r := range rows {
		termSet[r.PaymentTerms] = struct{}{}
		byTerm, ok := cells[r.Category]
		if !ok {
			byTerm = make(map[string]int)
			cells[r.Category] = byTerm
		}
		byTerm[r.PaymentTerms]++
	}

	terms := sortedKeys(termSet)
	categories := sortedKeys(cells)

	table := models.PaymentTermsTable{
		Terms: terms,
		Rows:  make([]models.PaymentTermsRow, 0, len(categories)),
	}
	for _, category := range categories {
		row := models.PaymentTermsRow{
			Category: category,
			Counts:   make(map[string]int, len(terms)),
		}
		for _, term := range terms {
			c := cells[category][term]
			row.Counts[term] = c
			row.Total += c
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// DistributionByMethod groups the raw values picked by value per shipping
// method. Methods keep encounter order; no value is aggregated away.
func DistributionByMethod(rows []models.Shipment, value func(models.Shipment) float64) []models.MethodSamples {
	groups := make([]models.MethodSamples, 0)
	pos := make(map[string]int)

	for _, r := range rows {
		i, ok := pos[r.ShippingMethod]
		if !ok {
			i = len(groups)
			pos[r.ShippingMethod] = i
			groups = append(groups, models.MethodSamples{ShippingMethod: r.ShippingMethod})
		}
		groups[i].Values = append(groups[i].Values, value(r))
	}
	return groups
}

func quantityOf(s models.Shipment) float64 { return s.Quantity }
func weightOf(s models.Shipment) float64   { return s.Weight }

// ParseMonth returns the calendar month of a day-month-year date.
func ParseMonth(date string) (time.Month, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, err
	}
	return t.Month(), nil
}

// DeriveMonths parses every row's date. The first malformed value aborts
// the pass with a *ParseError.
func DeriveMonths(rows []models.Shipment) ([]time.Month, error) {
	months := make([]time.Month, len(rows))
	for i, r := range rows {
		m, err := ParseMonth(r.Date)
		if err != nil {
			return nil, &ParseError{Row: i, Value: r.Date, Err: err}
		}
		months[i] = m
	}
	return months, nil
}

type monthCategory struct {
	month    time.Month
	category string
}

// MonthlyCategoryVolume sums quantity per month and category, in calendar
// order and then category name.
func MonthlyCategoryVolume(rows []models.Shipment, months []time.Month) []models.MonthCategoryQuantity {
	sums := make(map[monthCategory]float64)
	for i, r := range rows {
		sums[monthCategory{months[i], r.Category}] += r.Quantity
	}

	keys := make([]monthCategory, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b monthCategory) int {
		if c := cmp.Compare(a.month, b.month); c != 0 {
			return c
		}
		return strings.Compare(a.category, b.category)
	})

	out := make([]models.MonthCategoryQuantity, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.MonthCategoryQuantity{
			Month:    k.month.String(),
			Category: k.category,
			Quantity: sums[k],
		})
	}
	return out
}

// MonthlyExportValue sums the value of export rows per month.
func MonthlyExportValue(rows []models.Shipment, months []time.Month) []models.MonthValue {
	var sums [13]float64
	var seen [13]bool
	for i, r := range rows {
		if r.ImportExport != models.DirectionExport {
			continue
		}
		sums[months[i]] += r.Value
		seen[months[i]] = true
	}

	out := make([]models.MonthValue, 0)
	for m := time.January; m <= time.December; m++ {
		if seen[m] {
			out = append(out, models.MonthValue{Month: m.String(), Value: sums[m]})
		}
	}
	return out
}

// CountryTotals sums quantity and value per country, sorted by name. ISO3
// is left empty when the name does not resolve.
func CountryTotals(rows []models.Shipment) []models.CountryTotal {
	totals := make(map[string]*models.CountryTotal)
	for _, r := range rows {
		t, ok := totals[r.Country]
		if !ok {
			t = &models.CountryTotal{Country: r.Country, ISO3: ResolveISO3(r.Country)}
			totals[r.Country] = t
		}
		t.Quantity += r.Quantity
		t.Value += r.Value
	}

	out := make([]models.CountryTotal, 0, len(totals))
	for _, name := range sortedKeys(totals) {
		out = append(out, *totals[name])
	}
	return out
}

// ResolveISO3 maps a country name to its ISO 3166-1 alpha-3 code.
func ResolveISO3(name string) string {
	code := countries.ByName(name)
	if code == countries.Unknown {
		return ""
	}
	return code.Alpha3()
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
