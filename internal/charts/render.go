package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	chartdraw "github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"shipment-dashboard/internal/models"
)

const (
	defaultWidth  = 1024
	defaultHeight = 512
)

var palette = []chartdraw.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorYellow,
	chart.ColorAlternateGray,
}

func seriesStyle(i int) chart.Style {
	c := palette[i%len(palette)]
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 2}
}

var hiddenStyle = chart.Style{
	FillColor:   chartdraw.ColorTransparent,
	StrokeColor: chartdraw.ColorTransparent,
}

// Render writes the PNG chart for one view. A view with no rows is drawn
// as a "no data" placeholder rather than failing.
func Render(w io.Writer, id string, views *models.Views) error {
	spec, err := Lookup(id)
	if err != nil {
		return err
	}

	var r renderer
	switch id {
	case ViewTopCountries:
		r = topCountriesChart(spec, views.TopCountries)
	case ViewPaymentTerms:
		r = paymentTermsChart(spec, views.PaymentTerms)
	case ViewQuantityDistribution:
		r = boxChart(spec, views.QuantityDistribution)
	case ViewWeightDistribution:
		r = boxChart(spec, views.WeightDistribution)
	case ViewMonthlyDemand:
		r = monthlyDemandChart(spec, views.MonthlyDemand)
	case ViewMonthlyExportValue:
		r = monthlyExportChart(spec, views.MonthlyExportValue)
	case ViewCategoryTrends:
		r = trendsChart(spec, views.CategoryTrends)
	case ViewTradeVolumeMap:
		r = tradeVolumeChart(spec, views.TradeVolumeMap)
	}

	if r == nil {
		return Placeholder(w, spec.Title)
	}

	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		slog.Warn("chart render failed, drawing placeholder", "view", id, "error", err)
		return Placeholder(w, spec.Title)
	}
	_, err = buf.WriteTo(w)
	return err
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func topCountriesChart(spec ViewSpec, top models.TopCountries) renderer {
	if len(top.Import) == 0 && len(top.Export) == 0 {
		return nil
	}

	bars := make([]chart.Value, 0, len(top.Import)+len(top.Export))
	for _, c := range top.Import {
		bars = append(bars, chart.Value{Label: "Import: " + c.Country, Value: float64(c.Count), Style: seriesStyle(0)})
	}
	for _, c := range top.Export {
		bars = append(bars, chart.Value{Label: "Export: " + c.Country, Value: float64(c.Count), Style: seriesStyle(1)})
	}

	return &chart.BarChart{
		Title:    spec.Title,
		Width:    defaultWidth,
		Height:   defaultHeight,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{Name: "Number of Products", Range: zeroBased(maxValue(bars))},
		Bars:  bars,
	}
}

func paymentTermsChart(spec ViewSpec, table models.PaymentTermsTable) renderer {
	if len(table.Rows) == 0 {
		return nil
	}

	bars := make([]chart.StackedBar, 0, len(table.Rows))
	for _, row := range table.Rows {
		values := make([]chart.Value, 0, len(table.Terms))
		for i, term := range table.Terms {
			values = append(values, chart.Value{Label: term, Value: float64(row.Counts[term]), Style: seriesStyle(i)})
		}
		bars = append(bars, chart.StackedBar{Name: row.Category, Values: values})
	}

	return &chart.StackedBarChart{
		Title:      spec.Title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarSpacing: 40,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
}

// boxChart draws each group as a stacked bar whose visible segments span
// Q1 to median and median to Q3.
func boxChart(spec ViewSpec, groups []models.MethodSamples) renderer {
	if len(groups) == 0 {
		return nil
	}

	bars := make([]chart.StackedBar, 0, len(groups))
	for _, g := range groups {
		s := Summarize(g.Values)
		bars = append(bars, chart.StackedBar{
			Name: fmt.Sprintf("%s (mean %.1f)", g.ShippingMethod, s.Mean),
			Values: []chart.Value{
				{Label: "", Value: s.Q1, Style: hiddenStyle},
				{Label: "Q1-median", Value: s.Median - s.Q1, Style: seriesStyle(0)},
				{Label: "median-Q3", Value: s.Q3 - s.Median, Style: seriesStyle(1)},
			},
		})
	}

	return &chart.StackedBarChart{
		Title:      spec.Title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarSpacing: 60,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
}

// monthlyDemandChart flattens the month/category hierarchy into one stacked
// bar per month.
func monthlyDemandChart(spec ViewSpec, rows []models.MonthCategoryQuantity) renderer {
	if len(rows) == 0 {
		return nil
	}

	categories := distinctCategories(rows)
	var bars []chart.StackedBar
	for _, row := range rows {
		if len(bars) == 0 || bars[len(bars)-1].Name != row.Month {
			bars = append(bars, chart.StackedBar{Name: row.Month})
		}
		last := &bars[len(bars)-1]
		last.Values = append(last.Values, chart.Value{
			Label: row.Category,
			Value: row.Quantity,
			Style: seriesStyle(slices.Index(categories, row.Category)),
		})
	}

	return &chart.StackedBarChart{
		Title:      spec.Title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarSpacing: 20,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
}

func monthlyExportChart(spec ViewSpec, rows []models.MonthValue) renderer {
	if len(rows) == 0 {
		return nil
	}

	bars := make([]chart.Value, 0, len(rows))
	for i, row := range rows {
		bars = append(bars, chart.Value{Label: row.Month, Value: row.Value, Style: seriesStyle(i)})
	}

	return &chart.BarChart{
		Title:      spec.Title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarWidth:   50,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Name: "Value", Range: zeroBased(maxValue(bars))},
		Bars:       bars,
	}
}

func trendsChart(spec ViewSpec, rows []models.MonthCategoryQuantity) renderer {
	if len(rows) == 0 {
		return nil
	}

	categories := distinctCategories(rows)
	series := make([]chart.Series, 0, len(categories))
	var maxY float64
	for i, category := range categories {
		s := chart.ContinuousSeries{Name: category, Style: seriesStyle(i)}
		for _, row := range rows {
			if row.Category != category {
				continue
			}
			s.XValues = append(s.XValues, float64(monthNumber(row.Month)))
			s.YValues = append(s.YValues, row.Quantity)
			maxY = max(maxY, row.Quantity)
		}
		s.Style.DotWidth = 4
		series = append(series, s)
	}

	ticks := make([]chart.Tick, 0, 12)
	for m := time.January; m <= time.December; m++ {
		ticks = append(ticks, chart.Tick{Value: float64(m), Label: m.String()[:3]})
	}

	c := &chart.Chart{
		Title:      spec.Title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 24}},
		XAxis: chart.XAxis{
			Name:  "Month",
			Range: &chart.ContinuousRange{Min: 1, Max: 12},
			Ticks: ticks,
		},
		YAxis:  chart.YAxis{Name: "Quantity", Range: zeroBased(maxY)},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.Legend(c)}
	return c
}

// tradeVolumeChart stands in for the choropleth: quantity per country.
func tradeVolumeChart(spec ViewSpec, rows []models.CountryTotal) renderer {
	if len(rows) == 0 {
		return nil
	}

	bars := make([]chart.Value, 0, len(rows))
	for _, row := range rows {
		label := row.Country
		if row.ISO3 != "" {
			label = row.ISO3
		}
		bars = append(bars, chart.Value{Label: label, Value: row.Quantity, Style: seriesStyle(0)})
	}

	return &chart.BarChart{
		Title:      spec.Title,
		Width:      max(defaultWidth, 40*len(bars)),
		Height:     defaultHeight,
		BarWidth:   30,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Name: "Quantity", Range: zeroBased(maxValue(bars))},
		Bars:       bars,
	}
}

func distinctCategories(rows []models.MonthCategoryQuantity) []string {
	var out []string
	for _, row := range rows {
		if !slices.Contains(out, row.Category) {
			out = append(out, row.Category)
		}
	}
	slices.Sort(out)
	return out
}

func monthNumber(name string) time.Month {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m
		}
	}
	return 0
}

func maxValue(values []chart.Value) float64 {
	var m float64
	for _, v := range values {
		m = max(m, v.Value)
	}
	return m
}

// zeroBased keeps the axis range non-degenerate when every value is equal.
func zeroBased(maxY float64) *chart.ContinuousRange {
	if maxY <= 0 {
		maxY = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: maxY * 1.1}
}

// Placeholder writes a blank PNG carrying the view title and "no data".
func Placeholder(w io.Writer, title string) error {
	img := image.NewRGBA(image.Rect(0, 0, defaultWidth, defaultHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	drawText(img, title, 16, 24)
	drawText(img, "No data for the current filters", defaultWidth/2-100, defaultHeight/2)

	return png.Encode(w, img)
}

func drawText(img draw.Image, text string, x, y int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Gray{Y: 80}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
