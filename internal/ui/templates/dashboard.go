// Package templates holds the server-rendered dashboard page.
package templates

import (
	"context"
	"encoding/json"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"shipment-dashboard/internal/charts"
	"shipment-dashboard/internal/models"
)

const Title = "Interactive Shipment Analysis Dashboard"

type selector struct {
	Label   string
	Bind    template.HTMLAttr
	Options []string
}

type chartPanel struct {
	ID    string
	Title string
	Src   template.HTMLAttr
}

type dashboardData struct {
	Title     string
	Signals   string
	Selectors []selector
	Charts    []chartPanel
}

// chartSrc binds a chart image to the current signals. Every selected value
// becomes its own parameter; an empty signal array becomes one empty
// parameter, which selects nothing.
func chartSrc(id string) template.HTMLAttr {
	return template.HTMLAttr(`data-attr-src="'/charts/` + id + `.png?' + new URLSearchParams(` +
		`[['shipping_method', $shippingMethods], ['import_export', $directions], ['category', $categories]]` +
		`.flatMap(([key, values]) => values.length ? values.map(v => [key, v]) : [[key, '']]))"`)
}

// Dashboard renders the page with every filter option selected.
func Dashboard(opts models.FilterOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		signals, err := json.Marshal(map[string][]string{
			"shippingMethods": nonNil(opts.ShippingMethods),
			"directions":      nonNil(opts.Directions),
			"categories":      nonNil(opts.Categories),
		})
		if err != nil {
			return err
		}

		data := dashboardData{
			Title:   Title,
			Signals: string(signals),
			Selectors: []selector{
				{Label: "Shipping Method", Bind: "data-bind-shipping-methods", Options: opts.ShippingMethods},
				{Label: "Import / Export", Bind: "data-bind-directions", Options: opts.Directions},
				{Label: "Category", Bind: "data-bind-categories", Options: opts.Categories},
			},
		}
		for _, spec := range charts.Catalog {
			data.Charts = append(data.Charts, chartPanel{ID: spec.ID, Title: spec.Title, Src: chartSrc(spec.ID)})
		}
		return dashboardTemplate.Execute(w, data)
	})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6f8; color: #1f2933; }
header { padding: 1.5rem 2rem; background: #1f3a5f; color: #fff; }
header h1 { margin: 0; font-size: 1.6rem; }
.filters { display: flex; gap: 1.5rem; padding: 1rem 2rem; background: #fff; border-bottom: 1px solid #d9dee5; }
.filters label { display: flex; flex-direction: column; font-weight: 600; font-size: 0.9rem; }
.filters select { min-width: 12rem; min-height: 6rem; margin-top: 0.35rem; }
#summary { padding: 0.75rem 2rem; }
#summary .error { color: #b42318; font-weight: 600; }
.grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(480px, 1fr)); gap: 1.25rem; padding: 0 2rem 2rem; }
.card { background: #fff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0, 0, 0, 0.08); padding: 1rem; }
.card h2 { font-size: 1.05rem; margin: 0 0 0.75rem; }
.card img { width: 100%; height: auto; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #eef0f3; }
.category-badge { background: #e0ecff; border-radius: 4px; padding: 0.1rem 0.4rem; font-size: 0.8rem; }
</style>
</head>
<body data-signals="{{.Signals}}" data-on-load="@get('/sse/views')">
<header><h1>{{.Title}}</h1></header>
<section class="filters">
{{range .Selectors}}<label>{{.Label}}
<select multiple {{.Bind}} data-on-change="@get('/sse/views')">
{{range .Options}}<option value="{{.}}" selected>{{.}}</option>
{{end}}</select>
</label>
{{end}}</section>
<div id="summary"></div>
<main class="grid">
<div class="card">
<h2>Top Countries</h2>
<div id="country-content"></div>
</div>
{{range .Charts}}<div class="card" id="chart-{{.ID}}">
<h2>{{.Title}}</h2>
<img alt="{{.Title}}" {{.Src}}>
</div>
{{end}}</main>
</body>
</html>
`))
