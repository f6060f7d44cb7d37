package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

type routeKey struct{}

type routeHolder struct {
	pattern string
}

// TrackRoute prepares ctx to receive the route pattern chosen by the router.
func TrackRoute(ctx context.Context) context.Context {
	return context.WithValue(ctx, routeKey{}, &routeHolder{})
}

// SetRoute records the matched pattern, minus any method prefix. It is a
// no-op on contexts not prepared by TrackRoute.
func SetRoute(ctx context.Context, pattern string) {
	holder, ok := ctx.Value(routeKey{}).(*routeHolder)
	if !ok {
		return
	}
	if _, path, found := strings.Cut(pattern, " "); found {
		pattern = path
	}
	holder.pattern = pattern
}

// Route returns the pattern recorded by SetRoute, or "" if none matched.
func Route(ctx context.Context) string {
	if holder, ok := ctx.Value(routeKey{}).(*routeHolder); ok {
		return holder.pattern
	}
	return ""
}

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	computations    *prometheus.CounterVec
	computeDuration prometheus.Histogram
	filteredRows    prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_view_computations_total",
			Help: "Render passes by outcome.",
		}, []string{"outcome"}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_view_compute_duration_seconds",
			Help:    "Time to derive all views for one selection.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		filteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_filtered_rows",
			Help:    "Rows left after applying the filters.",
			Buckets: prometheus.LinearBuckets(0, 500, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.computations,
		m.computeDuration,
		m.filteredRows,
	)
	return m
}

// ObserveRequest records a finished request under its route pattern.
// Requests that matched no route share the "unmatched" label.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = unmatchedRoute
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveCompute records one render pass. rows is ignored when err is set.
func (m *Metrics) ObserveCompute(rows int, d time.Duration, err error) {
	if err != nil {
		m.computations.WithLabelValues("error").Inc()
		return
	}
	m.computations.WithLabelValues("ok").Inc()
	m.computeDuration.Observe(d.Seconds())
	m.filteredRows.Observe(float64(rows))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
