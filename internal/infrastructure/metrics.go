package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the dashboard backend.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	DatasetLoadSeconds   prometheus.Gauge
	DatasetRecords       prometheus.Gauge
	DashboardComputes    prometheus.Counter
	DashboardComputeTime prometheus.Histogram
}

// NewMetrics creates the collectors on a dedicated registry so tests can
// build isolated instances.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nbadash",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nbadash",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		DatasetLoadSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nbadash",
			Subsystem: "dataset",
			Name:      "load_seconds",
			Help:      "Duration of the last dataset load.",
		}),
		DatasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nbadash",
			Subsystem: "dataset",
			Name:      "records",
			Help:      "Number of game records in the loaded dataset.",
		}),
		DashboardComputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nbadash",
			Subsystem: "stats",
			Name:      "dashboard_computations_total",
			Help:      "Total dashboard recomputations.",
		}),
		DashboardComputeTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nbadash",
			Subsystem: "stats",
			Name:      "dashboard_computation_seconds",
			Help:      "Dashboard recomputation latency.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware instruments requests with the counter and histogram.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(ww.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
