package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Route labels. Every request maps to one of these so that unknown paths
// cannot blow up label cardinality.
const (
	RoutePreview = "/preview"
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
	RouteOther   = "other"
)

// RouteOf returns the metrics and span label for r.
func RouteOf(r *http.Request) string {
	switch r.URL.Path {
	case RoutePreview, RouteHealth, RouteMetrics:
		return r.URL.Path
	default:
		return RouteOther
	}
}

// HTTPMetrics holds the server side request metrics.
type HTTPMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	requestSize      *prometheus.HistogramVec
	responseSize     *prometheus.HistogramVec
	rateLimited      *prometheus.CounterVec
}

// NewHTTPMetrics creates the metrics and registers them with reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		// Buckets cover fast local extraction (ms) up to slow origin fetches (10s).
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path", "status"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
		requestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		responseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Requests rejected by the per-IP rate limiter",
			},
			[]string{"path"},
		),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
		m.requestSize,
		m.responseSize,
		m.rateLimited,
	)
	return m
}

// Middleware records request count, latency and sizes per route label.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		route := RouteOf(r)
		if r.ContentLength > 0 {
			m.requestSize.WithLabelValues(r.Method, route).Observe(float64(r.ContentLength))
		}

		rec := newStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(rec, r)
		duration := time.Since(start).Seconds()

		status := strconv.Itoa(rec.statusCode)
		m.requestsTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(duration)
		m.responseSize.WithLabelValues(r.Method, route).Observe(float64(rec.bytes))
	})
}

// RecordRateLimited counts a request rejected by the rate limiter. It has
// the signature WithRejectHook expects.
func (m *HTTPMetrics) RecordRateLimited(r *http.Request) {
	m.rateLimited.WithLabelValues(RouteOf(r)).Inc()
}

// MetricsHandler serves the Prometheus exposition format for g.
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
