package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records outbound fetch behaviour.
//
//   - preview_fetch_total: fetches by outcome ("ok" or a failure kind)
//   - preview_fetch_duration_seconds: wall time of each fetch
//   - preview_fetch_bytes: size of accepted documents
type Metrics struct {
	FetchTotal    *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	FetchBytes    prometheus.Histogram
}

// NewMetrics creates fetch metrics registered with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_fetch_total",
				Help: "Total number of outbound page fetches by outcome",
			},
			[]string{"outcome"},
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "preview_fetch_duration_seconds",
				Help:    "Outbound page fetch duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		FetchBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "preview_fetch_bytes",
				Help:    "Size of fetched HTML documents in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		),
	}
}

func (m *Metrics) observe(outcome string, seconds float64, size int) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(seconds)
	if outcome == outcomeOK {
		m.FetchBytes.Observe(float64(size))
	}
}
