package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds dispatch collectors. Build with NewMetrics.
type Metrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight *prometheus.GaugeVec
}

// NewMetrics creates dispatch collectors and registers them with reg when it
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "majin",
				Subsystem: "dispatch",
				Name:      "requests_total",
				Help:      "Total number of dispatches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "majin",
				Subsystem: "dispatch",
				Name:      "upstream_duration_seconds",
				Help:      "Duration of upstream provider calls in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "outcome"},
		),
		inflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "majin",
				Subsystem: "dispatch",
				Name:      "inflight_calls",
				Help:      "Upstream provider calls in flight",
			},
			[]string{"provider"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.total, m.duration, m.inflight)
	}
	return m
}

// observe records one finished dispatch. provider is "" for dispatches that
// failed before a provider was selected.
func (m *Metrics) observe(provider string, outcome string, upstream time.Duration) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "none"
	}
	m.total.WithLabelValues(provider, outcome).Inc()
	if upstream > 0 {
		m.duration.WithLabelValues(provider, outcome).Observe(upstream.Seconds())
	}
}

func (m *Metrics) begin(provider string) func() {
	if m == nil {
		return func() {}
	}
	g := m.inflight.WithLabelValues(provider)
	g.Inc()
	return g.Dec
}
