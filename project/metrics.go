package project

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daveroberts0321/politecode/parser/grammar"
)

// Metrics counts translations on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	translations *prometheus.CounterVec
	diagnostics  *prometheus.CounterVec
	duration     prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		translations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "politecode",
			Subsystem: "translations",
			Name:      "total",
			Help:      "Translation runs by result",
		}, []string{"result"}),
		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "politecode",
			Subsystem: "diagnostics",
			Name:      "total",
			Help:      "Reported diagnostics by category",
		}, []string{"category"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "politecode",
			Subsystem: "translations",
			Name:      "duration_seconds",
			Help:      "Translation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// Observe records one finished translation.
func (m *Metrics) Observe(res grammar.Result, took time.Duration) {
	result := "ok"
	if !res.OK {
		result = "failed"
	}
	m.translations.WithLabelValues(result).Inc()
	for _, d := range res.Diagnostics {
		m.diagnostics.WithLabelValues(string(d.Category)).Inc()
	}
	m.duration.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
