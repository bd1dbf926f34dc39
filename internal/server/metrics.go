package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/classifurlr/internal/model"
)

const metricsNamespace = "classifurlr"

// Metrics holds the endpoint's Prometheus collectors. Each Metrics has
// its own registry so several servers can live in one process.
type Metrics struct {
	// Verdicts counts classified sessions.
	// Labels: status (up, down, inconclusive), blocked (true, false, unknown)
	Verdicts *prometheus.CounterVec

	// Duration measures how long one session takes to classify.
	Duration prometheus.Histogram

	// Rejected counts requests that could not be classified.
	// Labels: reason (bad_json, missing_url, too_large)
	Rejected *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "verdicts_total",
			Help:      "Classified sessions by verdict.",
		}, []string{"status", "blocked"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "classification_duration_seconds",
			Help:      "Time spent classifying one session.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		Rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejected_requests_total",
			Help:      "Requests rejected before classification.",
		}, []string{"reason"}),
		registry: reg,
	}
}

// Observe records one verdict and its classification time.
func (m *Metrics) Observe(c *model.Classification, elapsed time.Duration) {
	m.Verdicts.WithLabelValues(c.Direction().String(), c.Blocked().String()).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
