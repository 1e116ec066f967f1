// Package metrics collects Prometheus metrics for backend operations and
// exposes them for scraping.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeConflict    = "conflict"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Collector records backend operation counts and latencies.
type Collector struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "citywatch_backend_operations_total",
			Help: "Backend operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "citywatch_backend_operation_seconds",
			Help:    "Backend operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}

	reg.MustRegister(c.operations, c.latency)

	return c
}

func (c *Collector) Observe(op string, d time.Duration, err error) {
	c.operations.WithLabelValues(op, Outcome(err)).Inc()
	c.latency.WithLabelValues(op).Observe(d.Seconds())
}

// Outcome maps an operation error to its label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, common.ErrorNotFound):
		return OutcomeNotFound
	case errors.Is(err, common.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, common.ErrBackendUnavailable):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NewMux serves Handler on /metrics.
func NewMux(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
