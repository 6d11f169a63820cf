// Package metrics holds the Prometheus collectors of the pricing service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contactkeval/option-greeks/internal/logger"
)

// Metrics owns a private registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Requests      *prometheus.CounterVec // op: price, iv, probability, analyze
	Solutions     *prometheus.CounterVec // status: exact, converged, failed
	SolveDuration prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_requests_total",
			Help: "Total number of pricing requests by operation",
		}, []string{"op"}),
		Solutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iv_solutions_total",
			Help: "Implied volatility solutions by status",
		}, []string{"status"}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "iv_solve_duration_seconds",
			Help:    "Implied volatility solve latency in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
	}
	reg.MustRegister(m.Requests, m.Solutions, m.SolveDuration)

	logger.Debugf("metrics registry initialized")
	return m
}

// Request counts one request of operation op.
func (m *Metrics) Request(op string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(op).Inc()
}

// Solved records the status and latency of one implied volatility solve.
func (m *Metrics) Solved(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Solutions.WithLabelValues(status).Inc()
	m.SolveDuration.Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
