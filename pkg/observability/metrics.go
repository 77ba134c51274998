package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/tether/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeNonZeroExit = "nonzero_exit"
	OutcomeNotFound    = "not_found"
	OutcomeTimeout     = "timeout"
	OutcomeCanceled    = "canceled"
	OutcomeBusy        = "busy"
	OutcomeMissing     = "missing_dependency"
	OutcomeError       = "error"
)

// Metrics holds the invocation collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	inFlight    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tether_invocations_total",
				Help: "Total number of command invocations by outcome",
			},
			[]string{"command", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tether_invocation_duration_seconds",
				Help:    "Duration of command invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tether_invocations_in_flight",
			Help: "Number of invocations currently running",
		}),
	}

	m.registry.MustRegister(
		m.invocations,
		m.duration,
		m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Started marks an invocation as in flight.
func (m *Metrics) Started() {
	m.inFlight.Inc()
}

// Finished records a completed invocation.
func (m *Metrics) Finished(e *domain.InvocationEvent) {
	m.inFlight.Dec()
	m.invocations.WithLabelValues(e.Command, Outcome(e)).Inc()
	m.duration.WithLabelValues(e.Command).Observe(e.Duration.Seconds())
}

// Outcome classifies a return event into a metric label.
func Outcome(e *domain.InvocationEvent) string {
	err := e.Err
	switch {
	case err == nil && e.ExitCode != 0:
		return OutcomeNonZeroExit
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrNonZeroExit):
		return OutcomeNonZeroExit
	case errors.Is(err, domain.ErrCommandNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, domain.ErrBusy):
		return OutcomeBusy
	case errors.Is(err, domain.ErrInterpreterNotFound), errors.Is(err, domain.ErrScriptNotFound):
		return OutcomeMissing
	default:
		return OutcomeError
	}
}
