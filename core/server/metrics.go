package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Label values for the operation and phase labels.
const (
	OperationStart = "start"
	OperationStop  = "stop"

	PhaseInit      = "init"
	PhaseBootstrap = "bootstrap"
	PhaseBind      = "bind"
	PhaseStop      = "stop"
	PhaseClose     = "close"
)

// Metrics provides Prometheus metrics for the server lifecycle.
type Metrics struct {
	state       prometheus.Gauge
	transitions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	failures    *prometheus.CounterVec
}

// NewMetrics creates lifecycle metrics and registers them with registry.
// If registry is nil, metrics are created but not registered (useful for testing).
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nubes",
			Subsystem: "server",
			Name:      "state",
			Help:      "Current lifecycle state (0=stopped 1=configured 2=starting 3=listening 4=failed 5=stopping).",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nubes",
			Subsystem: "server",
			Name:      "transitions_total",
			Help:      "Lifecycle state transitions by target state.",
		}, []string{"state"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nubes",
			Subsystem: "server",
			Name:      "operation_duration_seconds",
			Help:      "Duration of start and stop operations.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nubes",
			Subsystem: "server",
			Name:      "failures_total",
			Help:      "Lifecycle failures by phase.",
		}, []string{"phase"}),
	}

	if registry != nil {
		m.state = register(registry, m.state)
		m.transitions = register(registry, m.transitions)
		m.duration = register(registry, m.duration)
		m.failures = register(registry, m.failures)
	}
	return m
}

// register registers c, reusing an identical collector registered earlier.
func register[C prometheus.Collector](registry prometheus.Registerer, c C) C {
	if err := registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *Metrics) setState(s State) {
	m.state.Set(float64(s))
	m.transitions.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) observe(operation string, begin time.Time) {
	m.duration.WithLabelValues(operation).Observe(time.Since(begin).Seconds())
}

func (m *Metrics) failure(phase string) {
	m.failures.WithLabelValues(phase).Inc()
}
