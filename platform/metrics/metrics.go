// Package metrics provides the Prometheus collectors shared by the service.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "katze"

// Metrics groups the counters recorded by the workflow engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	gateAttempts *prometheus.CounterVec
	gateVerdicts *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	dispatches   *prometheus.CounterVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		gateAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "attempts_total",
			Help:      "Classifier calls made by the image gate, by outcome.",
		}, []string{"outcome"}),
		gateVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "verdicts_total",
			Help:      "Final image gate verdicts.",
		}, []string{"verdict"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Persisted submissions by entity kind and initial state.",
		}, []string{"kind", "state"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Accepted lifecycle transitions by entity kind and target state.",
		}, []string{"kind", "to"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Side-effect dispatch outcomes.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.gateAttempts, m.gateVerdicts, m.submissions, m.transitions, m.dispatches)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GateAttempt records one classifier call.
func (m *Metrics) GateAttempt(outcome string) {
	if m == nil {
		return
	}
	m.gateAttempts.WithLabelValues(outcome).Inc()
}

// GateVerdict records the final verdict of one gate evaluation.
func (m *Metrics) GateVerdict(verdict string) {
	if m == nil {
		return
	}
	m.gateVerdicts.WithLabelValues(verdict).Inc()
}

// Submission records a persisted submission.
func (m *Metrics) Submission(kind, state string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, state).Inc()
}

// Transition records an accepted lifecycle transition.
func (m *Metrics) Transition(kind, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind, to).Inc()
}

// Dispatch records a dispatcher outcome such as delivered, dropped or failed.
func (m *Metrics) Dispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(outcome).Inc()
}
