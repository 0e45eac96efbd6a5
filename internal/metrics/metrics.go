// Package metrics exposes Prometheus counters for store and session
// activity. A nil *Metrics is valid and records nothing, so callers never
// need to branch on whether metrics are enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"expensetrack/internal/models"
)

// Metrics holds the instrument set shared by the session manager and the
// expense store.
type Metrics struct {
	operations  *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// New creates the instrument set and registers it on reg. Pass
// prometheus.DefaultRegisterer for the process-global registry, or a
// private registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "expense_store_operations_total",
			Help: "Expense store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Identity transitions by resulting identity kind.",
		}, []string{"to"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.transitions)
	}
	return m
}

// Operation records one store operation outcome.
func (m *Metrics) Operation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// Transition records an identity transition to the given kind.
func (m *Metrics) Transition(to models.IdentityKind) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to.String()).Inc()
}
