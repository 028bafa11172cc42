package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the underwriting module.
type Metrics struct {
	// Workflow transitions by action and outcome (success, conflict, error)
	Transitions *prometheus.CounterVec

	// Premiums quoted on approval, in currency units
	PremiumQuoted prometheus.Histogram

	// Approvals rolled back after a failed transition
	Compensations prometheus.Counter
}

// New creates a new Metrics instance with all underwriting module metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskguard_underwriting_transitions_total",
			Help: "Total workflow transitions by action and outcome",
		}, []string{"action", "outcome"}),

		PremiumQuoted: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskguard_underwriting_premium_quoted",
			Help:    "Distribution of premiums quoted on approval",
			Buckets: prometheus.ExponentialBuckets(100, 2.5, 10),
		}),

		Compensations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskguard_underwriting_compensations_total",
			Help: "Total approvals rolled back after a failed decision transition",
		}),
	}
}

// IncrementTransition records a workflow transition attempt.
func (m *Metrics) IncrementTransition(action, outcome string) {
	if m != nil {
		m.Transitions.WithLabelValues(action, outcome).Inc()
	}
}

// ObservePremium records a quoted premium.
func (m *Metrics) ObservePremium(amount float64) {
	if m != nil {
		m.PremiumQuoted.Observe(amount)
	}
}

// IncrementCompensation records a rolled-back approval.
func (m *Metrics) IncrementCompensation() {
	if m != nil {
		m.Compensations.Inc()
	}
}
