package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the assessment module.
type Metrics struct {
	// Risk score distribution across all scored customers
	ScoreDistribution prometheus.Histogram

	// Assessment outcomes by risk level and result
	AssessmentOutcome *prometheus.CounterVec
}

// New creates a new Metrics instance with all assessment module metrics registered.
func New() *Metrics {
	return &Metrics{
		ScoreDistribution: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskguard_assessment_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: []float64{10, 20, 25, 30, 40, 50, 60, 70, 75, 80, 90, 100},
		}),

		AssessmentOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskguard_assessment_outcomes_total",
			Help: "Total assessment outcomes by risk level and result",
		}, []string{"level", "result"}),
	}
}

// ObserveScore records a computed risk score.
func (m *Metrics) ObserveScore(score int) {
	if m != nil {
		m.ScoreDistribution.Observe(float64(score))
	}
}

// IncrementOutcome records an assessment outcome.
func (m *Metrics) IncrementOutcome(level, result string) {
	if m != nil {
		m.AssessmentOutcome.WithLabelValues(level, result).Inc()
	}
}
