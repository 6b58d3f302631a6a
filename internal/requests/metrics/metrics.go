package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the request workflow.
type Metrics struct {
	Submitted      *prometheus.CounterVec
	Decisions      *prometheus.CounterVec
	TimeToDecision prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_submitted_total",
			Help: "Requests submitted by request type",
		}, []string{"request_type"}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_request_decisions_total",
			Help: "Request decisions by outcome",
		}, []string{"decision"}),
		TimeToDecision: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "portal_request_time_to_decision_seconds",
			Help:    "Time a request spent pending before an admin decided it",
			Buckets: []float64{60, 300, 900, 3600, 4 * 3600, 24 * 3600, 7 * 24 * 3600},
		}),
	}
}

func (m *Metrics) IncrementSubmitted(requestType string) {
	if m == nil {
		return
	}
	m.Submitted.WithLabelValues(requestType).Inc()
}

// ObserveDecision counts the decision and how long the request waited.
func (m *Metrics) ObserveDecision(decision string, pending time.Duration) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(decision).Inc()
	m.TimeToDecision.Observe(pending.Seconds())
}
