package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts broker admin operations issued by the portal.
type Metrics struct {
	Operations *prometheus.CounterVec
	Provisions *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_broker_operations_total",
			Help: "Broker admin operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		Provisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_broker_provisions_total",
			Help: "Resources provisioned on approval by request type and outcome",
		}, []string{"request_type", "outcome"}),
	}
}

// ObserveOperation records one admin call; err decides the outcome label.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Metrics) ObserveProvision(requestType string, err error) {
	if m == nil {
		return
	}
	m.Provisions.WithLabelValues(requestType, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
