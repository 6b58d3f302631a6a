package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks audit recording and the Kafka mirror.
type Metrics struct {
	Recorded        *prometheus.CounterVec
	Dropped         prometheus.Counter
	PublishFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Recorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_audit_entries_total",
			Help: "Audit entries recorded by action",
		}, []string{"action"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "portal_audit_outbox_dropped_total",
			Help: "Audit entries not mirrored to Kafka because the outbox was full",
		}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "portal_audit_publish_failures_total",
			Help: "Audit entries that failed to publish to Kafka",
		}),
	}
}

func (m *Metrics) IncrementRecorded(action string) {
	if m == nil {
		return
	}
	m.Recorded.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) IncrementPublishFailures() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}
