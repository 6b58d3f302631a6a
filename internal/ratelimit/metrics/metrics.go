package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LoginAttempts *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		LoginAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "portal_ratelimit_login_attempts_total",
			Help: "Login attempts seen by the limiter by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementAllowed() {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues("allowed").Inc()
}

func (m *Metrics) IncrementDenied() {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues("denied").Inc()
}
