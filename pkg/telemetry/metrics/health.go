package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HealthMetrics tracks health monitor probe activity.
//
// Metrics:
//   - switchyard_health_checks_total: probes per provider and outcome status
type HealthMetrics struct {
	checks *prometheus.CounterVec
}

// NewHealthMetrics creates and registers health metrics with the given
// registry.
func NewHealthMetrics(registry *prometheus.Registry) *HealthMetrics {
	hm := &HealthMetrics{
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "health_checks_total",
				Help:      "Total health probes by provider and resulting status",
			},
			[]string{"provider", "status"},
		),
	}

	registry.MustRegister(hm.checks)

	return hm
}

// RecordCheck counts one completed health probe.
func (hm *HealthMetrics) RecordCheck(provider, status string) {
	hm.checks.WithLabelValues(provider, status).Inc()
}
