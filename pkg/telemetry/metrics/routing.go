package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// RoutingMetrics tracks routing decisions.
//
// Metrics:
//   - switchyard_routing_decisions_total: decisions per provider/task type
type RoutingMetrics struct {
	decisions *prometheus.CounterVec
}

// NewRoutingMetrics creates and registers routing metrics with the
// given registry.
func NewRoutingMetrics(registry *prometheus.Registry) *RoutingMetrics {
	rm := &RoutingMetrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "routing_decisions_total",
				Help:      "Total routing decisions by selected provider and task type",
			},
			[]string{"provider", "task_type"},
		),
	}

	registry.MustRegister(rm.decisions)

	return rm
}

// RecordDecision counts one routing decision.
func (rm *RoutingMetrics) RecordDecision(provider, taskType string) {
	rm.decisions.WithLabelValues(provider, taskType).Inc()
}
