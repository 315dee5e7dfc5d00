package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is the prefix shared by every metric series exported by
// this package.
const Namespace = "switchyard"

// Collector owns the Prometheus registry and every metric series the
// subsystem exports. It provides a unified recording interface for the
// router, the health monitor, and the provider adapters.
//
// A nil *Collector is valid and records nothing: callers hold a single
// optional collector reference and never guard individual calls. This
// is how metrics are disabled.
//
// Example:
//
//	collector := metrics.NewCollector(nil)
//	collector.RecordProviderRequest("openai", "gpt-4o", 1200*time.Millisecond, nil)
//	http.Handle("/metrics", collector.Handler())
type Collector struct {
	registry *prometheus.Registry

	provider *ProviderMetrics
	routing  *RoutingMetrics
	health   *HealthMetrics
}

// NewCollector creates a collector and registers all metric series with
// the given registry. If registry is nil, a fresh private registry is
// created, which keeps the exposition free of the default Go and
// process collectors.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &Collector{
		registry: registry,
		provider: NewProviderMetrics(registry),
		routing:  NewRoutingMetrics(registry),
		health:   NewHealthMetrics(registry),
	}
}

// RecordProviderRequest records one completed chat dispatch to a
// provider: the request counter, the duration histogram, and, when err
// is non-nil, the error counter labelled with the error class.
func (c *Collector) RecordProviderRequest(provider, model string, duration time.Duration, err error) {
	if c == nil {
		return
	}

	c.provider.RecordRequest(provider, model, duration)
	if err != nil {
		c.provider.RecordError(provider, ErrorLabel(err))
	}
}

// RecordProviderError records a provider failure outside the request
// path, such as a failed initialization.
func (c *Collector) RecordProviderError(provider, errorType string) {
	if c == nil {
		return
	}

	c.provider.RecordError(provider, errorType)
}

// UpdateProviderHealth sets the health gauge for a provider from its
// status string. See HealthValue for the encoding.
func (c *Collector) UpdateProviderHealth(provider, status string) {
	if c == nil {
		return
	}

	c.provider.UpdateHealth(provider, status)
}

// RecordHealthCheck counts one completed health probe and its outcome.
func (c *Collector) RecordHealthCheck(provider, status string) {
	if c == nil {
		return
	}

	c.health.RecordCheck(provider, status)
}

// RecordRoutingDecision counts one routing decision by selected
// provider and detected task type.
func (c *Collector) RecordRoutingDecision(provider, taskType string) {
	if c == nil {
		return
	}

	c.routing.RecordDecision(provider, taskType)
}

// Registry returns the Prometheus registry used by this collector, or
// nil for a nil collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
