// Package metrics provides Prometheus metrics for the provider routing
// subsystem.
//
// # Overview
//
// The package exports a small fixed set of series covering routing
// decisions, provider request performance, and health monitoring. All
// series share the "switchyard" namespace and live in a private
// registry, so the exposition carries only subsystem metrics.
//
// # Series
//
//   - switchyard_provider_health: per-provider status gauge
//     (1=healthy, 0.5=degraded, 0.25=critical, 0=offline)
//   - switchyard_provider_request_duration_seconds: chat latency histogram
//   - switchyard_provider_requests_total: request counter per provider/model
//   - switchyard_provider_errors_total: error counter per provider/class
//   - switchyard_routing_decisions_total: decisions per provider/task type
//   - switchyard_health_checks_total: probes per provider/status
//
// # Usage
//
//	collector := metrics.NewCollector(nil)
//
//	collector.RecordRoutingDecision("openai", "coding")
//	collector.RecordProviderRequest("openai", "gpt-4o", 1200*time.Millisecond, err)
//	collector.UpdateProviderHealth("ollama", "healthy")
//
//	http.Handle("/metrics", collector.Handler())
//
// A nil *Collector is the disabled state: every recording method is a
// no-op on a nil receiver, so callers never branch on whether metrics
// are enabled.
//
// # Cardinality
//
// Label values are bounded: provider names come from the fixed known
// set, task types from the detector's fixed vocabulary, and error
// labels from ErrorLabel's fixed classification. Free-form text never
// becomes a label value.
package metrics
