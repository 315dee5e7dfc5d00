package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// requestDurationBuckets cover chat completion latencies, which run
// from sub-second local models to tens of seconds for large cloud
// models.
var requestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}

// ProviderMetrics tracks provider health and request performance.
//
// Metrics:
//   - switchyard_provider_health: health status gauge per provider
//   - switchyard_provider_request_duration_seconds: chat dispatch latency
//   - switchyard_provider_requests_total: requests per provider/model
//   - switchyard_provider_errors_total: errors per provider/error class
type ProviderMetrics struct {
	health   *prometheus.GaugeVec
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the
// given registry.
func NewProviderMetrics(registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0.5=degraded, 0.25=critical, 0=offline)",
			},
			[]string{"provider"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Chat request latency per provider and model in seconds",
				Buckets:   requestDurationBuckets,
			},
			[]string{"provider", "model"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "provider_requests_total",
				Help:      "Total chat requests dispatched per provider and model",
			},
			[]string{"provider", "model"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "provider_errors_total",
				Help:      "Total provider errors by error class",
			},
			[]string{"provider", "error_type"},
		),
	}

	registry.MustRegister(
		pm.health,
		pm.duration,
		pm.requests,
		pm.errors,
	)

	return pm
}

// HealthValue maps a health status string to its gauge encoding.
// Unknown statuses map to 0 so a typo reads as an outage rather than
// silently healthy.
func HealthValue(status string) float64 {
	switch status {
	case "healthy":
		return 1.0
	case "degraded":
		return 0.5
	case "critical":
		return 0.25
	default:
		return 0.0
	}
}

// UpdateHealth sets the health gauge for a provider.
func (pm *ProviderMetrics) UpdateHealth(provider, status string) {
	pm.health.WithLabelValues(provider).Set(HealthValue(status))
}

// RecordRequest counts one chat dispatch and observes its latency.
func (pm *ProviderMetrics) RecordRequest(provider, model string, duration time.Duration) {
	pm.requests.WithLabelValues(provider, model).Inc()
	pm.duration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordError counts one provider error.
//
// Error classes produced by ErrorLabel:
//   - "auth": authentication or authorization failure
//   - "rate_limit": vendor rate limit exceeded
//   - "timeout": request deadline exceeded
//   - "server_error": vendor 5xx response
//   - "client_error": vendor 4xx response
//   - "network": connection-level failure
//   - "parse": malformed vendor response
//   - "stream": failure mid-stream
func (pm *ProviderMetrics) RecordError(provider, errorType string) {
	pm.errors.WithLabelValues(provider, errorType).Inc()
}
