package health

import (
	"context"
	"time"
)

// Status is the health classification of a provider or of the system.
type Status string

const (
	// StatusHealthy means probes succeed within the expected latency.
	StatusHealthy Status = "healthy"

	// StatusDegraded means the provider responds but slowly, or its
	// rolling error rate is elevated.
	StatusDegraded Status = "degraded"

	// StatusCritical means the provider responds but latency or error
	// rate is beyond the critical threshold.
	StatusCritical Status = "critical"

	// StatusOffline means every probe attempt failed. Providers start
	// offline until their first successful check.
	StatusOffline Status = "offline"
)

// Metadata carries rolling probe statistics for one provider. All
// fields are derived from check runs, not from chat traffic.
type Metadata struct {
	// TotalRequests is the number of probe attempts recorded.
	TotalRequests int64 `json:"total_requests"`

	// ErrorRate is an exponentially weighted failure ratio in [0, 1].
	ErrorRate float64 `json:"error_rate"`

	// AverageResponseTime is the mean latency of successful probes in
	// milliseconds.
	AverageResponseTime int64 `json:"average_response_time_ms"`

	// LastRequest is when the provider was last probed.
	LastRequest time.Time `json:"last_request"`
}

// ProviderHealthRecord is the monitor's current view of one provider.
// Records are written only by the monitor; callers receive copies.
type ProviderHealthRecord struct {
	// Provider is the provider name.
	Provider string `json:"provider"`

	// Status is the current classification.
	Status Status `json:"status"`

	// Uptime is the fraction of check runs that succeeded, in [0, 1].
	Uptime float64 `json:"uptime"`

	// LastCheck is when the record was last updated.
	LastCheck time.Time `json:"last_check"`

	// ResponseTime is the latency of the last successful probe in
	// milliseconds. Zero while offline.
	ResponseTime int64 `json:"response_time_ms"`

	// Error is the last probe failure message, empty while healthy.
	Error string `json:"error,omitempty"`

	// Metadata carries the rolling statistics behind the
	// classification.
	Metadata Metadata `json:"metadata"`
}

// RecommendationLevel grades how urgent a recommendation is.
type RecommendationLevel string

const (
	LevelInfo    RecommendationLevel = "info"
	LevelWarning RecommendationLevel = "warning"
	LevelError   RecommendationLevel = "error"
)

// Recommendation is one operator-facing suggestion derived from the
// current health picture.
type Recommendation struct {
	// Level grades the urgency.
	Level RecommendationLevel `json:"level"`

	// Provider names the provider the suggestion concerns, empty for
	// system-wide suggestions.
	Provider string `json:"provider,omitempty"`

	// Message is the human-readable suggestion.
	Message string `json:"message"`
}

// SystemHealth aggregates every provider record into one picture.
type SystemHealth struct {
	// Overall is the aggregate classification.
	Overall Status `json:"overall"`

	// Providers maps provider name to its current record.
	Providers map[string]ProviderHealthRecord `json:"providers"`

	// Recommendations lists operator suggestions, most urgent first.
	Recommendations []Recommendation `json:"recommendations,omitempty"`

	// CheckedAt is when the picture was assembled.
	CheckedAt time.Time `json:"checked_at"`

	// Uptime is how long the monitor has been running, in
	// milliseconds.
	Uptime int64 `json:"uptime_ms"`
}

// HistorySink receives completed check runs for durable storage. The
// SQLite history store implements it; a nil sink disables persistence.
type HistorySink interface {
	// AppendChecks stores one row per provider for a check run.
	AppendChecks(ctx context.Context, runID string, checkedAt time.Time, records []ProviderHealthRecord) error

	// AppendSnapshot stores the aggregate outcome of a check run.
	AppendSnapshot(ctx context.Context, runID string, sys *SystemHealth) error
}

// MonitorConfig tunes the health monitor. Zero values fall back to the
// defaults listed on each field.
type MonitorConfig struct {
	// Interval is the time between periodic check runs. Default 60s.
	Interval time.Duration

	// ProbeTimeout bounds a single probe attempt. Default 10s.
	ProbeTimeout time.Duration

	// RetryAttempts is the number of probe attempts per provider per
	// run before it is marked offline. Default 3.
	RetryAttempts int

	// RetryDelay is the base delay of the linear retry backoff: the
	// wait after attempt n is RetryDelay * n. Default 1s.
	RetryDelay time.Duration

	// DegradedLatency is the response time above which a reachable
	// provider is degraded. Default 2s.
	DegradedLatency time.Duration

	// CriticalLatency is the response time above which a reachable
	// provider is critical. Default 5s.
	CriticalLatency time.Duration

	// DegradedErrorRate is the rolling error rate above which a
	// reachable provider is degraded. Default 0.1.
	DegradedErrorRate float64

	// CriticalErrorRate is the rolling error rate above which a
	// reachable provider is critical. Default 0.25.
	CriticalErrorRate float64

	// SnapshotPath is where the JSON snapshot is persisted after each
	// run. Empty disables snapshot persistence.
	SnapshotPath string
}

func (c MonitorConfig) withDefaults() MonitorConfig {
	if c.Interval <= 0 {
		c.Interval = 60 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.DegradedLatency <= 0 {
		c.DegradedLatency = 2 * time.Second
	}
	if c.CriticalLatency <= 0 {
		c.CriticalLatency = 5 * time.Second
	}
	if c.DegradedErrorRate <= 0 {
		c.DegradedErrorRate = 0.1
	}
	if c.CriticalErrorRate <= 0 {
		c.CriticalErrorRate = 0.25
	}
	return c
}
