package config

import "time"

// Config is the root configuration structure for Switchyard. It covers
// the provider adapters, routing behavior, health monitoring, and
// telemetry. Every section is optional in the file; missing values are
// filled by ApplyDefaults.
type Config struct {
	// Providers contains per-provider settings. Keys are the canonical
	// provider names: openai, anthropic, gemini, groq, ollama, lmstudio,
	// vllm. Unknown keys fail validation.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Routing contains routing engine settings.
	Routing RoutingConfig `yaml:"routing"`

	// Health contains health monitor settings.
	Health HealthConfig `yaml:"health"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Server contains diagnostics HTTP listener settings. The listener
	// only runs when explicitly requested (health --serve).
	Server ServerConfig `yaml:"server"`
}

// ProviderConfig contains configuration for a single provider adapter.
type ProviderConfig struct {
	// Enabled controls whether the adapter is constructed. When unset,
	// local providers default to enabled and cloud providers are enabled
	// only if an API key is present.
	Enabled *bool `yaml:"enabled"`

	// BaseURL overrides the adapter's default endpoint.
	// Example: "http://localhost:11434" for a remote Ollama host.
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for cloud providers. Typically
	// supplied through the vendor's standard environment variable
	// instead of the file.
	APIKey string `yaml:"api_key"`

	// Timeout bounds a single non-streaming request.
	// Default: 120s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the retry budget for transient upstream errors.
	// Zero uses the per-vendor default (3 for local providers, no
	// retries for cloud providers).
	MaxRetries int `yaml:"max_retries"`

	// RetryDelay is the base delay for exponential retry backoff.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// RateLimit caps outbound requests per minute. Zero means no
	// client-side limit.
	RateLimit int `yaml:"rate_limit"`
}

// RoutingConfig contains configuration for the routing engine.
type RoutingConfig struct {
	// PriorityMode is the default provider ordering used when a request
	// does not specify one.
	// Options: "auto", "privacy-first", "performance", "cost-effective"
	// Default: "auto"
	PriorityMode string `yaml:"priority_mode"`
}

// HealthConfig contains configuration for the health monitor.
type HealthConfig struct {
	// Interval is the time between periodic health check runs.
	// Default: 60s
	Interval time.Duration `yaml:"interval"`

	// ProbeTimeout bounds a single probe attempt.
	// Default: 10s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// RetryAttempts is the number of probe attempts before a provider
	// is marked offline.
	// Default: 3
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryDelay is the base delay for linear probe retry backoff.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// SnapshotPath overrides the JSON snapshot location.
	// Default: $XDG_CONFIG_HOME/switchyard/health.json
	SnapshotPath string `yaml:"snapshot_path"`

	// History contains health history store settings.
	History HealthHistoryConfig `yaml:"history"`
}

// HealthHistoryConfig contains configuration for the SQLite health
// history store.
type HealthHistoryConfig struct {
	// Enabled controls whether check results are appended to the store.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file location.
	// Default: $XDG_CONFIG_HOME/switchyard/history.db
	Path string `yaml:"path"`

	// RetentionDays is how long rows are kept before pruning.
	// Default: 14
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is the cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 03:00)
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the handler.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains prometheus metrics settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path on the diagnostics server.
	// Default: "/metrics"
	Path string `yaml:"path"`
}

// ServerConfig contains configuration for the diagnostics HTTP listener.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out a response
	// write.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// KnownProviders is the canonical provider name list, in the default
// priority order.
var KnownProviders = []string{
	"openai",
	"anthropic",
	"gemini",
	"groq",
	"ollama",
	"lmstudio",
	"vllm",
}

// localProviders are the adapters that talk to a localhost runtime and
// need no credential.
var localProviders = map[string]bool{
	"ollama":   true,
	"lmstudio": true,
	"vllm":     true,
}

// IsLocalProvider reports whether a provider name denotes a local
// runtime adapter.
func IsLocalProvider(name string) bool {
	return localProviders[name]
}

// IsEnabled reports whether a provider should be constructed. An
// explicit enabled flag wins; otherwise local providers are on by
// default and cloud providers require an API key.
func (c *Config) IsEnabled(name string) bool {
	pc := c.Providers[name]
	if pc.Enabled != nil {
		return *pc.Enabled
	}
	if IsLocalProvider(name) {
		return true
	}
	return pc.APIKey != ""
}

// MetricsEnabled reports whether metrics collection is on.
func (c *Config) MetricsEnabled() bool {
	if c.Telemetry.Metrics.Enabled != nil {
		return *c.Telemetry.Metrics.Enabled
	}
	return true
}
