package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for configuration fields.
const (
	// Provider defaults
	DefaultProviderTimeout    = 120 * time.Second
	DefaultLocalMaxRetries    = 3
	DefaultProviderRetryDelay = 1 * time.Second

	// Routing defaults
	DefaultPriorityMode = "auto"

	// Health defaults
	DefaultHealthInterval      = 60 * time.Second
	DefaultHealthProbeTimeout  = 10 * time.Second
	DefaultHealthRetryAttempts = 3
	DefaultHealthRetryDelay    = 1 * time.Second

	// Health history defaults
	DefaultHistoryRetentionDays = 14
	DefaultHistoryPruneSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"

	// Server defaults
	DefaultServerListenAddress   = "127.0.0.1:9090"
	DefaultServerReadTimeout     = 10 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerShutdownTimeout = 10 * time.Second
)

// appDirName is the directory under the user config dir holding the
// config file, health snapshot, and history database.
const appDirName = "switchyard"

// ApplyDefaults applies default values to the configuration.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Provider defaults - applied per entry; missing entries keep the
	// adapters' own built-in defaults
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for name, pc := range cfg.Providers {
		if pc.Timeout == 0 {
			pc.Timeout = DefaultProviderTimeout
		}
		if pc.MaxRetries == 0 && IsLocalProvider(name) {
			pc.MaxRetries = DefaultLocalMaxRetries
		}
		if pc.RetryDelay == 0 {
			pc.RetryDelay = DefaultProviderRetryDelay
		}
		cfg.Providers[name] = pc
	}

	// Routing defaults
	if cfg.Routing.PriorityMode == "" {
		cfg.Routing.PriorityMode = DefaultPriorityMode
	}

	// Health defaults
	if cfg.Health.Interval == 0 {
		cfg.Health.Interval = DefaultHealthInterval
	}
	if cfg.Health.ProbeTimeout == 0 {
		cfg.Health.ProbeTimeout = DefaultHealthProbeTimeout
	}
	if cfg.Health.RetryAttempts == 0 {
		cfg.Health.RetryAttempts = DefaultHealthRetryAttempts
	}
	if cfg.Health.RetryDelay == 0 {
		cfg.Health.RetryDelay = DefaultHealthRetryDelay
	}
	if cfg.Health.SnapshotPath == "" {
		cfg.Health.SnapshotPath = defaultAppFile("health.json")
	}
	if cfg.Health.History.Path == "" {
		cfg.Health.History.Path = defaultAppFile("history.db")
	}
	if cfg.Health.History.RetentionDays == 0 {
		cfg.Health.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.Health.History.PruneSchedule == "" {
		cfg.Health.History.PruneSchedule = DefaultHistoryPruneSchedule
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultServerListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
}

// DefaultConfig returns a configuration carrying only defaults, as used
// when no config file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// DefaultConfigPath returns the expected config file location,
// $XDG_CONFIG_HOME/switchyard/config.yaml or the platform equivalent.
func DefaultConfigPath() string {
	return defaultAppFile("config.yaml")
}

// defaultAppFile joins a file name onto the per-user app directory.
// Falls back to the working directory when no user config dir exists.
func defaultAppFile(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, appDirName, name)
}
