package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// vendorKeyEnvVars maps cloud provider names to their vendor-standard
// API key environment variables. These are honored in addition to the
// SWITCHYARD_ overrides so existing shell setups just work.
var vendorKeyEnvVars = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"groq":      "GROQ_API_KEY",
}

// LoadConfig loads configuration from a YAML file at the specified path.
// A missing file is not an error: the default configuration is returned,
// so the tool runs with zero setup. Defaults are applied and the result
// validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Overrides follow the naming
// convention SWITCHYARD_SECTION_FIELD (e.g. SWITCHYARD_ROUTING_PRIORITY_MODE),
// plus the vendor-standard API key variables (OPENAI_API_KEY and
// friends). Environment variables always take precedence over the file.
//
// The loading sequence is:
//  1. Load YAML from file (missing file means pure defaults)
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Provider entries introduced purely by environment variables still
	// need per-provider defaults
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	for _, name := range KnownProviders {
		applyProviderEnvOverrides(cfg, name)
	}

	// Routing overrides
	if val := os.Getenv("SWITCHYARD_ROUTING_PRIORITY_MODE"); val != "" {
		cfg.Routing.PriorityMode = val
	}

	// Health overrides
	if val := os.Getenv("SWITCHYARD_HEALTH_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Health.Interval = d
		}
	}
	if val := os.Getenv("SWITCHYARD_HEALTH_PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Health.ProbeTimeout = d
		}
	}
	if val := os.Getenv("SWITCHYARD_HEALTH_RETRY_ATTEMPTS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Health.RetryAttempts = i
		}
	}
	if val := os.Getenv("SWITCHYARD_HEALTH_SNAPSHOT_PATH"); val != "" {
		cfg.Health.SnapshotPath = val
	}
	if val := os.Getenv("SWITCHYARD_HEALTH_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Health.History.Enabled = b
		}
	}
	if val := os.Getenv("SWITCHYARD_HEALTH_HISTORY_PATH"); val != "" {
		cfg.Health.History.Path = val
	}
	if val := os.Getenv("SWITCHYARD_HEALTH_HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Health.History.RetentionDays = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("SWITCHYARD_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SWITCHYARD_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SWITCHYARD_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}

	// Server overrides
	if val := os.Getenv("SWITCHYARD_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
}

// applyProviderEnvOverrides applies environment overrides for a single
// provider. The vendor-standard key variable applies only when neither
// the file nor the SWITCHYARD_ variable supplied a key.
func applyProviderEnvOverrides(cfg *Config, name string) {
	pc := cfg.Providers[name]
	prefix := "SWITCHYARD_PROVIDERS_" + strings.ToUpper(name) + "_"

	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		pc.APIKey = val
	}
	if pc.APIKey == "" {
		if envVar, ok := vendorKeyEnvVars[name]; ok {
			pc.APIKey = os.Getenv(envVar)
		}
	}
	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		pc.BaseURL = val
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			pc.Timeout = d
		}
	}
	if val := os.Getenv(prefix + "MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			pc.MaxRetries = i
		}
	}
	if val := os.Getenv(prefix + "RETRY_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			pc.RetryDelay = d
		}
	}
	if val := os.Getenv(prefix + "RATE_LIMIT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			pc.RateLimit = i
		}
	}
	if val := os.Getenv(prefix + "ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			pc.Enabled = &b
		}
	}

	// Only store the entry when something is actually set, so defaults
	// for untouched providers stay with the adapters
	if pc != (ProviderConfig{}) {
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]ProviderConfig)
		}
		cfg.Providers[name] = pc
	}
}
