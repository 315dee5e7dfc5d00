package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "routing.priority_mode").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// validPriorityModes are the recognized routing priority modes.
var validPriorityModes = map[string]bool{
	"auto":           true,
	"privacy-first":  true,
	"performance":    true,
	"cost-effective": true,
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateRouting(&cfg.Routing)...)
	errs = append(errs, validateHealth(&cfg.Health)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateServer(&cfg.Server)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProviders validates provider configurations. An empty map is
// fine: local runtimes are probed with built-in defaults.
func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	known := make(map[string]bool, len(KnownProviders))
	for _, name := range KnownProviders {
		known[name] = true
	}

	for name, provider := range providers {
		prefix := fmt.Sprintf("providers.%s", name)

		if !known[name] {
			errs = append(errs, FieldError{
				Field:   prefix,
				Message: fmt.Sprintf("unknown provider %q: must be one of %s", name, strings.Join(KnownProviders, ", ")),
			})
			continue
		}

		if provider.BaseURL != "" {
			if u, err := url.Parse(provider.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errs = append(errs, FieldError{
					Field:   prefix + ".base_url",
					Message: fmt.Sprintf("invalid URL %q: must include scheme and host", provider.BaseURL),
				})
			}
		}

		if provider.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout must be positive",
			})
		}

		if provider.MaxRetries < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_retries",
				Message: "max retries must be non-negative",
			})
		}
		if provider.MaxRetries > 10 {
			errs = append(errs, FieldError{
				Field:   prefix + ".max_retries",
				Message: "max retries exceeds reasonable limit (10)",
			})
		}

		if provider.RetryDelay < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".retry_delay",
				Message: "retry delay must be positive",
			})
		}

		if provider.RateLimit < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".rate_limit",
				Message: "rate limit must be non-negative",
			})
		}
	}

	return errs
}

// validateRouting validates routing configuration.
func validateRouting(cfg *RoutingConfig) []FieldError {
	var errs []FieldError

	if cfg.PriorityMode == "" {
		errs = append(errs, FieldError{
			Field:   "routing.priority_mode",
			Message: "priority mode is required",
		})
	} else if !validPriorityModes[cfg.PriorityMode] {
		errs = append(errs, FieldError{
			Field:   "routing.priority_mode",
			Message: fmt.Sprintf("invalid priority mode %q: must be 'auto', 'privacy-first', 'performance', or 'cost-effective'", cfg.PriorityMode),
		})
	}

	return errs
}

// validateHealth validates health monitoring configuration.
func validateHealth(cfg *HealthConfig) []FieldError {
	var errs []FieldError

	if cfg.Interval < 0 {
		errs = append(errs, FieldError{
			Field:   "health.interval",
			Message: "interval must be positive",
		})
	}
	if cfg.ProbeTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "health.probe_timeout",
			Message: "probe timeout must be positive",
		})
	}
	if cfg.RetryAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "health.retry_attempts",
			Message: "retry attempts must be at least 1",
		})
	}
	if cfg.RetryAttempts > 10 {
		errs = append(errs, FieldError{
			Field:   "health.retry_attempts",
			Message: "retry attempts exceeds reasonable limit (10)",
		})
	}
	if cfg.RetryDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "health.retry_delay",
			Message: "retry delay must be positive",
		})
	}

	if cfg.History.Enabled {
		if cfg.History.Path == "" {
			errs = append(errs, FieldError{
				Field:   "health.history.path",
				Message: "history path is required when history is enabled",
			})
		}
		if cfg.History.RetentionDays < 1 {
			errs = append(errs, FieldError{
				Field:   "health.history.retention_days",
				Message: "retention days must be at least 1",
			})
		}
		if cfg.History.RetentionDays > 3650 {
			errs = append(errs, FieldError{
				Field:   "health.history.retention_days",
				Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	metricsOn := cfg.Metrics.Enabled == nil || *cfg.Metrics.Enabled
	if metricsOn {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}

	return errs
}

// validateServer validates the diagnostics server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	return errs
}
