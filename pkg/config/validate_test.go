package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := NewTestConfig().Build()

	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config, got: %v", err)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := NewTestConfig().
		WithProvider("replicate", ProviderConfig{APIKey: "k"}).
		Build()

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "unknown provider") {
		t.Errorf("expected unknown provider message, got: %v", err)
	}
}

func TestValidate_PriorityMode(t *testing.T) {
	tests := []struct {
		mode  string
		valid bool
	}{
		{"auto", true},
		{"privacy-first", true},
		{"performance", true},
		{"cost-effective", true},
		{"fastest", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := NewTestConfig().WithPriorityMode(tt.mode).Build()
			err := Validate(cfg)
			if tt.valid && err != nil {
				t.Errorf("mode %q should be valid, got: %v", tt.mode, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("mode %q should be rejected", tt.mode)
			}
		})
	}
}

func TestValidate_ProviderFields(t *testing.T) {
	tests := []struct {
		name     string
		provider ProviderConfig
		wantErr  string
	}{
		{
			name:     "bad base URL",
			provider: ProviderConfig{APIKey: "k", BaseURL: "not-a-url"},
			wantErr:  "base_url",
		},
		{
			name:     "negative timeout",
			provider: ProviderConfig{APIKey: "k", Timeout: -1 * time.Second},
			wantErr:  "timeout",
		},
		{
			name:     "negative retries",
			provider: ProviderConfig{APIKey: "k", MaxRetries: -1},
			wantErr:  "max_retries",
		},
		{
			name:     "excessive retries",
			provider: ProviderConfig{APIKey: "k", MaxRetries: 11},
			wantErr:  "max_retries",
		},
		{
			name:     "negative rate limit",
			provider: ProviderConfig{APIKey: "k", RateLimit: -5},
			wantErr:  "rate_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig().WithProvider("openai", tt.provider).Build()
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_HealthHistory(t *testing.T) {
	cfg := NewTestConfig().WithHistory("").Build()
	cfg.Health.History.RetentionDays = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors for enabled history without path or retention")
	}

	msg := err.Error()
	if !strings.Contains(msg, "health.history.path") {
		t.Errorf("expected history path error, got: %v", err)
	}
	if !strings.Contains(msg, "health.history.retention_days") {
		t.Errorf("expected retention days error, got: %v", err)
	}
}

func TestValidate_HealthRetryAttempts(t *testing.T) {
	cfg := NewTestConfig().Build()
	cfg.Health.RetryAttempts = 0

	if err := Validate(cfg); err == nil {
		t.Error("expected error for zero retry attempts")
	}

	cfg.Health.RetryAttempts = 11
	if err := Validate(cfg); err == nil {
		t.Error("expected error for excessive retry attempts")
	}
}

func TestValidate_LoggingFields(t *testing.T) {
	cfg := NewTestConfig().WithLogging("verbose", "json").Build()
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "telemetry.logging.level") {
		t.Errorf("expected logging level error, got: %v", err)
	}

	cfg = NewTestConfig().WithLogging("info", "xml").Build()
	err = Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "telemetry.logging.format") {
		t.Errorf("expected logging format error, got: %v", err)
	}
}

func TestValidate_MetricsPath(t *testing.T) {
	cfg := NewTestConfig().Build()
	cfg.Telemetry.Metrics.Path = "metrics"

	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "must start with /") {
		t.Errorf("expected metrics path error, got: %v", err)
	}

	// Disabled metrics skip the path check
	cfg = NewTestConfig().WithMetricsEnabled(false).Build()
	cfg.Telemetry.Metrics.Path = ""
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled metrics should not require a path, got: %v", err)
	}
}

func TestValidate_ServerFields(t *testing.T) {
	cfg := NewTestConfig().WithListenAddress("").Build()
	err := Validate(cfg)
	if err == nil || !strings.Contains(err.Error(), "server.listen_address") {
		t.Errorf("expected listen address error, got: %v", err)
	}
}

func TestValidationError_MessageFormats(t *testing.T) {
	single := ValidationError{Errors: []FieldError{
		{Field: "routing.priority_mode", Message: "priority mode is required"},
	}}
	if !strings.Contains(single.Error(), "routing.priority_mode: priority mode is required") {
		t.Errorf("unexpected single-error format: %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{
		{Field: "a", Message: "first"},
		{Field: "b", Message: "second"},
	}}
	msg := multi.Error()
	if !strings.Contains(msg, "2 errors") {
		t.Errorf("expected error count in message, got: %q", msg)
	}
	if !strings.Contains(msg, "a: first") || !strings.Contains(msg, "b: second") {
		t.Errorf("expected both field errors listed, got: %q", msg)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := NewTestConfig().
		WithPriorityMode("bogus").
		WithLogging("bogus", "bogus").
		Build()

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(validationErr.Errors) != 3 {
		t.Errorf("expected 3 collected errors, got %d: %v", len(validationErr.Errors), err)
	}
}
