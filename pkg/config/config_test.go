package config

import (
	"testing"
)

func TestIsLocalProvider(t *testing.T) {
	tests := []struct {
		name  string
		local bool
	}{
		{"ollama", true},
		{"lmstudio", true},
		{"vllm", true},
		{"openai", false},
		{"anthropic", false},
		{"gemini", false},
		{"groq", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocalProvider(tt.name); got != tt.local {
				t.Errorf("IsLocalProvider(%q) = %v, want %v", tt.name, got, tt.local)
			}
		})
	}
}

func TestConfig_IsEnabled_ExplicitFlagWins(t *testing.T) {
	off := false
	on := true

	cfg := NewTestConfig().
		WithProvider("ollama", ProviderConfig{Enabled: &off}).
		WithProvider("gemini", ProviderConfig{Enabled: &on}).
		Build()

	if cfg.IsEnabled("ollama") {
		t.Error("ollama explicitly disabled but IsEnabled returned true")
	}
	if !cfg.IsEnabled("gemini") {
		t.Error("gemini explicitly enabled but IsEnabled returned false")
	}
}

func TestConfig_IsEnabled_LocalDefaultsOn(t *testing.T) {
	cfg := DefaultConfig()

	for _, name := range []string{"ollama", "lmstudio", "vllm"} {
		if !cfg.IsEnabled(name) {
			t.Errorf("local provider %q should be enabled by default", name)
		}
	}
}

func TestConfig_IsEnabled_CloudRequiresKey(t *testing.T) {
	cfg := DefaultConfig()

	for _, name := range []string{"openai", "anthropic", "gemini", "groq"} {
		if cfg.IsEnabled(name) {
			t.Errorf("cloud provider %q should be disabled without an API key", name)
		}
	}

	cfg.Providers["anthropic"] = ProviderConfig{APIKey: "sk-ant-test"}
	if !cfg.IsEnabled("anthropic") {
		t.Error("anthropic should be enabled once an API key is configured")
	}
}

func TestConfig_MetricsEnabled(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.MetricsEnabled() {
		t.Error("metrics should be enabled by default")
	}

	off := false
	cfg.Telemetry.Metrics.Enabled = &off
	if cfg.MetricsEnabled() {
		t.Error("metrics explicitly disabled but MetricsEnabled returned true")
	}
}

func TestKnownProviders_CoversLocalSet(t *testing.T) {
	known := make(map[string]bool)
	for _, name := range KnownProviders {
		known[name] = true
	}

	for name := range localProviders {
		if !known[name] {
			t.Errorf("local provider %q missing from KnownProviders", name)
		}
	}
}
