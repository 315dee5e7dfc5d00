package config

// ConfigBuilder provides a fluent API for building Config instances in tests.
// It starts with default values and allows selective overrides.
type ConfigBuilder struct {
	cfg Config
}

// NewTestConfig creates a new ConfigBuilder with sensible defaults for testing.
// The resulting configuration is valid and can be used immediately.
func NewTestConfig() *ConfigBuilder {
	cfg := Config{
		Providers: make(map[string]ProviderConfig),
	}
	ApplyDefaults(&cfg)

	// Add a default cloud provider for tests
	cfg.Providers["openai"] = ProviderConfig{
		APIKey:  "test-key",
		Timeout: DefaultProviderTimeout,
	}

	return &ConfigBuilder{cfg: cfg}
}

// Build returns the built Config instance.
func (b *ConfigBuilder) Build() *Config {
	return &b.cfg
}

// WithProvider adds or updates a provider configuration.
func (b *ConfigBuilder) WithProvider(name string, provider ProviderConfig) *ConfigBuilder {
	if b.cfg.Providers == nil {
		b.cfg.Providers = make(map[string]ProviderConfig)
	}
	b.cfg.Providers[name] = provider
	return b
}

// WithPriorityMode sets the routing priority mode.
func (b *ConfigBuilder) WithPriorityMode(mode string) *ConfigBuilder {
	b.cfg.Routing.PriorityMode = mode
	return b
}

// WithHistory enables health history persistence at the given path.
func (b *ConfigBuilder) WithHistory(path string) *ConfigBuilder {
	b.cfg.Health.History.Enabled = true
	b.cfg.Health.History.Path = path
	return b
}

// WithLogging sets the logging level and format.
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	b.cfg.Telemetry.Logging.Level = level
	b.cfg.Telemetry.Logging.Format = format
	return b
}

// WithMetricsEnabled sets whether metrics collection is on.
func (b *ConfigBuilder) WithMetricsEnabled(enabled bool) *ConfigBuilder {
	b.cfg.Telemetry.Metrics.Enabled = &enabled
	return b
}

// WithListenAddress sets the diagnostics server listen address.
func (b *ConfigBuilder) WithListenAddress(addr string) *ConfigBuilder {
	b.cfg.Server.ListenAddress = addr
	return b
}
