// Package telemetry groups the observability subpackages.
//
// # Components
//
//   - logging: structured slog logging with API key redaction
//   - metrics: prometheus collectors for routing and provider health
//
// # Usage
//
//	// Install the process logger
//	logger, err := logging.Setup(cfg.Telemetry.Logging, verbose)
//
//	// Collect routing and provider metrics
//	collector := metrics.NewCollector(nil)
//	collector.RecordProviderRequest("openai", "gpt-4o", 840*time.Millisecond, nil)
//	collector.RecordRoutingDecision("openai", "coding")
//
// Logs are written to stderr so stdout stays clean for responses. API
// keys and bearer tokens are redacted before any record is emitted.
package telemetry
