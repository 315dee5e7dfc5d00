// Package logging provides structured logging with credential
// redaction.
//
// # Overview
//
// The package configures Go's standard log/slog with:
//   - JSON or text output selected by configuration
//   - automatic redaction of API keys and bearer tokens
//   - log levels (debug, info, warn, error), with a verbose override
//
// Every component logs through slog.Default, which Setup installs at
// process start. Log output goes to stderr so that chat responses own
// stdout.
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging, verbose)
//	if err != nil {
//	    return err
//	}
//
//	logger.Info("provider initialized",
//	    "provider", "openai",
//	    "api_key", key, // masked before it reaches the handler
//	)
//
// # Redaction
//
// Redaction runs inside the handler via ReplaceAttr, so it covers
// every attribute from every caller:
//
//   - values under secret-naming keys (api_key, token, authorization)
//     are masked to a short prefix
//   - credential shapes inside ordinary string values (sk-..., gsk_...,
//     AIza..., "Bearer ...") are replaced with a fixed marker
package logging
