package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"switchyard-ai/switchyard/pkg/config"
)

// Format selects the slog handler used for output.
type Format string

const (
	// FormatJSON emits one JSON object per line.
	FormatJSON Format = "json"
	// FormatText emits logfmt-style key=value lines.
	FormatText Format = "text"
)

// Options configures logger construction.
type Options struct {
	// Level is the minimum level to emit ("debug", "info", "warn",
	// "error"). Empty means info.
	Level string

	// Format selects the handler ("json", "text"). Empty means json.
	Format string

	// AddSource includes file:line in every record.
	AddSource bool

	// Writer is the output destination. Nil means os.Stderr, which
	// keeps stdout clean for chat output.
	Writer io.Writer
}

// New creates a structured logger with secret redaction applied to
// every attribute. API keys and bearer tokens never reach the output
// in the clear.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	redactor := NewRedactor()
	handlerOpts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   opts.AddSource,
		ReplaceAttr: redactor.ReplaceAttr,
	}

	var handler slog.Handler
	switch format {
	case FormatText:
		handler = slog.NewTextHandler(writer, handlerOpts)
	default:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	}

	return slog.New(handler), nil
}

// Setup builds a logger from the telemetry configuration and installs
// it as the process default. verbose forces debug level regardless of
// the configured level.
func Setup(cfg config.LoggingConfig, verbose bool) (*slog.Logger, error) {
	level := cfg.Level
	if verbose {
		level = "debug"
	}

	logger, err := New(Options{
		Level:  level,
		Format: cfg.Format,
	})
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return logger, nil
}

// ParseLevel parses a log level string into a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug, nil
	case "info", "INFO", "":
		return slog.LevelInfo, nil
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn, nil
	case "error", "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

// ParseFormat parses a log format string into a Format.
func ParseFormat(format string) (Format, error) {
	switch format {
	case "json", "JSON", "":
		return FormatJSON, nil
	case "text", "TEXT":
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format: %s", format)
	}
}
