package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"switchyard-ai/switchyard/pkg/config"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("provider initialized", "provider", "openai")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\noutput: %s", err, buf.String())
	}
	if record["msg"] != "provider initialized" {
		t.Errorf("unexpected msg: %v", record["msg"])
	}
	if record["provider"] != "openai" {
		t.Errorf("unexpected provider attr: %v", record["provider"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("hello", "provider", "ollama")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") {
		t.Errorf("expected logfmt output, got: %s", out)
	}
	if strings.HasPrefix(out, "{") {
		t.Errorf("expected text output, got JSON: %s", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("filtered")
	if buf.Len() != 0 {
		t.Errorf("info record should be filtered at warn level, got: %s", buf.String())
	}

	logger.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record should be emitted at warn level")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	if err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNew_RedactsAPIKeyAttr(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	secret := "sk-proj-1234567890abcdefghij"
	logger.Info("configured", "api_key", secret)

	out := buf.String()
	if strings.Contains(out, secret) {
		t.Errorf("API key leaked into log output: %s", out)
	}
	if !strings.Contains(out, "api_key") {
		t.Errorf("api_key attribute missing entirely: %s", out)
	}
}

func TestNew_RedactsKeyInsideErrorAttr(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Error("request failed", "detail", "401 unauthorized: bad key sk-proj-1234567890abcdefghij")

	out := buf.String()
	if strings.Contains(out, "sk-proj-1234567890abcdefghij") {
		t.Errorf("API key leaked through detail attr: %s", out)
	}
	if !strings.Contains(out, "sk-***") {
		t.Errorf("expected redaction marker in output: %s", out)
	}
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger, err := Setup(config.LoggingConfig{Level: "info", Format: "json"}, false)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if slog.Default() != logger {
		t.Error("Setup did not install the logger as default")
	}
}

func TestSetup_VerboseForcesDebug(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger, err := Setup(config.LoggingConfig{Level: "error", Format: "json"}, true)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("verbose should enable debug level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"ERROR", slog.LevelError, false},
		{"silly", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Errorf("empty format should default to json, got %v, %v", f, err)
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWithRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := RequestIDFromContext(ctx); got != "req-42" {
		t.Errorf("RequestIDFromContext = %q, want %q", got, "req-42")
	}
}

func TestRequestIDFromContext_Missing(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty request ID, got %q", got)
	}
}
