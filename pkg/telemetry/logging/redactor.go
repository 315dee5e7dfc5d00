package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor scrubs credentials from log attributes. It runs inside the
// slog handler via ReplaceAttr, so every record passes through it
// regardless of which component logged it.
//
// Redaction applies in two passes:
//   - attribute keys that name a secret (api_key, token, ...) have
//     their value masked outright
//   - string values are scanned for known credential shapes (vendor
//     key prefixes, bearer tokens) and matches are replaced
type Redactor struct {
	patterns []redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// sensitiveKeys marks attribute keys whose values are masked without
// inspection. Matching is case-insensitive substring containment.
var sensitiveKeys = []string{
	"api_key",
	"apikey",
	"authorization",
	"bearer",
	"credential",
	"password",
	"secret",
	"token",
}

// NewRedactor creates a redactor with the built-in credential
// patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []redactPattern{
			// OpenAI and Anthropic style keys share the sk- prefix.
			{
				name:        "sk_key",
				regex:       regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`),
				replacement: "sk-***",
			},
			// Groq keys.
			{
				name:        "gsk_key",
				regex:       regexp.MustCompile(`gsk_[A-Za-z0-9]{16,}`),
				replacement: "gsk_***",
			},
			// Google API keys.
			{
				name:        "google_key",
				regex:       regexp.MustCompile(`AIza[0-9A-Za-z_-]{30,}`),
				replacement: "AIza***",
			},
			// Authorization header values.
			{
				name:        "bearer_token",
				regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`),
				replacement: "Bearer ***",
			},
			// Generic key=value credential assignments.
			{
				name:        "generic_key",
				regex:       regexp.MustCompile(`(?i)(api[-_]?key|secret|token)["']?\s*[:=]\s*["']?[A-Za-z0-9\-._]{8,}`),
				replacement: "$1=***",
			},
		},
	}
}

// ReplaceAttr is the slog.HandlerOptions hook. Built-in record fields
// pass through untouched.
func (r *Redactor) ReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey, slog.LevelKey, slog.MessageKey, slog.SourceKey:
		return a
	}
	return r.RedactAttr(a)
}

// RedactAttr redacts a single attribute.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		a.Value = slog.StringValue(MaskSecret(valueString(a.Value)))
		return a
	}

	if a.Value.Kind() == slog.KindString {
		a.Value = slog.StringValue(r.RedactString(a.Value.String()))
	}
	return a
}

// RedactString replaces every credential-shaped substring in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, p := range r.patterns {
		redacted = p.regex.ReplaceAllString(redacted, p.replacement)
	}
	return redacted
}

// IsSensitiveKey reports whether an attribute key names a secret.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// MaskSecret masks a secret value, keeping a short prefix so operators
// can tell which key was in play.
func MaskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "***"
	}
	return value[:4] + "***"
}

// valueString renders a slog value as a string for masking.
func valueString(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return v.Resolve().String()
}
