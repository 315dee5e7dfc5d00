package providers

import (
	"fmt"
	"time"
)

// NotInitializedError is returned when any adapter method other than
// Initialize is called before Initialize has completed.
type NotInitializedError struct {
	// Provider is the name of the adapter
	Provider string
}

// Error implements the error interface.
func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("provider %q not initialized: call Initialize first", e.Provider)
}

// UnsupportedModelError is returned when an explicitly requested model is
// not present in the adapter's catalog.
type UnsupportedModelError struct {
	// Provider is the name of the adapter
	Provider string

	// Model is the requested model identifier
	Model string
}

// Error implements the error interface.
func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// NoModelsError is returned when an adapter's model catalog is empty.
type NoModelsError struct {
	// Provider is the name of the adapter
	Provider string
}

// Error implements the error interface.
func (e *NoModelsError) Error() string {
	return fmt.Sprintf("provider %q has no models available", e.Provider)
}

// UpstreamError represents a non-2xx response from the vendor API.
type UpstreamError struct {
	// Provider is the name of the adapter
	Provider string

	// StatusCode is the HTTP status code
	StatusCode int

	// Body is the raw error response body
	Body string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("provider %q upstream error (status %d): %s", e.Provider, e.StatusCode, body)
}

// AuthError represents an authentication failure (HTTP 401 or 403).
// Never retried.
type AuthError struct {
	// Provider is the name of the adapter
	Provider string

	// Message is the error message from the vendor
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("provider %q authentication failed: %s", e.Provider, e.Message)
}

// RateLimitError represents a rate limit response (HTTP 429), with the
// Retry-After duration when the vendor provides one.
type RateLimitError struct {
	// Provider is the name of the adapter
	Provider string

	// RetryAfter is the wait the vendor asked for (0 if unspecified)
	RetryAfter time.Duration

	// Message is the error message from the vendor
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider %q rate limit exceeded (retry after %s): %s",
			e.Provider, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("provider %q rate limit exceeded: %s", e.Provider, e.Message)
}

// TimeoutError represents a request that exceeded its deadline.
type TimeoutError struct {
	// Provider is the name of the adapter
	Provider string

	// Timeout is the deadline that was exceeded
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %q request timeout after %s", e.Provider, e.Timeout)
}

// NoResponseBodyError is returned by the streaming path when the transport
// delivers no readable body before the stream ends.
type NoResponseBodyError struct {
	// Provider is the name of the adapter
	Provider string
}

// Error implements the error interface.
func (e *NoResponseBodyError) Error() string {
	return fmt.Sprintf("provider %q returned no response body", e.Provider)
}

// ParseError represents a malformed vendor response.
type ParseError struct {
	// Provider is the name of the adapter
	Provider string

	// RawResponse is the body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("provider %q response parse error: %v", e.Provider, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// StreamError represents a failure while reading a streaming response.
// It is delivered through the chunk channel, never thrown mid-iteration.
type StreamError struct {
	// Provider is the name of the adapter
	Provider string

	// Message describes where in the stream the failure occurred
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q stream error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q stream error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *StreamError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an invalid request caught before dispatch.
type ValidationError struct {
	// Field is the name of the invalid field
	Field string

	// Message describes what is invalid
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field %q: %s", e.Field, e.Message)
}

// ConfigError represents an invalid adapter configuration.
type ConfigError struct {
	// Provider is the name of the adapter
	Provider string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Provider, e.Field, e.Message)
}
