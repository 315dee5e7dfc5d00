package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"switchyard-ai/switchyard/pkg/providers"
)

// TestConfig returns a test provider configuration.
func TestConfig(name string, typ providers.ProviderType) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		Type:                typ,
		BaseURL:             "http://localhost:8080",
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		MaxRetries:          2,
		RetryDelay:          10 * time.Millisecond,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConfigWithURL returns a test config with a specific base URL.
func TestConfigWithURL(name string, typ providers.ProviderType, baseURL string) providers.ProviderConfig {
	config := TestConfig(name, typ)
	config.BaseURL = baseURL
	return config
}

// TestMessage creates a test message.
func TestMessage(role, content string) providers.Message {
	return providers.Message{
		Role:    role,
		Content: content,
	}
}

// UserMessages wraps a single user prompt as a conversation.
func UserMessages(content string) []providers.Message {
	return []providers.Message{TestMessage(providers.RoleUser, content)}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertErrorType fails the test if err does not match the expected type.
func AssertErrorType(t *testing.T, err error, expectedType interface{}) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	switch expectedType.(type) {
	case *providers.NotInitializedError:
		var target *providers.NotInitializedError
		if !errors.As(err, &target) {
			t.Fatalf("expected NotInitializedError, got %T: %v", err, err)
		}
	case *providers.AuthError:
		var target *providers.AuthError
		if !errors.As(err, &target) {
			t.Fatalf("expected AuthError, got %T: %v", err, err)
		}
	case *providers.RateLimitError:
		var target *providers.RateLimitError
		if !errors.As(err, &target) {
			t.Fatalf("expected RateLimitError, got %T: %v", err, err)
		}
	case *providers.TimeoutError:
		var target *providers.TimeoutError
		if !errors.As(err, &target) {
			t.Fatalf("expected TimeoutError, got %T: %v", err, err)
		}
	case *providers.UpstreamError:
		var target *providers.UpstreamError
		if !errors.As(err, &target) {
			t.Fatalf("expected UpstreamError, got %T: %v", err, err)
		}
	case *providers.ParseError:
		var target *providers.ParseError
		if !errors.As(err, &target) {
			t.Fatalf("expected ParseError, got %T: %v", err, err)
		}
	case *providers.StreamError:
		var target *providers.StreamError
		if !errors.As(err, &target) {
			t.Fatalf("expected StreamError, got %T: %v", err, err)
		}
	case *providers.ValidationError:
		var target *providers.ValidationError
		if !errors.As(err, &target) {
			t.Fatalf("expected ValidationError, got %T: %v", err, err)
		}
	case *providers.UnsupportedModelError:
		var target *providers.UnsupportedModelError
		if !errors.As(err, &target) {
			t.Fatalf("expected UnsupportedModelError, got %T: %v", err, err)
		}
	case *providers.ConfigError:
		var target *providers.ConfigError
		if !errors.As(err, &target) {
			t.Fatalf("expected ConfigError, got %T: %v", err, err)
		}
	case *providers.NoResponseBodyError:
		var target *providers.NoResponseBodyError
		if !errors.As(err, &target) {
			t.Fatalf("expected NoResponseBodyError, got %T: %v", err, err)
		}
	default:
		t.Fatalf("unknown error type: %T", expectedType)
	}
}

// AssertEqual fails the test if got != expected.
func AssertEqual(t *testing.T, got, expected interface{}) {
	t.Helper()
	if got != expected {
		t.Fatalf("expected %v, got %v", expected, got)
	}
}

// AssertTrue fails the test if condition is false.
func AssertTrue(t *testing.T, condition bool, message string) {
	t.Helper()
	if !condition {
		t.Fatalf("assertion failed: %s", message)
	}
}

// AssertFalse fails the test if condition is true.
func AssertFalse(t *testing.T, condition bool, message string) {
	t.Helper()
	if condition {
		t.Fatalf("assertion failed: %s", message)
	}
}

// WithTimeout runs a function with a timeout context.
func WithTimeout(t *testing.T, timeout time.Duration, fn func(ctx context.Context)) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		fn(ctx)
		close(done)
	}()

	select {
	case <-done:
		// Success
	case <-ctx.Done():
		t.Fatalf("test timeout after %s", timeout)
	}
}

// CollectStreamChunks drains a stream channel, returning the collected
// chunks and the first error chunk if one arrives.
func CollectStreamChunks(t *testing.T, chunks <-chan providers.StreamChunk) ([]providers.StreamChunk, error) {
	t.Helper()

	var collected []providers.StreamChunk
	for chunk := range chunks {
		if chunk.Err != nil {
			return collected, chunk.Err
		}
		collected = append(collected, chunk)
	}

	return collected, nil
}

// ConcatenateChunks concatenates the delta content from all chunks.
func ConcatenateChunks(chunks []providers.StreamChunk) string {
	var result string
	for _, chunk := range chunks {
		result += chunk.Delta
	}
	return result
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}

		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}

		<-ticker.C
	}
}
