package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	testhelpers "switchyard-ai/switchyard/internal/providers"
	"switchyard-ai/switchyard/pkg/providers"
)

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("anthropic", providers.TypeAnthropic, baseURL)
	cfg.MaxRetries = 0
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "test-api-key", &cfg))
	return provider
}

func TestAnthropic_InitializeRequiresAPIKey(t *testing.T) {
	provider := NewProvider()

	err := provider.Initialize(context.Background(), "", nil)
	testhelpers.AssertErrorType(t, err, &providers.ConfigError{})

	_, err = provider.Chat(context.Background(), testhelpers.UserMessages("hi"), "", nil)
	testhelpers.AssertErrorType(t, err, &providers.NotInitializedError{})
}

func TestAnthropic_Chat(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/messages", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockAnthropicResponse("Hello from Claude!", "claude-3-5-sonnet-20241022"),
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	content, err := provider.Chat(context.Background(), testhelpers.UserMessages("Say hello"), "", nil)
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, content, "Hello from Claude!")
}

func TestAnthropic_RequestShape(t *testing.T) {
	var captured AnthropicRequest
	var apiKey, version string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("x-api-key")
		version = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(testhelpers.MockAnthropicResponse("ok", "claude-3-5-sonnet-20241022"))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	defer provider.Close()

	messages := []providers.Message{
		{Role: providers.RoleSystem, Content: "Be terse."},
		{Role: providers.RoleUser, Content: "Say hello"},
	}

	_, err := provider.Chat(context.Background(), messages, "claude-3-5-sonnet-20241022", nil)
	testhelpers.AssertNoError(t, err)

	// Anthropic auth headers
	testhelpers.AssertEqual(t, apiKey, "test-api-key")
	testhelpers.AssertEqual(t, version, DefaultAnthropicVersion)

	// System message moved to the dedicated field, not the messages array
	testhelpers.AssertEqual(t, captured.System, "Be terse.")
	if len(captured.Messages) != 1 {
		t.Fatalf("expected 1 message after system extraction, got %d", len(captured.Messages))
	}
	testhelpers.AssertEqual(t, captured.Messages[0].Role, providers.RoleUser)

	// MaxTokens is required and defaulted
	testhelpers.AssertEqual(t, captured.MaxTokens, defaultMaxTokens)
}

func TestAnthropic_MessageAlternation(t *testing.T) {
	provider := newTestProvider(t, "http://localhost:9999")
	defer provider.Close()

	ctx := context.Background()

	// Consecutive user messages are rejected before dispatch
	_, err := provider.Chat(ctx, []providers.Message{
		{Role: providers.RoleUser, Content: "one"},
		{Role: providers.RoleUser, Content: "two"},
	}, "", nil)
	testhelpers.AssertErrorType(t, err, &providers.ValidationError{})

	// The first non-system message must be from user
	_, err = provider.Chat(ctx, []providers.Message{
		{Role: providers.RoleAssistant, Content: "hello"},
	}, "", nil)
	testhelpers.AssertErrorType(t, err, &providers.ValidationError{})

	// Alternating after a system message is fine structurally; this fails
	// only on the network, not on validation
	_, err = provider.Chat(ctx, []providers.Message{
		{Role: providers.RoleSystem, Content: "sys"},
		{Role: providers.RoleUser, Content: "one"},
		{Role: providers.RoleAssistant, Content: "two"},
		{Role: providers.RoleUser, Content: "three"},
	}, "", nil)
	var validationErr *providers.ValidationError
	if errors.As(err, &validationErr) {
		t.Errorf("unexpected validation error for alternating sequence: %v", err)
	}
}

func TestAnthropic_ContentBlocks(t *testing.T) {
	resp := &AnthropicResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "Hello"},
			{Type: "text", Text: " World"},
		},
	}

	// Multiple text blocks concatenate
	testhelpers.AssertEqual(t, extractContent(resp), "Hello World")

	// Empty content yields an empty string
	testhelpers.AssertEqual(t, extractContent(&AnthropicResponse{}), "")
}

func TestAnthropic_StopReasonNormalization(t *testing.T) {
	tests := []struct {
		reason string
		want   string
	}{
		{"end_turn", providers.FinishReasonStop},
		{"stop_sequence", providers.FinishReasonStop},
		{"max_tokens", providers.FinishReasonLength},
		{"other", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			if got := normalizeStopReason(tt.reason); got != tt.want {
				t.Errorf("normalizeStopReason(%q) = %q, want %q", tt.reason, got, tt.want)
			}
		})
	}
}

func TestAnthropic_Streaming(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/messages", testhelpers.MockResponse{
		StreamFormat: testhelpers.StreamFormatEvents,
		StreamChunks: []string{
			testhelpers.MockAnthropicStreamEvent("message_start", map[string]interface{}{
				"type":    "message_start",
				"message": testhelpers.MockAnthropicResponse("", "claude-3-5-sonnet-20241022"),
			}),
			testhelpers.MockAnthropicStreamEvent("ping", map[string]interface{}{"type": "ping"}),
			testhelpers.MockAnthropicContentBlockDelta("Hello"),
			testhelpers.MockAnthropicContentBlockDelta(" there"),
			testhelpers.MockAnthropicStreamEvent("message_delta", map[string]interface{}{
				"type":  "message_delta",
				"delta": map[string]interface{}{"stop_reason": "end_turn"},
				"usage": map[string]interface{}{"output_tokens": 20},
			}),
			testhelpers.MockAnthropicMessageStop(),
		},
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	stream, err := provider.ChatStream(context.Background(), testhelpers.UserMessages("Say hello"), "", nil)
	testhelpers.AssertNoError(t, err)

	chunks, streamErr := testhelpers.CollectStreamChunks(t, stream)
	testhelpers.AssertNoError(t, streamErr)

	// Only content deltas and the stop chunk come through; message_start
	// and ping are consumed silently
	if got := testhelpers.ConcatenateChunks(chunks); got != "Hello there" {
		t.Errorf("expected content %q, got %q", "Hello there", got)
	}

	last := chunks[len(chunks)-1]
	testhelpers.AssertEqual(t, last.FinishReason, providers.FinishReasonStop)
}

func TestAnthropic_StreamingUnknownEvent(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/messages", testhelpers.MockResponse{
		StreamFormat: testhelpers.StreamFormatEvents,
		StreamChunks: []string{
			testhelpers.MockAnthropicContentBlockDelta("Hello"),
			testhelpers.MockAnthropicStreamEvent("mystery_event", map[string]interface{}{"type": "mystery_event"}),
		},
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	stream, err := provider.ChatStream(context.Background(), testhelpers.UserMessages("hi"), "", nil)
	testhelpers.AssertNoError(t, err)

	chunks, streamErr := testhelpers.CollectStreamChunks(t, stream)
	testhelpers.AssertErrorType(t, streamErr, &providers.ParseError{})

	// The content before the unknown event was still delivered
	if testhelpers.ConcatenateChunks(chunks) != "Hello" {
		t.Errorf("expected chunks before failure to be delivered, got %v", chunks)
	}
}
