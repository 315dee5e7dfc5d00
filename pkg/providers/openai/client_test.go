package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	testhelpers "switchyard-ai/switchyard/internal/providers"
	"switchyard-ai/switchyard/pkg/providers"
)

func TestOpenAI_InitializeRequiresAPIKey(t *testing.T) {
	provider := NewProvider()

	err := provider.Initialize(context.Background(), "", nil)
	testhelpers.AssertErrorType(t, err, &providers.ConfigError{})

	// The gate stays closed after a failed Initialize
	_, err = provider.Chat(context.Background(), testhelpers.UserMessages("hi"), "", nil)
	testhelpers.AssertErrorType(t, err, &providers.NotInitializedError{})
}

func TestOpenAI_InitializeDefaults(t *testing.T) {
	provider := NewProvider()

	err := provider.Initialize(context.Background(), "test-api-key", nil)
	testhelpers.AssertNoError(t, err)
	defer provider.Close()

	if got := provider.GetConfig().BaseURL; got != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", got)
	}

	// Static catalog with gpt-4o as default
	def, err := provider.GetDefaultModel()
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, def, "gpt-4o")

	models, err := provider.GetModels(context.Background())
	testhelpers.AssertNoError(t, err)
	if len(models) == 0 {
		t.Fatal("expected non-empty static catalog")
	}
}

func TestOpenAI_Chat(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse("Hello, world!", "gpt-4o"),
	})

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("openai", providers.TypeOpenAI, mock.URL())
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "test-api-key", &cfg))
	defer provider.Close()

	content, err := provider.Chat(context.Background(), testhelpers.UserMessages("Say hello"), "gpt-4o", nil)
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, content, "Hello, world!")
}

func TestOpenAI_ChatRequestShape(t *testing.T) {
	var captured OpenAIRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(testhelpers.MockOpenAIResponse("ok", "gpt-4o"))
	}))
	defer server.Close()

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("openai", providers.TypeOpenAI, server.URL)
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "secret-key", &cfg))
	defer provider.Close()

	messages := []providers.Message{
		{Role: providers.RoleSystem, Content: "Be brief."},
		{Role: providers.RoleUser, Content: "Say hello"},
	}
	opts := &providers.ChatOptions{Temperature: 0.3, MaxTokens: 50}

	_, err := provider.Chat(context.Background(), messages, "gpt-4o", opts)
	testhelpers.AssertNoError(t, err)

	// Bearer auth
	if !strings.HasPrefix(authHeader, "Bearer secret-key") {
		t.Errorf("expected Bearer auth header, got %q", authHeader)
	}

	// Request carries the resolved model, both messages, and the options
	testhelpers.AssertEqual(t, captured.Model, "gpt-4o")
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(captured.Messages))
	}
	testhelpers.AssertEqual(t, captured.Messages[0].Role, providers.RoleSystem)
	testhelpers.AssertEqual(t, captured.Temperature, 0.3)
	testhelpers.AssertEqual(t, captured.MaxTokens, 50)
	testhelpers.AssertEqual(t, captured.N, 1)
	testhelpers.AssertFalse(t, captured.Stream, "non-streaming request must not set stream")
}

func TestOpenAI_ReasoningModelTemperature(t *testing.T) {
	var captured OpenAIRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(testhelpers.MockOpenAIResponse("ok", "o1"))
	}))
	defer server.Close()

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("openai", providers.TypeOpenAI, server.URL)
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "test-api-key", &cfg))
	defer provider.Close()

	// The o1 tier rejects any temperature except 1; the requested 0.2 must
	// be overridden.
	opts := &providers.ChatOptions{Temperature: 0.2}
	_, err := provider.Chat(context.Background(), testhelpers.UserMessages("think"), "o1", opts)
	testhelpers.AssertNoError(t, err)

	testhelpers.AssertEqual(t, captured.Temperature, float64(1))
}

func TestOpenAI_ChatValidation(t *testing.T) {
	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("openai", providers.TypeOpenAI, "http://localhost:9999")
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "test-api-key", &cfg))
	defer provider.Close()

	ctx := context.Background()

	// Empty conversation
	_, err := provider.Chat(ctx, nil, "gpt-4o", nil)
	testhelpers.AssertErrorType(t, err, &providers.ValidationError{})

	// Unknown model
	_, err = provider.Chat(ctx, testhelpers.UserMessages("hi"), "not-a-model", nil)
	testhelpers.AssertErrorType(t, err, &providers.UnsupportedModelError{})
}

func TestOpenAI_ChatAuthError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/chat/completions", testhelpers.MockAuthError())

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("openai", providers.TypeOpenAI, mock.URL())
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "bad-key", &cfg))
	defer provider.Close()

	_, err := provider.Chat(context.Background(), testhelpers.UserMessages("hi"), "gpt-4o", nil)
	testhelpers.AssertErrorType(t, err, &providers.AuthError{})
}

func TestOpenAI_ChatVision(t *testing.T) {
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(testhelpers.MockOpenAIResponse("a red square", "gpt-4o"))
	}))
	defer server.Close()

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("openai", providers.TypeOpenAI, server.URL)
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "test-api-key", &cfg))
	defer provider.Close()

	content, err := provider.ChatVision(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "What is this?", "gpt-4o")
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, content, "a red square")

	// The message content must be multimodal parts with a data URI
	msgs, ok := captured["messages"].([]interface{})
	if !ok || len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %v", captured["messages"])
	}
	parts, ok := msgs[0].(map[string]interface{})["content"].([]interface{})
	if !ok || len(parts) != 2 {
		t.Fatalf("expected 2 content parts, got %v", msgs[0])
	}
	imagePart := parts[1].(map[string]interface{})
	testhelpers.AssertEqual(t, imagePart["type"], "image_url")
	url := imagePart["image_url"].(map[string]interface{})["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("expected base64 data URI, got %q", url)
	}

	// Empty image is rejected before dispatch
	_, err = provider.ChatVision(context.Background(), nil, "What is this?", "gpt-4o")
	testhelpers.AssertErrorType(t, err, &providers.ValidationError{})
}

func TestOpenAI_FetchModels(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/models", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIModelsResponse("model-x", "model-y"),
	})

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("openai", providers.TypeOpenAI, mock.URL())
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "test-api-key", &cfg))
	defer provider.Close()

	models, err := provider.FetchModels(context.Background())
	testhelpers.AssertNoError(t, err)
	if len(models) != 2 || models[0] != "model-x" || models[1] != "model-y" {
		t.Errorf("unexpected live catalog: %v", models)
	}

	// The static catalog is unaffected by a live fetch
	def, err := provider.GetDefaultModel()
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, def, "gpt-4o")
}
