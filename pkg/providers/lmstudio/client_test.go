package lmstudio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	testhelpers "switchyard-ai/switchyard/internal/providers"
	"switchyard-ai/switchyard/pkg/providers"
)

func TestLMStudio_InitializeWithoutServer(t *testing.T) {
	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("lmstudio", providers.TypeLMStudio, "http://127.0.0.1:1/v1")
	cfg.MaxRetries = 1

	// No running server is an accepted startup state
	err := provider.Initialize(context.Background(), "", &cfg)
	testhelpers.AssertNoError(t, err)
	defer provider.Close()

	testhelpers.AssertFalse(t, provider.ValidateConnection(context.Background()), "unreachable server should probe false")

	model, err := provider.GetDefaultModel()
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, model, "local-model")
}

func TestLMStudio_LiveCatalog(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/models", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIModelsResponse("qwen2.5-7b-instruct"),
	})

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("lmstudio", providers.TypeLMStudio, mock.URL())
	cfg.MaxRetries = 1
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "", &cfg))
	defer provider.Close()

	// The loaded model replaces the fallback catalog
	model, err := provider.GetDefaultModel()
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, model, "qwen2.5-7b-instruct")
}

func TestLMStudio_ChatSendsPlaceholderKey(t *testing.T) {
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("lmstudio", providers.TypeLMStudio, server.URL)
	cfg.MaxRetries = 1
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "", &cfg))
	defer provider.Close()

	content, err := provider.Chat(context.Background(), testhelpers.UserMessages("hello"), "", nil)
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, content, "hi")

	// The server ignores the key but the header must still be well formed
	testhelpers.AssertEqual(t, authHeader, "Bearer "+placeholderKey)
}
