package ollama

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

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("ollama", providers.TypeOllama, baseURL)
	cfg.MaxRetries = 1
	testhelpers.AssertNoError(t, provider.Initialize(context.Background(), "", &cfg))
	return provider
}

func TestOllama_InitializeWithoutDaemon(t *testing.T) {
	provider := NewProvider()
	cfg := testhelpers.TestConfigWithURL("ollama", providers.TypeOllama, "http://127.0.0.1:1")
	cfg.MaxRetries = 1

	// No daemon is an accepted startup state, not an error
	err := provider.Initialize(context.Background(), "", &cfg)
	testhelpers.AssertNoError(t, err)
	defer provider.Close()

	testhelpers.AssertFalse(t, provider.ValidateConnection(context.Background()), "unreachable daemon should probe false")

	// The fallback catalog keeps routing decisions possible
	model, err := provider.GetDefaultModel()
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, model, "llama3.2")
}

func TestOllama_InitializeFetchesLiveCatalog(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/version", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       map[string]interface{}{"version": "0.5.1"},
	})
	mock.SetResponse("/api/tags", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOllamaTagsResponse("llama3.2:latest", "codellama:13b"),
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	testhelpers.AssertTrue(t, provider.ValidateConnection(context.Background()), "daemon should probe true")

	models, err := provider.GetModels(context.Background())
	testhelpers.AssertNoError(t, err)
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %v", models)
	}

	// :latest is trimmed, explicit tags are kept
	testhelpers.AssertEqual(t, models[0], "llama3.2")
	testhelpers.AssertEqual(t, models[1], "codellama:13b")
}

func TestOllama_ValidateModelLatestSuffix(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/version", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       map[string]interface{}{"version": "0.5.1"},
	})
	mock.SetResponse("/api/tags", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOllamaTagsResponse("llama3.2:latest"),
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	resolved, err := provider.ValidateModel("llama3.2:latest")
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, resolved, "llama3.2")

	_, err = provider.ValidateModel("phantom-model")
	testhelpers.AssertErrorType(t, err, &providers.UnsupportedModelError{})
}

func TestOllama_Chat(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/chat", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOllamaChatResponse("Hello from llama!", "llama3.2"),
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	content, err := provider.Chat(context.Background(), testhelpers.UserMessages("Say hello"), "", nil)
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, content, "Hello from llama!")
}

func TestOllama_RequestShape(t *testing.T) {
	var captured OllamaChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(testhelpers.MockOllamaChatResponse("ok", "llama3.2"))
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	defer provider.Close()

	messages := []providers.Message{
		{Role: providers.RoleSystem, Content: "Be terse."},
		{Role: providers.RoleUser, Content: "hi"},
	}
	opts := &providers.ChatOptions{MaxTokens: 64}

	_, err := provider.Chat(context.Background(), messages, "llama3.2", opts)
	testhelpers.AssertNoError(t, err)

	testhelpers.AssertEqual(t, captured.Model, "llama3.2")
	testhelpers.AssertFalse(t, captured.Stream, "non-streaming chat must send stream=false")

	// System role passes through natively
	if len(captured.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(captured.Messages))
	}
	testhelpers.AssertEqual(t, captured.Messages[0].Role, providers.RoleSystem)

	if captured.Options == nil {
		t.Fatal("expected options to be set")
	}
	testhelpers.AssertEqual(t, captured.Options.Temperature, providers.DefaultTemperature)
	testhelpers.AssertEqual(t, captured.Options.NumPredict, 64)
}

func TestOllama_ReasoningModelTemperature(t *testing.T) {
	var captured OllamaChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_ = json.NewEncoder(w).Encode(testhelpers.MockOllamaTagsResponse("deepseek-r1:7b"))
		case "/api/version":
			_ = json.NewEncoder(w).Encode(map[string]string{"version": "0.5.1"})
		default:
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			_ = json.NewEncoder(w).Encode(testhelpers.MockOllamaChatResponse("ok", "deepseek-r1:7b"))
		}
	}))
	defer server.Close()

	provider := newTestProvider(t, server.URL)
	defer provider.Close()

	opts := &providers.ChatOptions{Temperature: 0.2}
	_, err := provider.Chat(context.Background(), testhelpers.UserMessages("think"), "deepseek-r1:7b", opts)
	testhelpers.AssertNoError(t, err)

	// Reasoning models reject any temperature other than 1
	testhelpers.AssertEqual(t, captured.Options.Temperature, float64(1))
}

func TestOllama_Streaming(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/chat", testhelpers.MockResponse{
		StreamFormat: testhelpers.StreamFormatNDJSON,
		StreamChunks: []string{
			testhelpers.MockOllamaStreamChunk("Hello", false),
			testhelpers.MockOllamaStreamChunk(" world", false),
			testhelpers.MockOllamaStreamChunk("", true),
		},
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	stream, err := provider.ChatStream(context.Background(), testhelpers.UserMessages("Say hello"), "", nil)
	testhelpers.AssertNoError(t, err)

	chunks, streamErr := testhelpers.CollectStreamChunks(t, stream)
	testhelpers.AssertNoError(t, streamErr)

	if got := testhelpers.ConcatenateChunks(chunks); got != "Hello world" {
		t.Errorf("expected content %q, got %q", "Hello world", got)
	}

	last := chunks[len(chunks)-1]
	testhelpers.AssertEqual(t, last.FinishReason, providers.FinishReasonStop)
}

func TestOllama_StreamingMalformedLine(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/chat", testhelpers.MockResponse{
		StreamFormat: testhelpers.StreamFormatNDJSON,
		StreamChunks: []string{
			testhelpers.MockOllamaStreamChunk("Hello", false),
			"{not json",
		},
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	stream, err := provider.ChatStream(context.Background(), testhelpers.UserMessages("hi"), "", nil)
	testhelpers.AssertNoError(t, err)

	chunks, streamErr := testhelpers.CollectStreamChunks(t, stream)
	testhelpers.AssertErrorType(t, streamErr, &providers.ParseError{})
	testhelpers.AssertEqual(t, testhelpers.ConcatenateChunks(chunks), "Hello")
}

func TestOllama_PullModel(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/pull", testhelpers.MockResponse{
		StreamFormat: testhelpers.StreamFormatNDJSON,
		StreamChunks: []string{
			`{"status":"pulling manifest"}`,
			`{"status":"downloading","digest":"sha256:abc","total":100,"completed":50}`,
			`{"status":"success"}`,
		},
	})
	mock.SetResponse("/api/tags", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOllamaTagsResponse("mistral:latest"),
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	var statuses []string
	err := provider.PullModel(context.Background(), "mistral", func(p providers.PullProgress) {
		statuses = append(statuses, p.Status)
	})
	testhelpers.AssertNoError(t, err)

	if len(statuses) != 3 {
		t.Fatalf("expected 3 progress updates, got %v", statuses)
	}
	testhelpers.AssertEqual(t, statuses[0], "pulling manifest")
	testhelpers.AssertEqual(t, statuses[2], "success")

	// A successful pull refreshes the catalog
	model, err := provider.GetDefaultModel()
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, model, "mistral")
}

func TestOllama_PullModelError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/pull", testhelpers.MockResponse{
		StreamFormat: testhelpers.StreamFormatNDJSON,
		StreamChunks: []string{
			`{"status":"pulling manifest"}`,
			`{"error":"pull model manifest: file does not exist"}`,
		},
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	err := provider.PullModel(context.Background(), "no-such-model", nil)
	testhelpers.AssertError(t, err)
	if !strings.Contains(err.Error(), "file does not exist") {
		t.Errorf("expected the daemon's error to surface, got %v", err)
	}
}

func TestOllama_DeleteModel(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/delete", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       map[string]interface{}{},
	})
	mock.SetResponse("/api/tags", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOllamaTagsResponse("llama3.2:latest"),
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	testhelpers.AssertNoError(t, provider.DeleteModel(context.Background(), "mistral"))

	err := provider.DeleteModel(context.Background(), "")
	testhelpers.AssertErrorType(t, err, &providers.ValidationError{})
}

func TestOllama_Version(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/api/version", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       map[string]interface{}{"version": "0.5.1"},
	})

	provider := newTestProvider(t, mock.URL())
	defer provider.Close()

	version, err := provider.Version(context.Background())
	testhelpers.AssertNoError(t, err)
	testhelpers.AssertEqual(t, version, "0.5.1")
}
