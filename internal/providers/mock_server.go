package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// Stream framing formats understood by the mock server.
const (
	// StreamFormatSSE wraps each chunk in "data: ..." frames and appends
	// a final [DONE] marker (OpenAI, Groq, LM Studio, vLLM, Gemini).
	StreamFormatSSE = "sse"

	// StreamFormatEvents emits chunks verbatim; each chunk carries its own
	// "event:" and "data:" lines (Anthropic).
	StreamFormatEvents = "events"

	// StreamFormatNDJSON emits one JSON object per line (Ollama).
	StreamFormatNDJSON = "ndjson"
)

// MockServer is a mock HTTP server for testing provider adapters.
// It simulates vendor API responses including errors and streaming.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	mu           sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode   int
	Body         interface{}
	Delay        time.Duration
	Headers      map[string]string
	StreamChunks []string // For streaming responses
	StreamFormat string   // Framing for StreamChunks (default SSE)
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}

	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))

	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific endpoint.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.requestCount
}

// ResetRequestCount resets the request counter.
func (ms *MockServer) ResetRequestCount() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.requestCount = 0
}

// handler handles incoming HTTP requests.
func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	ms.requestCount++
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		// Fall back to prefix matching so paths with model names in them
		// ("/v1beta/models/gemini-1.5-flash:generateContent") can be
		// registered by prefix.
		ms.mu.Lock()
		for path, resp := range ms.responses {
			if strings.HasPrefix(r.URL.Path, path) {
				response, ok = resp, true
				break
			}
		}
		ms.mu.Unlock()
	}

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		time.Sleep(response.Delay)
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamChunks) > 0 {
		ms.handleStream(w, r, response)
		return
	}

	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// handleStream writes the configured chunks in the requested framing.
func (ms *MockServer) handleStream(w http.ResponseWriter, r *http.Request, response MockResponse) {
	format := response.StreamFormat
	if format == "" {
		format = StreamFormatSSE
	}

	switch format {
	case StreamFormatNDJSON:
		w.Header().Set("Content-Type", "application/x-ndjson")
	default:
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, chunk := range response.StreamChunks {
		switch format {
		case StreamFormatSSE:
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		case StreamFormatEvents:
			fmt.Fprintf(w, "%s\n", chunk)
		case StreamFormatNDJSON:
			fmt.Fprintf(w, "%s\n", chunk)
		}
		flusher.Flush()
		time.Sleep(10 * time.Millisecond) // Small delay between chunks
	}

	if format == StreamFormatSSE {
		fmt.Fprintf(w, "data: [DONE]\n\n")
		flusher.Flush()
	}
}

// MockOpenAIResponse creates a mock OpenAI chat completion response.
func MockOpenAIResponse(content string, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     10,
			"completion_tokens": 20,
			"total_tokens":      30,
		},
	}
}

// MockOpenAIStreamChunk creates a mock OpenAI streaming chunk.
func MockOpenAIStreamChunk(delta string, finishReason string) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "gpt-4o",
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"delta": map[string]interface{}{
					"content": delta,
				},
				"finish_reason": finishReason,
			},
		},
	}

	bytes, _ := json.Marshal(chunk)
	return string(bytes)
}

// MockOpenAIModelsResponse creates a mock GET /models listing.
func MockOpenAIModelsResponse(ids ...string) map[string]interface{} {
	data := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		data[i] = map[string]interface{}{
			"id":     id,
			"object": "model",
		}
	}
	return map[string]interface{}{
		"object": "list",
		"data":   data,
	}
}

// MockAnthropicResponse creates a mock Anthropic messages response.
func MockAnthropicResponse(content string, model string) map[string]interface{} {
	return map[string]interface{}{
		"id":   "msg_123",
		"type": "message",
		"role": "assistant",
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": content,
			},
		},
		"model":       model,
		"stop_reason": "end_turn",
		"usage": map[string]interface{}{
			"input_tokens":  10,
			"output_tokens": 20,
		},
	}
}

// MockAnthropicStreamEvent creates a mock Anthropic stream event frame.
func MockAnthropicStreamEvent(eventType string, data interface{}) string {
	var eventData string

	if data != nil {
		bytes, _ := json.Marshal(data)
		eventData = string(bytes)
	}

	return fmt.Sprintf("event: %s\ndata: %s\n", eventType, eventData)
}

// MockAnthropicContentBlockDelta creates a content block delta event frame.
func MockAnthropicContentBlockDelta(text string) string {
	data := map[string]interface{}{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]interface{}{
			"type": "text_delta",
			"text": text,
		},
	}

	return MockAnthropicStreamEvent("content_block_delta", data)
}

// MockAnthropicMessageStop creates a message stop event frame.
func MockAnthropicMessageStop() string {
	return MockAnthropicStreamEvent("message_stop", map[string]interface{}{
		"type": "message_stop",
	})
}

// MockGeminiResponse creates a mock Gemini generateContent response.
func MockGeminiResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{"text": content},
					},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]interface{}{
			"promptTokenCount":     10,
			"candidatesTokenCount": 20,
			"totalTokenCount":      30,
		},
	}
}

// MockGeminiStreamChunk creates a mock Gemini SSE stream chunk.
func MockGeminiStreamChunk(text string, finishReason string) string {
	candidate := map[string]interface{}{
		"content": map[string]interface{}{
			"role": "model",
			"parts": []map[string]interface{}{
				{"text": text},
			},
		},
	}
	if finishReason != "" {
		candidate["finishReason"] = finishReason
	}

	chunk := map[string]interface{}{
		"candidates": []map[string]interface{}{candidate},
	}

	bytes, _ := json.Marshal(chunk)
	return string(bytes)
}

// MockOllamaChatResponse creates a mock Ollama non-streaming chat response.
func MockOllamaChatResponse(content string, model string) map[string]interface{} {
	return map[string]interface{}{
		"model":      model,
		"created_at": time.Now().Format(time.RFC3339),
		"message": map[string]interface{}{
			"role":    "assistant",
			"content": content,
		},
		"done":        true,
		"done_reason": "stop",
	}
}

// MockOllamaStreamChunk creates one NDJSON line of an Ollama chat stream.
func MockOllamaStreamChunk(content string, done bool) string {
	chunk := map[string]interface{}{
		"model":      "llama3.2",
		"created_at": time.Now().Format(time.RFC3339),
		"message": map[string]interface{}{
			"role":    "assistant",
			"content": content,
		},
		"done": done,
	}
	if done {
		chunk["done_reason"] = "stop"
	}

	bytes, _ := json.Marshal(chunk)
	return string(bytes)
}

// MockOllamaTagsResponse creates a mock GET /api/tags listing.
func MockOllamaTagsResponse(models ...string) map[string]interface{} {
	entries := make([]map[string]interface{}, len(models))
	for i, m := range models {
		entries[i] = map[string]interface{}{
			"name":  m,
			"model": m,
			"size":  4661224676,
		}
	}
	return map[string]interface{}{
		"models": entries,
	}
}

// MockErrorResponse creates a mock error response.
func MockErrorResponse(statusCode int, message string) MockResponse {
	body := map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    "invalid_request_error",
			"code":    statusCode,
		},
	}

	return MockResponse{
		StatusCode: statusCode,
		Body:       body,
	}
}

// MockAuthError creates a 401 authentication error response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "Invalid API key")
}

// MockRateLimitError creates a 429 rate limit error response.
func MockRateLimitError(retryAfter int) MockResponse {
	response := MockErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}

// MockTimeoutError creates a slow response to simulate timeout.
func MockTimeoutError(delay time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       MockOpenAIResponse("timeout", "gpt-4o"),
		Delay:      delay,
	}
}

// MockServerError creates a 500 internal server error response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// Helper functions for testing

// ExpectHeader checks if a request has a specific header value.
func ExpectHeader(r *http.Request, key, value string) error {
	actual := r.Header.Get(key)
	if !strings.Contains(actual, value) {
		return fmt.Errorf("header %q mismatch: expected %q, got %q", key, value, actual)
	}
	return nil
}
