package ollama

import (
	"switchyard-ai/switchyard/pkg/providers"
)

// OllamaChatRequest is the /api/chat request payload.
type OllamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *OllamaOptions  `json:"options,omitempty"`
}

// OllamaMessage is a single conversation turn. Ollama accepts the
// system role natively, so messages pass through unchanged.
type OllamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OllamaOptions tunes sampling for a request. Ollama calls the token
// budget num_predict rather than max_tokens.
type OllamaOptions struct {
	Temperature float64  `json:"temperature,omitempty"`
	TopP        float64  `json:"top_p,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// OllamaChatResponse is one /api/chat response object. The streaming
// variant emits one of these per NDJSON line with Done=false until the
// terminal line.
type OllamaChatResponse struct {
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         OllamaMessage `json:"message"`
	Done            bool          `json:"done"`
	DoneReason      string        `json:"done_reason,omitempty"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}

// OllamaTagsResponse is the GET /api/tags catalog listing.
type OllamaTagsResponse struct {
	Models []OllamaModelEntry `json:"models"`
}

// OllamaModelEntry is one installed model.
type OllamaModelEntry struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Size  int64  `json:"size"`
}

// OllamaPullRequest is the POST /api/pull payload.
type OllamaPullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

// OllamaPullEvent is one NDJSON progress line of a pull. A terminal
// failure arrives as an Error field rather than an HTTP status.
type OllamaPullEvent struct {
	Status    string `json:"status"`
	Digest    string `json:"digest,omitempty"`
	Total     int64  `json:"total,omitempty"`
	Completed int64  `json:"completed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// OllamaDeleteRequest is the DELETE /api/delete payload.
type OllamaDeleteRequest struct {
	Model string `json:"model"`
}

// OllamaVersionResponse is the GET /api/version payload.
type OllamaVersionResponse struct {
	Version string `json:"version"`
}

// transformRequest converts messages and options to an Ollama request.
func transformRequest(messages []providers.Message, model string, opts *providers.ChatOptions, stream bool) *OllamaChatRequest {
	ollamaMessages := make([]OllamaMessage, 0, len(messages))
	for _, msg := range messages {
		ollamaMessages = append(ollamaMessages, OllamaMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	var requestedTemp float64
	if opts != nil {
		requestedTemp = opts.Temperature
	}

	options := &OllamaOptions{
		Temperature: providers.EffectiveTemperature(model, requestedTemp),
	}
	if opts != nil {
		options.TopP = opts.TopP
		options.NumPredict = opts.MaxTokens
		options.Stop = opts.StopSequences
	}

	return &OllamaChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Stream:   stream,
		Options:  options,
	}
}

// transformStreamChunk converts one NDJSON response line to a chunk.
func transformStreamChunk(resp *OllamaChatResponse) providers.StreamChunk {
	chunk := providers.StreamChunk{
		Delta: resp.Message.Content,
	}
	if resp.Done {
		chunk.FinishReason = normalizeDoneReason(resp.DoneReason)
	}
	return chunk
}

// normalizeDoneReason maps Ollama done reasons to the common set.
func normalizeDoneReason(reason string) string {
	switch reason {
	case "", "stop":
		return providers.FinishReasonStop
	case "length":
		return providers.FinishReasonLength
	default:
		return reason
	}
}
