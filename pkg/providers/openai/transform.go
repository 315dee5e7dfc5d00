package openai

import (
	"encoding/base64"
	"fmt"

	"switchyard-ai/switchyard/pkg/providers"
)

// OpenAI API request/response types. Groq, LM Studio, and vLLM speak this
// same wire format, so their adapters reuse these types through embedding.

// OpenAIRequest represents an OpenAI chat completion request.
type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	TopP        float64         `json:"top_p,omitempty"`
	Stream      bool            `json:"stream,omitempty"`
	Stop        []string        `json:"stop,omitempty"`
	N           int             `json:"n,omitempty"`
}

// OpenAIMessage represents a message in OpenAI format. Content is a plain
// string for text turns and a list of OpenAIContentPart for vision turns.
type OpenAIMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// OpenAIContentPart is one part of a multimodal message.
type OpenAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *OpenAIImageURL `json:"image_url,omitempty"`
}

// OpenAIImageURL carries an image reference, usually a data URI.
type OpenAIImageURL struct {
	URL string `json:"url"`
}

// OpenAIResponse represents an OpenAI chat completion response.
type OpenAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   OpenAIUsage    `json:"usage"`
}

// OpenAIChoice represents a completion choice in OpenAI format.
type OpenAIChoice struct {
	Index        int                   `json:"index"`
	Message      OpenAIResponseMessage `json:"message"`
	FinishReason string                `json:"finish_reason"`
}

// OpenAIResponseMessage is the assistant message inside a choice. Response
// content is always a plain string.
type OpenAIResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIUsage represents token usage in OpenAI format.
type OpenAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAI streaming response types

// OpenAIStreamResponse represents a chunk in OpenAI's SSE stream.
type OpenAIStreamResponse struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []OpenAIStreamChoice `json:"choices"`
}

// OpenAIStreamChoice represents a choice in a stream chunk.
type OpenAIStreamChoice struct {
	Index        int               `json:"index"`
	Delta        OpenAIStreamDelta `json:"delta"`
	FinishReason string            `json:"finish_reason,omitempty"`
}

// OpenAIStreamDelta represents the incremental content in a stream chunk.
type OpenAIStreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// OpenAIModelsResponse represents the GET /models listing.
type OpenAIModelsResponse struct {
	Object string        `json:"object"`
	Data   []OpenAIModel `json:"data"`
}

// OpenAIModel is one entry of the models listing.
type OpenAIModel struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// Transformation functions

// transformRequest builds an OpenAI request from provider-agnostic
// messages and options. The reasoning-tier temperature restriction is
// applied here so every embedding adapter inherits it.
func transformRequest(messages []providers.Message, model string, opts *providers.ChatOptions, stream bool) *OpenAIRequest {
	if opts == nil {
		opts = &providers.ChatOptions{}
	}

	req := &OpenAIRequest{
		Model:       model,
		Messages:    make([]OpenAIMessage, len(messages)),
		Temperature: providers.EffectiveTemperature(model, opts.Temperature),
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
		Stream:      stream,
		Stop:        opts.StopSequences,
		N:           1, // Always generate 1 completion
	}

	for i, msg := range messages {
		req.Messages[i] = OpenAIMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	return req
}

// visionMessages builds the single-turn multimodal message list for a
// vision request. The image travels inline as a base64 data URI.
func visionMessages(image []byte, prompt string) []OpenAIMessage {
	dataURI := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(image))

	return []OpenAIMessage{
		{
			Role: providers.RoleUser,
			Content: []OpenAIContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &OpenAIImageURL{URL: dataURI}},
			},
		},
	}
}

// extractContent pulls the completion text out of a response.
func extractContent(resp *OpenAIResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	// Use the first choice (we always request N=1)
	return resp.Choices[0].Message.Content, nil
}

// transformStreamChunk maps one SSE chunk to the provider-agnostic shape.
// A chunk without choices maps to an empty chunk, which the reader skips.
func transformStreamChunk(chunk *OpenAIStreamResponse) providers.StreamChunk {
	if len(chunk.Choices) == 0 {
		return providers.StreamChunk{}
	}

	choice := chunk.Choices[0]
	return providers.StreamChunk{
		Delta:        choice.Delta.Content,
		FinishReason: normalizeFinishReason(choice.FinishReason),
	}
}

// normalizeFinishReason maps OpenAI finish reasons to provider-agnostic
// values.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return providers.FinishReasonStop
	case "length", "max_tokens":
		return providers.FinishReasonLength
	default:
		return reason
	}
}
