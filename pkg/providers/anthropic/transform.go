package anthropic

import (
	"encoding/json"
	"fmt"

	"switchyard-ai/switchyard/pkg/providers"
)

// Anthropic API request/response types

// AnthropicRequest represents an Anthropic messages request.
type AnthropicRequest struct {
	Model         string             `json:"model"`
	Messages      []AnthropicMessage `json:"messages"`
	System        string             `json:"system,omitempty"`
	MaxTokens     int                `json:"max_tokens"`
	Temperature   float64            `json:"temperature,omitempty"`
	TopP          float64            `json:"top_p,omitempty"`
	Stream        bool               `json:"stream,omitempty"`
	StopSequences []string           `json:"stop_sequences,omitempty"`
}

// AnthropicMessage represents a message in Anthropic format.
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ContentBlock represents a content block in an Anthropic response.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// AnthropicResponse represents an Anthropic messages response.
type AnthropicResponse struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Role         string         `json:"role"`
	Content      []ContentBlock `json:"content"`
	Model        string         `json:"model"`
	StopReason   string         `json:"stop_reason"`
	StopSequence string         `json:"stop_sequence,omitempty"`
	Usage        AnthropicUsage `json:"usage"`
}

// AnthropicUsage represents token usage in Anthropic format.
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Anthropic streaming response types

// AnthropicStreamEvent represents an event in Anthropic's SSE stream.
// The delta payload's shape depends on the event type (ContentBlockDelta
// for content_block_delta, MessageDelta for message_delta), so it is kept
// raw and decoded per type.
type AnthropicStreamEvent struct {
	Type string `json:"type"`

	// For message_start event
	Message *AnthropicResponse `json:"message,omitempty"`

	// For content_block_start event
	Index        int           `json:"index,omitempty"`
	ContentBlock *ContentBlock `json:"content_block,omitempty"`

	// For content_block_delta and message_delta events
	Delta json.RawMessage `json:"delta,omitempty"`

	// For message_delta event
	Usage *AnthropicUsage `json:"usage,omitempty"`
}

// ContentBlockDelta represents incremental content in Anthropic format.
type ContentBlockDelta struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessageDelta represents message-level deltas.
type MessageDelta struct {
	StopReason   string `json:"stop_reason,omitempty"`
	StopSequence string `json:"stop_sequence,omitempty"`
}

// defaultMaxTokens is sent when the caller does not cap the completion.
// Anthropic rejects requests without max_tokens.
const defaultMaxTokens = 4096

// Transformation functions

// transformRequest builds an Anthropic request from provider-agnostic
// messages and options. System messages move to the dedicated field and
// the remaining turns must alternate user/assistant.
func transformRequest(messages []providers.Message, model string, opts *providers.ChatOptions, stream bool) (*AnthropicRequest, error) {
	if opts == nil {
		opts = &providers.ChatOptions{}
	}

	req := &AnthropicRequest{
		Model:         model,
		Messages:      make([]AnthropicMessage, 0, len(messages)),
		MaxTokens:     opts.MaxTokens,
		Temperature:   providers.EffectiveTemperature(model, opts.Temperature),
		TopP:          opts.TopP,
		Stream:        stream,
		StopSequences: opts.StopSequences,
	}

	if req.MaxTokens == 0 {
		req.MaxTokens = defaultMaxTokens
	}

	// Extract the system message (Anthropic requires it as a separate field)
	var systemMessage string
	for _, msg := range messages {
		if msg.Role == providers.RoleSystem {
			systemMessage = msg.Content
		} else {
			req.Messages = append(req.Messages, AnthropicMessage{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}
	req.System = systemMessage

	if err := validateMessageSequence(req.Messages); err != nil {
		return nil, err
	}

	return req, nil
}

// validateMessageSequence validates that messages alternate between user
// and assistant, starting with user.
func validateMessageSequence(messages []AnthropicMessage) error {
	if len(messages) == 0 {
		return nil
	}

	if messages[0].Role != providers.RoleUser {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "first message must be from user (Anthropic requirement)",
		}
	}

	for i := 1; i < len(messages); i++ {
		if messages[i-1].Role == messages[i].Role {
			return &providers.ValidationError{
				Field:   "messages",
				Message: fmt.Sprintf("messages must alternate between user and assistant (Anthropic requirement), found consecutive %s messages at index %d", messages[i].Role, i),
			}
		}
	}

	return nil
}

// extractContent concatenates the text content blocks of a response.
func extractContent(resp *AnthropicResponse) string {
	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content
}

// transformStreamChunk maps one stream event to the provider-agnostic
// shape. The second return reports whether the event produces a chunk at
// all; bookkeeping events (message_start, content_block_start, ping, ...)
// do not.
func transformStreamChunk(event *AnthropicStreamEvent) (providers.StreamChunk, bool, error) {
	switch event.Type {
	case "message_start", "content_block_start", "content_block_stop", "message_stop", "ping":
		return providers.StreamChunk{}, false, nil

	case "content_block_delta":
		var delta ContentBlockDelta
		if len(event.Delta) > 0 {
			if err := json.Unmarshal(event.Delta, &delta); err != nil {
				return providers.StreamChunk{}, false, fmt.Errorf("failed to parse content delta: %w", err)
			}
		}
		if delta.Text == "" {
			return providers.StreamChunk{}, false, nil
		}
		return providers.StreamChunk{Delta: delta.Text}, true, nil

	case "message_delta":
		var delta MessageDelta
		if len(event.Delta) > 0 {
			if err := json.Unmarshal(event.Delta, &delta); err != nil {
				return providers.StreamChunk{}, false, fmt.Errorf("failed to parse message delta: %w", err)
			}
		}
		if delta.StopReason == "" {
			return providers.StreamChunk{}, false, nil
		}
		return providers.StreamChunk{FinishReason: normalizeStopReason(delta.StopReason)}, true, nil

	default:
		return providers.StreamChunk{}, false, fmt.Errorf("unknown stream event type: %s", event.Type)
	}
}

// normalizeStopReason normalizes Anthropic stop reasons to
// provider-agnostic values.
func normalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return providers.FinishReasonStop
	case "max_tokens":
		return providers.FinishReasonLength
	default:
		return reason
	}
}
