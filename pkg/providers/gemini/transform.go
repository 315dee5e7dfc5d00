package gemini

import (
	"encoding/base64"
	"fmt"
	"strings"

	"switchyard-ai/switchyard/pkg/providers"
)

// GeminiRequest is the generateContent request payload.
type GeminiRequest struct {
	Contents         []GeminiContent   `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// GeminiContent is a single conversation turn.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart is one piece of content within a turn. Exactly one of
// Text or InlineData is set.
type GeminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *GeminiInlineData `json:"inline_data,omitempty"`
}

// GeminiInlineData carries base64-encoded media for vision requests.
type GeminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// GenerationConfig tunes sampling for a request.
type GenerationConfig struct {
	Temperature     float64  `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	TopP            float64  `json:"topP,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

// GeminiResponse is the generateContent response payload. Streaming
// chunks share the same shape, one response object per SSE frame.
type GeminiResponse struct {
	Candidates    []GeminiCandidate `json:"candidates"`
	UsageMetadata *GeminiUsage      `json:"usageMetadata,omitempty"`
}

// GeminiCandidate is one generated completion.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

// GeminiUsage reports token consumption.
type GeminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// primingAck is the synthetic model turn that follows an injected
// system prompt. Gemini has no system role, so the system message
// becomes a user/model priming pair at the head of the conversation.
const primingAck = "Understood."

// transformRequest converts messages and options to a Gemini request.
func transformRequest(messages []providers.Message, model string, opts *providers.ChatOptions) *GeminiRequest {
	var requestedTemp float64
	if opts != nil {
		requestedTemp = opts.Temperature
	}

	config := &GenerationConfig{
		Temperature: providers.EffectiveTemperature(model, requestedTemp),
	}
	if opts != nil {
		config.MaxOutputTokens = opts.MaxTokens
		config.TopP = opts.TopP
		config.StopSequences = opts.StopSequences
	}

	var contents []GeminiContent
	for _, msg := range messages {
		switch msg.Role {
		case providers.RoleSystem:
			// Synthetic priming pair in place of a system role
			contents = append(contents,
				GeminiContent{Role: "user", Parts: []GeminiPart{{Text: msg.Content}}},
				GeminiContent{Role: "model", Parts: []GeminiPart{{Text: primingAck}}},
			)
		case providers.RoleAssistant:
			contents = append(contents, GeminiContent{
				Role:  "model",
				Parts: []GeminiPart{{Text: msg.Content}},
			})
		default:
			contents = append(contents, GeminiContent{
				Role:  "user",
				Parts: []GeminiPart{{Text: msg.Content}},
			})
		}
	}

	return &GeminiRequest{
		Contents:         contents,
		GenerationConfig: config,
	}
}

// visionContents builds the contents array for an image analysis request.
func visionContents(image []byte, prompt string) []GeminiContent {
	return []GeminiContent{
		{
			Role: "user",
			Parts: []GeminiPart{
				{Text: prompt},
				{InlineData: &GeminiInlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		},
	}
}

// extractContent pulls the text out of a response.
func extractContent(resp *GeminiResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return sb.String(), nil
}

// transformStreamChunk converts one streamed response object to a chunk.
func transformStreamChunk(resp *GeminiResponse) providers.StreamChunk {
	if len(resp.Candidates) == 0 {
		return providers.StreamChunk{}
	}

	candidate := resp.Candidates[0]

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}

	return providers.StreamChunk{
		Delta:        sb.String(),
		FinishReason: normalizeFinishReason(candidate.FinishReason),
	}
}

// normalizeFinishReason maps Gemini finish reasons to the common set.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "":
		return ""
	case "STOP":
		return providers.FinishReasonStop
	case "MAX_TOKENS":
		return providers.FinishReasonLength
	default:
		return strings.ToLower(reason)
	}
}
