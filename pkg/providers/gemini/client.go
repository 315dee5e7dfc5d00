package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"switchyard-ai/switchyard/pkg/providers"
)

// DefaultBaseURL is the Google Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// defaultModels is the static catalog, default model first.
var defaultModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-2.0-flash",
}

// Provider is the Google Gemini adapter for the generateContent API.
type Provider struct {
	*providers.Client
}

// NewProvider creates an uninitialized Gemini adapter.
func NewProvider() *Provider {
	return &Provider{Client: providers.NewClient("gemini", providers.TypeGemini)}
}

// Initialize configures the adapter and opens the gate. The API key is
// required; BaseURL defaults to the Google endpoint.
func (p *Provider) Initialize(ctx context.Context, apiKey string, cfg *providers.ProviderConfig) error {
	merged := providers.ProviderConfig{}
	if cfg != nil {
		merged = *cfg
	}
	merged.Name = p.GetName()
	merged.Type = p.GetType()
	if apiKey != "" {
		merged.APIKey = apiKey
	}

	if merged.APIKey == "" {
		return &providers.ConfigError{
			Provider: p.GetName(),
			Field:    "api_key",
			Message:  "API key is required",
		}
	}
	if merged.BaseURL == "" {
		merged.BaseURL = DefaultBaseURL
	}

	if err := p.Init(merged); err != nil {
		return err
	}
	p.SetModels(defaultModels)

	slog.Info("provider initialized",
		"provider", p.GetName(),
		"base_url", merged.BaseURL,
	)

	return nil
}

// GetModels returns the static catalog.
func (p *Provider) GetModels(ctx context.Context) ([]string, error) {
	if err := p.EnsureInitialized(); err != nil {
		return nil, err
	}
	return p.Models(), nil
}

// Chat sends a conversation and returns the completion text.
func (p *Provider) Chat(ctx context.Context, messages []providers.Message, model string, opts *providers.ChatOptions) (string, error) {
	if err := p.EnsureInitialized(); err != nil {
		return "", err
	}
	if err := validateMessages(messages); err != nil {
		return "", err
	}
	resolved, err := p.ValidateModel(model)
	if err != nil {
		return "", err
	}

	req := transformRequest(messages, resolved, opts)

	var resp GeminiResponse
	if err := p.DoJSONRequest(ctx, "POST", p.generateURL(resolved), req, &resp, p.headers()); err != nil {
		return "", err
	}

	content, err := extractContent(&resp)
	if err != nil {
		return "", &providers.ParseError{
			Provider: p.GetName(),
			Cause:    err,
		}
	}

	if resp.UsageMetadata != nil {
		slog.Debug("chat completion succeeded",
			"provider", p.GetName(),
			"model", resolved,
			"tokens", resp.UsageMetadata.TotalTokenCount,
		)
	}

	return content, nil
}

// ChatStream sends a conversation and streams the completion as chunks.
func (p *Provider) ChatStream(ctx context.Context, messages []providers.Message, model string, opts *providers.ChatOptions) (<-chan providers.StreamChunk, error) {
	if err := p.EnsureInitialized(); err != nil {
		return nil, err
	}
	if err := validateMessages(messages); err != nil {
		return nil, err
	}
	resolved, err := p.ValidateModel(model)
	if err != nil {
		return nil, err
	}

	req := transformRequest(messages, resolved, opts)

	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	stream, err := newStreamReader(ctx, p.Client, p.streamURL(resolved), req, headers)
	if err != nil {
		return nil, err
	}

	var onToken func(string)
	if opts != nil && opts.Stream != nil {
		onToken = opts.Stream.OnToken
	}

	chunks := make(chan providers.StreamChunk, 100) // Buffered channel
	go p.pumpStream(ctx, stream, chunks, onToken)

	return chunks, nil
}

// pumpStream drains the SSE reader into the chunk channel until the
// stream finishes, fails, or the context is cancelled.
func (p *Provider) pumpStream(ctx context.Context, stream *streamReader, chunks chan<- providers.StreamChunk, onToken func(string)) {
	defer close(chunks)
	defer stream.Close()

	delivered := false
	for {
		chunk, err := stream.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if !delivered {
					chunks <- providers.StreamChunk{Err: &providers.NoResponseBodyError{Provider: p.GetName()}}
				}
				return
			}
			if ctx.Err() != nil {
				// Cancellation ends the stream without an error chunk
				return
			}
			chunks <- providers.StreamChunk{Err: err}
			return
		}

		if chunk.Delta != "" && onToken != nil {
			onToken(chunk.Delta)
		}

		select {
		case chunks <- chunk:
			delivered = true
		case <-ctx.Done():
			return
		}

		if chunk.FinishReason != "" {
			return
		}
	}
}

// ChatVision sends an image with a prompt and returns the analysis.
// Implements the providers.VisionProvider interface.
func (p *Provider) ChatVision(ctx context.Context, image []byte, prompt string, model string) (string, error) {
	if err := p.EnsureInitialized(); err != nil {
		return "", err
	}
	if len(image) == 0 {
		return "", &providers.ValidationError{
			Field:   "image",
			Message: "image data is required",
		}
	}
	resolved, err := p.ValidateModel(model)
	if err != nil {
		return "", err
	}

	req := &GeminiRequest{
		Contents: visionContents(image, prompt),
		GenerationConfig: &GenerationConfig{
			Temperature: providers.EffectiveTemperature(resolved, 0),
		},
	}

	var resp GeminiResponse
	if err := p.DoJSONRequest(ctx, "POST", p.generateURL(resolved), req, &resp, p.headers()); err != nil {
		return "", err
	}

	content, err := extractContent(&resp)
	if err != nil {
		return "", &providers.ParseError{
			Provider: p.GetName(),
			Cause:    err,
		}
	}

	return content, nil
}

// generateURL returns the generateContent endpoint for a model. The
// model id is part of the path, not the request body.
func (p *Provider) generateURL(model string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.GetConfig().BaseURL, model)
}

// streamURL returns the streaming endpoint for a model.
func (p *Provider) streamURL(model string) string {
	return fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", p.GetConfig().BaseURL, model)
}

// headers returns the per-request headers. Google authenticates with
// x-goog-api-key rather than a Bearer token.
func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-goog-api-key": p.GetConfig().APIKey,
		"Content-Type":   "application/json",
	}
}

// validateMessages rejects an empty conversation before dispatch.
func validateMessages(messages []providers.Message) error {
	if len(messages) == 0 {
		return &providers.ValidationError{
			Field:   "messages",
			Message: "at least one message is required",
		}
	}
	return nil
}
