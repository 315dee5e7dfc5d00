package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"switchyard-ai/switchyard/pkg/providers"
)

// DefaultBaseURL is the OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// defaultModels is the static catalog, default model first. Cloud catalogs
// are pinned rather than fetched: GET /models returns dozens of entries
// that are not chat models, and the listing call costs quota.
var defaultModels = []string{
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4-turbo",
	"o1",
	"o1-mini",
	"o3-mini",
	"gpt-3.5-turbo",
}

// Provider is the OpenAI adapter. It also serves as the base for every
// OpenAI-compatible vendor (Groq, LM Studio, vLLM), which embed it and
// override identity, catalog, and initialization.
type Provider struct {
	*providers.Client
}

// NewProvider creates an uninitialized OpenAI adapter.
func NewProvider() *Provider {
	return &Provider{Client: providers.NewClient("openai", providers.TypeOpenAI)}
}

// NewCompatible creates an uninitialized adapter for an OpenAI-compatible
// endpoint under a different identity. Used by the Groq, LM Studio, and
// vLLM adapters.
func NewCompatible(name string, typ providers.ProviderType) *Provider {
	return &Provider{Client: providers.NewClient(name, typ)}
}

// Initialize configures the adapter and opens the gate. The API key is
// required; BaseURL defaults to the OpenAI endpoint.
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
	if len(p.Models()) == 0 {
		p.SetModels(defaultModels)
	}

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

	req := transformRequest(messages, resolved, opts, false)

	var resp OpenAIResponse
	if err := p.DoJSONRequest(ctx, "POST", p.chatURL(), req, &resp, p.headers()); err != nil {
		return "", err
	}

	content, err := extractContent(&resp)
	if err != nil {
		return "", &providers.ParseError{
			Provider: p.GetName(),
			Cause:    err,
		}
	}

	slog.Debug("chat completion succeeded",
		"provider", p.GetName(),
		"model", resolved,
		"tokens", resp.Usage.TotalTokens,
	)

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

	req := transformRequest(messages, resolved, opts, true)

	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	stream, err := newStreamReader(ctx, p.Client, p.chatURL(), req, headers)
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
				// A stream that ended before delivering anything had no
				// usable body.
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

// ChatVision sends one image plus a prompt and returns the completion.
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

	req := &OpenAIRequest{
		Model:       resolved,
		Messages:    visionMessages(image, prompt),
		Temperature: providers.EffectiveTemperature(resolved, 0),
		N:           1,
	}

	var resp OpenAIResponse
	if err := p.DoJSONRequest(ctx, "POST", p.chatURL(), req, &resp, p.headers()); err != nil {
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

// FetchModels queries GET /models for the live catalog. The OpenAI adapter
// itself keeps its static catalog; the local runtime adapters call this to
// discover what the runtime actually serves.
func (p *Provider) FetchModels(ctx context.Context) ([]string, error) {
	if err := p.EnsureInitialized(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models", p.GetConfig().BaseURL)

	var resp OpenAIModelsResponse
	if err := p.DoJSONRequest(ctx, "GET", url, nil, &resp, p.headers()); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		models = append(models, m.ID)
	}
	return models, nil
}

// chatURL returns the chat completions endpoint for the configured base.
func (p *Provider) chatURL() string {
	return fmt.Sprintf("%s/chat/completions", p.GetConfig().BaseURL)
}

// headers returns the per-request headers. The Authorization header is
// omitted when no key is configured (local runtimes).
func (p *Provider) headers() map[string]string {
	h := map[string]string{
		"Content-Type": "application/json",
	}
	if key := p.GetConfig().APIKey; key != "" {
		h["Authorization"] = "Bearer " + key
	}
	return h
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
