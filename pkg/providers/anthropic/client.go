package anthropic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"switchyard-ai/switchyard/pkg/providers"
)

const (
	// DefaultBaseURL is the Anthropic API endpoint.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultAnthropicVersion is the API version to use.
	DefaultAnthropicVersion = "2023-06-01"
)

// defaultModels is the static catalog, default model first.
var defaultModels = []string{
	"claude-3-5-sonnet-20241022",
	"claude-3-5-haiku-20241022",
	"claude-3-opus-20240229",
	"claude-3-haiku-20240307",
}

// Provider is the Anthropic adapter for the Messages API.
type Provider struct {
	*providers.Client
}

// NewProvider creates an uninitialized Anthropic adapter.
func NewProvider() *Provider {
	return &Provider{Client: providers.NewClient("anthropic", providers.TypeAnthropic)}
}

// Initialize configures the adapter and opens the gate. The API key is
// required; BaseURL defaults to the Anthropic endpoint.
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

	req, err := transformRequest(messages, resolved, opts, false)
	if err != nil {
		return "", err
	}

	var resp AnthropicResponse
	if err := p.DoJSONRequest(ctx, "POST", p.messagesURL(), req, &resp, p.headers()); err != nil {
		return "", err
	}

	slog.Debug("chat completion succeeded",
		"provider", p.GetName(),
		"model", resolved,
		"tokens", resp.Usage.InputTokens+resp.Usage.OutputTokens,
	)

	return extractContent(&resp), nil
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

	req, err := transformRequest(messages, resolved, opts, true)
	if err != nil {
		return nil, err
	}

	headers := p.headers()
	headers["Accept"] = "text/event-stream"

	stream, err := newStreamReader(ctx, p.Client, p.messagesURL(), req, headers)
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

// messagesURL returns the Messages API endpoint for the configured base.
func (p *Provider) messagesURL() string {
	return fmt.Sprintf("%s/v1/messages", p.GetConfig().BaseURL)
}

// headers returns the per-request headers. Anthropic authenticates with
// x-api-key rather than a Bearer token.
func (p *Provider) headers() map[string]string {
	return map[string]string{
		"x-api-key":         p.GetConfig().APIKey,
		"anthropic-version": DefaultAnthropicVersion,
		"Content-Type":      "application/json",
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
