// Package groq implements the Groq provider adapter. Groq serves an
// OpenAI-compatible API from its own endpoint, so the adapter embeds
// the OpenAI implementation and swaps identity, endpoint, and catalog.
package groq

import (
	"context"

	"switchyard-ai/switchyard/pkg/providers"
	"switchyard-ai/switchyard/pkg/providers/openai"
)

// DefaultBaseURL is the Groq OpenAI-compatible API endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// defaultModels is the static catalog, default model first.
var defaultModels = []string{
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"mixtral-8x7b-32768",
	"gemma2-9b-it",
}

// Provider is the Groq adapter.
type Provider struct {
	*openai.Provider
}

// NewProvider creates an uninitialized Groq adapter.
func NewProvider() *Provider {
	return &Provider{Provider: openai.NewCompatible("groq", providers.TypeGroq)}
}

// Initialize configures the adapter and opens the gate. The API key is
// required; BaseURL defaults to the Groq endpoint.
func (p *Provider) Initialize(ctx context.Context, apiKey string, cfg *providers.ProviderConfig) error {
	merged := providers.ProviderConfig{}
	if cfg != nil {
		merged = *cfg
	}
	if merged.BaseURL == "" {
		merged.BaseURL = DefaultBaseURL
	}

	if err := p.Provider.Initialize(ctx, apiKey, &merged); err != nil {
		return err
	}
	p.SetModels(defaultModels)

	return nil
}
