// Package lmstudio implements the provider adapter for a local LM Studio
// server, which exposes an OpenAI-compatible API on localhost. The
// adapter embeds the OpenAI implementation and layers on the local
// runtime behavior: no real API key, a liveness probe, and a catalog
// discovered from the server rather than pinned.
package lmstudio

import (
	"context"
	"fmt"

	"switchyard-ai/switchyard/pkg/providers"
	"switchyard-ai/switchyard/pkg/providers/openai"
)

const (
	// DefaultBaseURL is LM Studio's default local server address.
	DefaultBaseURL = "http://localhost:1234/v1"

	// placeholderKey satisfies the Bearer header. LM Studio ignores the
	// value entirely.
	placeholderKey = "lm-studio"

	// defaultLocalRetries is applied when the config does not set a
	// retry count; local servers drop connections while loading models.
	defaultLocalRetries = 3
)

// fallbackModels stands in until the live catalog can be fetched. LM
// Studio reports whatever model the user loaded, under an arbitrary id.
var fallbackModels = []string{"local-model"}

// Provider is the LM Studio adapter.
type Provider struct {
	*openai.Provider
}

// NewProvider creates an uninitialized LM Studio adapter.
func NewProvider() *Provider {
	return &Provider{Provider: openai.NewCompatible("lmstudio", providers.TypeLMStudio)}
}

// Initialize configures the adapter and opens the gate. No API key is
// needed. When the server is reachable the live catalog replaces the
// fallback list.
func (p *Provider) Initialize(ctx context.Context, apiKey string, cfg *providers.ProviderConfig) error {
	merged := providers.ProviderConfig{}
	if cfg != nil {
		merged = *cfg
	}
	if merged.BaseURL == "" {
		merged.BaseURL = DefaultBaseURL
	}
	if merged.MaxRetries == 0 {
		merged.MaxRetries = defaultLocalRetries
	}
	if apiKey == "" && merged.APIKey == "" {
		apiKey = placeholderKey
	}

	if err := p.Provider.Initialize(ctx, apiKey, &merged); err != nil {
		return err
	}
	p.SetModels(fallbackModels)

	if p.ValidateConnection(ctx) {
		if models, err := p.FetchModels(ctx); err == nil && len(models) > 0 {
			p.SetModels(models)
		}
	}

	return nil
}

// GetModels returns the live catalog when the server answers, otherwise
// the last known catalog.
func (p *Provider) GetModels(ctx context.Context) ([]string, error) {
	if err := p.EnsureInitialized(); err != nil {
		return nil, err
	}

	if models, err := p.FetchModels(ctx); err == nil && len(models) > 0 {
		p.SetModels(models)
	}

	return p.Models(), nil
}

// ValidateConnection reports whether the server answers its model
// listing. Implements the providers.ConnectionValidator interface.
func (p *Provider) ValidateConnection(ctx context.Context) bool {
	return p.ProbeEndpoint(ctx, fmt.Sprintf("%s/models", p.GetConfig().BaseURL), nil)
}
