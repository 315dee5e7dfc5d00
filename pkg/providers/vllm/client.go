// Package vllm implements the provider adapter for a local vLLM server,
// which exposes an OpenAI-compatible API. The adapter embeds the OpenAI
// implementation and layers on the local runtime behavior: no real API
// key, a liveness probe, and a catalog discovered from the server.
package vllm

import (
	"context"
	"fmt"

	"switchyard-ai/switchyard/pkg/providers"
	"switchyard-ai/switchyard/pkg/providers/openai"
)

const (
	// DefaultBaseURL is vLLM's default serve address.
	DefaultBaseURL = "http://localhost:8000/v1"

	// placeholderKey satisfies the Bearer header; vLLM's own client
	// examples pass this exact value when auth is disabled.
	placeholderKey = "EMPTY"

	// defaultLocalRetries is applied when the config does not set a
	// retry count.
	defaultLocalRetries = 3
)

// fallbackModels stands in until the live catalog can be fetched. vLLM
// serves one model per process under its full checkpoint id.
var fallbackModels = []string{"meta-llama/Llama-3.1-8B-Instruct"}

// Provider is the vLLM adapter.
type Provider struct {
	*openai.Provider
}

// NewProvider creates an uninitialized vLLM adapter.
func NewProvider() *Provider {
	return &Provider{Provider: openai.NewCompatible("vllm", providers.TypeVLLM)}
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
