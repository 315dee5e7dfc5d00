package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"switchyard-ai/switchyard/pkg/providers"
)

const (
	// DefaultBaseURL is the Ollama daemon's default listen address.
	DefaultBaseURL = "http://localhost:11434"

	// pullTimeout bounds a model download. Pulls move gigabytes, so the
	// budget is far larger than a chat call's.
	pullTimeout = 10 * time.Minute

	// defaultLocalRetries is applied when the config does not set a
	// retry count. Local runtimes drop connections while loading models,
	// so unlike the cloud adapters they retry by default.
	defaultLocalRetries = 3
)

// fallbackModels is used when the daemon is unreachable at startup so
// routing decisions still have a catalog to work with.
var fallbackModels = []string{
	"llama3.2",
	"mistral",
	"codellama",
}

// Provider is the Ollama adapter for the local daemon's native API.
type Provider struct {
	*providers.Client
}

// NewProvider creates an uninitialized Ollama adapter.
func NewProvider() *Provider {
	return &Provider{Client: providers.NewClient("ollama", providers.TypeOllama)}
}

// Initialize configures the adapter and opens the gate. No API key is
// needed. When the daemon is reachable the live catalog replaces the
// fallback list.
func (p *Provider) Initialize(ctx context.Context, apiKey string, cfg *providers.ProviderConfig) error {
	merged := providers.ProviderConfig{}
	if cfg != nil {
		merged = *cfg
	}
	merged.Name = p.GetName()
	merged.Type = p.GetType()
	if merged.BaseURL == "" {
		merged.BaseURL = DefaultBaseURL
	}
	if merged.MaxRetries == 0 {
		merged.MaxRetries = defaultLocalRetries
	}

	if err := p.Init(merged); err != nil {
		return err
	}

	if p.ValidateConnection(ctx) {
		if models, err := p.fetchTags(ctx); err == nil && len(models) > 0 {
			p.SetModels(models)
		}
	}
	if len(p.Models()) == 0 {
		p.SetModels(fallbackModels)
	}

	slog.Info("provider initialized",
		"provider", p.GetName(),
		"base_url", merged.BaseURL,
		"models", len(p.Models()),
	)

	return nil
}

// GetModels returns the live catalog when the daemon answers, otherwise
// the last known catalog. Local catalogs drift as models are pulled and
// removed, so every call re-queries.
func (p *Provider) GetModels(ctx context.Context) ([]string, error) {
	if err := p.EnsureInitialized(); err != nil {
		return nil, err
	}

	if models, err := p.fetchTags(ctx); err == nil && len(models) > 0 {
		p.SetModels(models)
	}

	return p.Models(), nil
}

// ValidateModel resolves a model name against the catalog. Ollama tags
// often carry an explicit ":latest" suffix that users omit, so a miss is
// retried with the suffix normalized on both sides.
func (p *Provider) ValidateModel(model string) (string, error) {
	resolved, err := p.Client.ValidateModel(model)
	if err == nil {
		return resolved, nil
	}

	var unsupported *providers.UnsupportedModelError
	if !errors.As(err, &unsupported) {
		return "", err
	}

	want := strings.TrimSuffix(model, ":latest")
	for _, m := range p.Models() {
		if strings.TrimSuffix(m, ":latest") == want {
			return m, nil
		}
	}

	return "", err
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

	var resp OllamaChatResponse
	if err := p.DoJSONRequest(ctx, "POST", p.apiURL("/api/chat"), req, &resp, nil); err != nil {
		return "", err
	}

	slog.Debug("chat completion succeeded",
		"provider", p.GetName(),
		"model", resolved,
		"tokens", resp.PromptEvalCount+resp.EvalCount,
	)

	return resp.Message.Content, nil
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

	stream, err := newStreamReader(ctx, p.Client, p.apiURL("/api/chat"), req)
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

// pumpStream drains the NDJSON reader into the chunk channel until the
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

// ValidateConnection reports whether the daemon answers its version
// endpoint. Implements the providers.ConnectionValidator interface.
func (p *Provider) ValidateConnection(ctx context.Context) bool {
	return p.ProbeEndpoint(ctx, p.apiURL("/api/version"), nil)
}

// Version returns the daemon's reported version.
func (p *Provider) Version(ctx context.Context) (string, error) {
	if err := p.EnsureInitialized(); err != nil {
		return "", err
	}

	var resp OllamaVersionResponse
	if err := p.DoJSONRequest(ctx, "GET", p.apiURL("/api/version"), nil, &resp, nil); err != nil {
		return "", err
	}

	return resp.Version, nil
}

// PullModel downloads a model into the daemon, reporting NDJSON progress
// lines through the callback. Implements providers.ModelManager.
func (p *Provider) PullModel(ctx context.Context, model string, progress func(providers.PullProgress)) error {
	if err := p.EnsureInitialized(); err != nil {
		return err
	}
	if model == "" {
		return &providers.ValidationError{
			Field:   "model",
			Message: "model name is required",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, pullTimeout)
	defer cancel()

	bodyBytes, err := json.Marshal(&OllamaPullRequest{Model: model, Stream: true})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := p.DoRequest(ctx, "POST", p.apiURL("/api/pull"), bodyBytes, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event OllamaPullEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return &providers.ParseError{
				Provider:    p.GetName(),
				RawResponse: line,
				Cause:       fmt.Errorf("failed to parse pull status: %w", err),
			}
		}

		// Pull failures arrive in-band, not as an HTTP status
		if event.Error != "" {
			return fmt.Errorf("model pull failed: %s", event.Error)
		}

		if progress != nil {
			progress(providers.PullProgress{
				Status:    event.Status,
				Total:     event.Total,
				Completed: event.Completed,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return &providers.StreamError{
			Provider: p.GetName(),
			Message:  "failed to read pull status",
			Cause:    err,
		}
	}

	slog.Info("model pulled", "provider", p.GetName(), "model", model)
	p.refreshCatalog(ctx)

	return nil
}

// DeleteModel removes a model from the daemon.
// Implements providers.ModelManager.
func (p *Provider) DeleteModel(ctx context.Context, model string) error {
	if err := p.EnsureInitialized(); err != nil {
		return err
	}
	if model == "" {
		return &providers.ValidationError{
			Field:   "model",
			Message: "model name is required",
		}
	}

	bodyBytes, err := json.Marshal(&OllamaDeleteRequest{Model: model})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := p.DoRequest(ctx, "DELETE", p.apiURL("/api/delete"), bodyBytes, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}
	resp.Body.Close()

	slog.Info("model deleted", "provider", p.GetName(), "model", model)
	p.refreshCatalog(ctx)

	return nil
}

// fetchTags queries the installed-model listing. The ":latest" suffix is
// trimmed so catalog entries match how users name models; the daemon
// resolves the bare name to the same tag.
func (p *Provider) fetchTags(ctx context.Context) ([]string, error) {
	var resp OllamaTagsResponse
	if err := p.DoJSONRequest(ctx, "GET", p.apiURL("/api/tags"), nil, &resp, nil); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, strings.TrimSuffix(m.Name, ":latest"))
	}
	return models, nil
}

// refreshCatalog re-reads the installed models after a pull or delete.
func (p *Provider) refreshCatalog(ctx context.Context) {
	if models, err := p.fetchTags(ctx); err == nil && len(models) > 0 {
		p.SetModels(models)
	}
}

// apiURL joins a path onto the configured base URL.
func (p *Provider) apiURL(path string) string {
	return p.GetConfig().BaseURL + path
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
