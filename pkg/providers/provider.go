package providers

import "context"

// Provider is the uniform capability interface every vendor adapter
// implements. The uniformity is the core design value: the router, manager,
// and facade never see a vendor-specific surface.
//
// No network call may be issued before Initialize succeeds; every other
// method checks that gate and fails with *NotInitializedError otherwise.
//
// Example usage:
//
//	p := openai.NewProvider()
//	if err := p.Initialize(ctx, apiKey, nil); err != nil {
//	    return err
//	}
//
//	content, err := p.Chat(ctx, []providers.Message{
//	    {Role: providers.RoleUser, Content: "Hello!"},
//	}, "", nil)
type Provider interface {
	// Initialize constructs the underlying HTTP client and stores the
	// vendor configuration. Local adapters additionally probe the runtime
	// and, when it is reachable, fetch the live model catalog. Called
	// exactly once per adapter instance.
	Initialize(ctx context.Context, apiKey string, cfg *ProviderConfig) error

	// GetName returns the adapter's configured name (e.g., "openai").
	GetName() string

	// GetType returns the vendor family.
	GetType() ProviderType

	// GetModels returns the model catalog, ordered with the default model
	// first. Local adapters re-fetch the live catalog; cloud adapters
	// return their static list.
	GetModels(ctx context.Context) ([]string, error)

	// GetDefaultModel returns the first catalog entry, or *NoModelsError
	// when the catalog is empty.
	GetDefaultModel() (string, error)

	// ValidateModel resolves an optional model id against the catalog.
	// An empty id resolves to the default model; an id absent from the
	// catalog fails with *UnsupportedModelError.
	ValidateModel(model string) (string, error)

	// Chat sends a conversation and returns the completion text.
	// An empty model means the adapter's default model.
	Chat(ctx context.Context, messages []Message, model string, opts *ChatOptions) (string, error)

	// ChatStream sends a conversation and returns a channel of incremental
	// chunks. The channel is finite and not restartable; the caller must
	// drain it. A mid-stream failure arrives as a final chunk with Err
	// set. Cancelling ctx stops the stream between chunks without an
	// error chunk.
	ChatStream(ctx context.Context, messages []Message, model string, opts *ChatOptions) (<-chan StreamChunk, error)

	// Close releases idle connections. Adapters hold no persistent
	// connections, so this is cheap and idempotent.
	Close() error
}

// ConnectionValidator is implemented by adapters that can cheaply check
// reachability, i.e. the local runtimes. Cloud adapters deliberately do not
// implement it: a probe against a cloud vendor is itself a billed call, so
// they are assumed reachable once constructed.
type ConnectionValidator interface {
	// ValidateConnection probes a lightweight endpoint with a short
	// timeout. Any failure reports false; it never returns an error.
	ValidateConnection(ctx context.Context) bool
}

// VisionProvider is implemented by adapters whose vendor accepts image
// input alongside a text prompt.
type VisionProvider interface {
	// ChatVision sends one image plus a prompt and returns the completion.
	ChatVision(ctx context.Context, image []byte, prompt string, model string) (string, error)
}

// ModelManager is implemented by adapters whose runtime can install and
// remove models (Ollama). Pull progress is reported through the callback
// as newline-delimited status updates arrive.
type ModelManager interface {
	// PullModel downloads a model into the runtime. Long-running: the
	// implementation allows up to ten minutes before timing out.
	PullModel(ctx context.Context, model string, progress func(PullProgress)) error

	// DeleteModel removes a model from the runtime.
	DeleteModel(ctx context.Context, model string) error
}

// PullProgress is one status update of a model pull.
type PullProgress struct {
	// Status is the vendor's phase description ("pulling manifest", ...)
	Status string `json:"status"`

	// Total is the byte size of the current layer, when known
	Total int64 `json:"total,omitempty"`

	// Completed is the bytes downloaded of the current layer
	Completed int64 `json:"completed,omitempty"`
}
