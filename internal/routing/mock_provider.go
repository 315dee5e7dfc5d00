// Package routing provides in-memory Provider doubles for exercising
// the manager, router, and health monitor without any network.
package routing

import (
	"context"
	"sync"
	"time"

	"switchyard-ai/switchyard/pkg/providers"
)

// ChatCall records one Chat invocation for assertions.
type ChatCall struct {
	Messages []providers.Message
	Model    string
	Options  *providers.ChatOptions
}

// MockProvider is a configurable Provider double shaped like a cloud
// adapter: it carries no reachability probe, so the manager counts it
// available unconditionally. Use MockLocalProvider for probe behavior
// and MockVisionProvider for image support.
//
// The zero value is not usable; construct via NewMockProvider.
type MockProvider struct {
	mu sync.Mutex

	name   string
	typ    providers.ProviderType
	models []string

	reply    string
	chatErr  error
	delay    time.Duration
	chatFunc func(ctx context.Context, messages []providers.Message, model string, opts *providers.ChatOptions) (string, error)

	modelsErr error

	streamChunks []string
	streamErr    error

	calls       []ChatCall
	streamCalls []ChatCall
	initialized bool
	closed      bool
}

// NewMockProvider creates a mock with a two-model catalog and a canned
// reply. The type defaults to the name, so canonical names ("ollama",
// "openai", ...) get the matching vendor family.
func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		name:   name,
		typ:    providers.ProviderType(name),
		models: []string{name + "-default", name + "-large"},
		reply:  "mock response from " + name,
	}
}

// SetModels replaces the model catalog.
func (m *MockProvider) SetModels(models []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = models
}

// SetModelsError makes GetModels fail, for catalog-skip paths.
func (m *MockProvider) SetModelsError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelsErr = err
}

// SetReply sets the canned Chat completion.
func (m *MockProvider) SetReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = reply
}

// SetChatError makes Chat fail with err.
func (m *MockProvider) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatErr = err
}

// SetChatFunc installs a hook that fully controls Chat behavior.
// It takes precedence over SetReply and SetChatError.
func (m *MockProvider) SetChatFunc(fn func(ctx context.Context, messages []providers.Message, model string, opts *providers.ChatOptions) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatFunc = fn
}

// SetDelay makes Chat (and the local variant's probe) take at least d.
func (m *MockProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetStream sets the chunks ChatStream emits. When err is non-nil it
// arrives as a final error chunk after the content chunks.
func (m *MockProvider) SetStream(chunks []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamChunks = chunks
	m.streamErr = err
}

// ChatCalls returns a copy of the recorded Chat invocations.
func (m *MockProvider) ChatCalls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// StreamCalls returns a copy of the recorded ChatStream invocations.
func (m *MockProvider) StreamCalls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChatCall, len(m.streamCalls))
	copy(out, m.streamCalls)
	return out
}

// Closed reports whether Close was called.
func (m *MockProvider) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Initialize marks the mock initialized. It never fails.
func (m *MockProvider) Initialize(ctx context.Context, apiKey string, cfg *providers.ProviderConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	return nil
}

// GetName returns the mock's name.
func (m *MockProvider) GetName() string {
	return m.name
}

// GetType returns the mock's vendor family.
func (m *MockProvider) GetType() providers.ProviderType {
	return m.typ
}

// GetModels returns the configured catalog.
func (m *MockProvider) GetModels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.modelsErr != nil {
		return nil, m.modelsErr
	}
	out := make([]string, len(m.models))
	copy(out, m.models)
	return out, nil
}

// GetDefaultModel returns the first catalog entry.
func (m *MockProvider) GetDefaultModel() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.models) == 0 {
		return "", &providers.NoModelsError{Provider: m.name}
	}
	return m.models[0], nil
}

// ValidateModel resolves a model id against the catalog.
func (m *MockProvider) ValidateModel(model string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if model == "" {
		if len(m.models) == 0 {
			return "", &providers.NoModelsError{Provider: m.name}
		}
		return m.models[0], nil
	}
	for _, known := range m.models {
		if known == model {
			return model, nil
		}
	}
	return "", &providers.UnsupportedModelError{Provider: m.name, Model: model}
}

// Chat records the call and returns the configured reply or error,
// honoring the configured delay and context cancellation.
func (m *MockProvider) Chat(ctx context.Context, messages []providers.Message, model string, opts *providers.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ChatCall{Messages: messages, Model: model, Options: opts})
	fn := m.chatFunc
	reply := m.reply
	chatErr := m.chatErr
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if fn != nil {
		return fn(ctx, messages, model, opts)
	}
	if chatErr != nil {
		return "", chatErr
	}
	return reply, nil
}

// ChatStream records the call and emits the configured chunks on a
// buffered channel, checking cancellation between sends. When
// opts.Stream.OnToken is set each content chunk is also delivered
// through the callback, matching the real adapters.
func (m *MockProvider) ChatStream(ctx context.Context, messages []providers.Message, model string, opts *providers.ChatOptions) (<-chan providers.StreamChunk, error) {
	m.mu.Lock()
	m.streamCalls = append(m.streamCalls, ChatCall{Messages: messages, Model: model, Options: opts})
	chunks := make([]string, len(m.streamChunks))
	copy(chunks, m.streamChunks)
	streamErr := m.streamErr
	chatErr := m.chatErr
	m.mu.Unlock()

	if chatErr != nil {
		return nil, chatErr
	}

	var onToken func(token string)
	if opts != nil && opts.Stream != nil && opts.Stream.OnToken != nil {
		onToken = opts.Stream.OnToken
	}

	out := make(chan providers.StreamChunk, 100)
	go func() {
		defer close(out)
		for i, content := range chunks {
			select {
			case <-ctx.Done():
				return
			default:
			}

			if onToken != nil {
				onToken(content)
			}

			chunk := providers.StreamChunk{Delta: content}
			if streamErr == nil && i == len(chunks)-1 {
				chunk.FinishReason = providers.FinishReasonStop
			}

			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}

			// Small pacing gap so cancellation tests can interleave
			time.Sleep(5 * time.Millisecond)
		}
		if streamErr != nil {
			out <- providers.StreamChunk{Err: streamErr}
		}
	}()

	return out, nil
}

// Close marks the mock closed. It never fails.
func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// MockLocalProvider is a MockProvider that additionally carries a
// reachability probe, shaped like the local runtime adapters.
type MockLocalProvider struct {
	*MockProvider

	probeMu    sync.Mutex
	reachable  bool
	probePanic string
	probeCalls int
}

// NewMockLocalProvider creates a local-shaped mock that starts
// reachable.
func NewMockLocalProvider(name string) *MockLocalProvider {
	return &MockLocalProvider{
		MockProvider: NewMockProvider(name),
		reachable:    true,
	}
}

// SetReachable controls the ValidateConnection result.
func (m *MockLocalProvider) SetReachable(reachable bool) {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	m.reachable = reachable
}

// SetProbePanic makes every following ValidateConnection call panic
// with the given message. Empty restores normal probing.
func (m *MockLocalProvider) SetProbePanic(msg string) {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	m.probePanic = msg
}

// ProbeCalls returns how many times ValidateConnection was invoked.
func (m *MockLocalProvider) ProbeCalls() int {
	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	return m.probeCalls
}

// ValidateConnection reports the configured reachability, honoring the
// configured delay so latency classification can be exercised.
func (m *MockLocalProvider) ValidateConnection(ctx context.Context) bool {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	m.probeMu.Lock()
	m.probeCalls++
	panicMsg := m.probePanic
	m.probeMu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false
		}
	}

	m.probeMu.Lock()
	defer m.probeMu.Unlock()
	return m.reachable
}

// MockVisionProvider is a MockProvider that additionally accepts image
// input.
type MockVisionProvider struct {
	*MockProvider

	visionMu    sync.Mutex
	visionReply string
	visionErr   error
	visionCalls int
}

// NewMockVisionProvider creates a vision-capable mock.
func NewMockVisionProvider(name string) *MockVisionProvider {
	return &MockVisionProvider{
		MockProvider: NewMockProvider(name),
		visionReply:  "mock vision response from " + name,
	}
}

// SetVisionReply sets the canned ChatVision completion.
func (m *MockVisionProvider) SetVisionReply(reply string) {
	m.visionMu.Lock()
	defer m.visionMu.Unlock()
	m.visionReply = reply
}

// SetVisionError makes ChatVision fail with err.
func (m *MockVisionProvider) SetVisionError(err error) {
	m.visionMu.Lock()
	defer m.visionMu.Unlock()
	m.visionErr = err
}

// VisionCalls returns how many times ChatVision was invoked.
func (m *MockVisionProvider) VisionCalls() int {
	m.visionMu.Lock()
	defer m.visionMu.Unlock()
	return m.visionCalls
}

// ChatVision returns the configured vision reply or error.
func (m *MockVisionProvider) ChatVision(ctx context.Context, image []byte, prompt string, model string) (string, error) {
	m.visionMu.Lock()
	defer m.visionMu.Unlock()
	m.visionCalls++
	if m.visionErr != nil {
		return "", m.visionErr
	}
	return m.visionReply, nil
}
