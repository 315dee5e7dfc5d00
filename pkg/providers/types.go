package providers

import (
	"strings"
	"time"
)

// Message represents a single turn in a conversation.
// It is provider-agnostic and is transformed to vendor-specific shapes by
// each adapter. Adapters for vendors without a native system role extract
// the system message into a side channel (a dedicated field or a synthetic
// priming turn).
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// StreamOptions controls streaming delivery.
type StreamOptions struct {
	// OnToken, when set, is invoked for every delivered content chunk in
	// addition to the chunk arriving on the stream channel. The CLI either
	// iterates the channel or consumes via callback depending on call site.
	OnToken func(token string)
}

// ChatOptions is the per-call configuration bag. All fields are overrides;
// zero values fall back to adapter defaults.
type ChatOptions struct {
	// Temperature controls randomness. Zero means DefaultTemperature.
	// Reasoning-restricted models always send 1.0 regardless of this value.
	Temperature float64

	// MaxTokens caps the generated completion length (0 = vendor default).
	MaxTokens int

	// TopP controls nucleus sampling (0 = vendor default).
	TopP float64

	// StopSequences halt generation when emitted.
	StopSequences []string

	// Stream holds streaming-specific options for ChatStream calls.
	Stream *StreamOptions
}

// DefaultTemperature is applied when the caller does not set one.
const DefaultTemperature = 0.7

// CodeTemperature is forced for code generation and review calls.
const CodeTemperature = 0.2

// StreamChunk is a single increment of a streaming chat response.
// Chunks arrive in transport order. A mid-stream failure is delivered as a
// final chunk with Err set; a cleanly finished stream closes the channel
// after a chunk carrying FinishReason.
type StreamChunk struct {
	// Delta is the incremental content in this chunk
	Delta string

	// FinishReason is set on the final chunk of a clean stream
	FinishReason string

	// Err is set when the stream fails; no further chunks follow
	Err error
}

// Finish reason constants
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)

// ModelInfo describes one model of one provider, as aggregated by the
// manager for the models listing.
type ModelInfo struct {
	// ID is the globally unique listing id ("<provider>-<model>")
	ID string `json:"id"`

	// Name is the bare model identifier as the vendor knows it
	Name string `json:"name"`

	// Provider is the owning provider name
	Provider string `json:"provider"`

	// Description is a short human-readable summary
	Description string `json:"description,omitempty"`

	// Capabilities lists coarse abilities (chat, code, vision, ...)
	Capabilities []string `json:"capabilities,omitempty"`

	// Available reports whether the provider currently serves this model
	Available bool `json:"available"`
}

// ReviewIssue is a single finding from a code review.
type ReviewIssue struct {
	// Severity is one of info, warning, error
	Severity string `json:"severity"`

	// Message describes the issue
	Message string `json:"message"`

	// Line is the 1-based source line, when the model provides one
	Line int `json:"line,omitempty"`
}

// ReviewResult is the structured outcome of a code review call.
// When the model does not return valid JSON the result degrades to the raw
// text in Summary with empty Issues and Improvements.
type ReviewResult struct {
	Issues       []ReviewIssue `json:"issues"`
	Summary      string        `json:"summary"`
	Improvements []string      `json:"improvements"`
}

// ProviderType identifies the vendor family of an adapter.
type ProviderType string

// Known provider types. The first four are cloud vendors, the rest are
// local inference runtimes.
const (
	TypeOpenAI    ProviderType = "openai"
	TypeAnthropic ProviderType = "anthropic"
	TypeGemini    ProviderType = "gemini"
	TypeGroq      ProviderType = "groq"
	TypeOllama    ProviderType = "ollama"
	TypeLMStudio  ProviderType = "lmstudio"
	TypeVLLM      ProviderType = "vllm"
)

// IsLocal reports whether the type is a localhost inference runtime.
// Local runtimes get startup probing, live catalog discovery, and
// adapter-level retry; cloud vendors do not.
func (t ProviderType) IsLocal() bool {
	switch t {
	case TypeOllama, TypeLMStudio, TypeVLLM:
		return true
	default:
		return false
	}
}

// ProviderConfig contains the configuration for a single adapter instance.
type ProviderConfig struct {
	// Name is the provider identifier (e.g., "openai", "ollama")
	Name string

	// Type is the vendor family
	Type ProviderType

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key (cloud vendors)
	APIKey string

	// Timeout bounds a single non-streaming request
	Timeout time.Duration

	// MaxRetries is the number of retry attempts for transient errors
	MaxRetries int

	// RetryDelay is the base delay for exponential retry backoff
	RetryDelay time.Duration

	// RateLimit caps outbound requests per minute (0 = unlimited)
	RateLimit int

	// MaxIdleConns is the connection pool size
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host connection pool size
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection stays pooled
	IdleConnTimeout time.Duration
}

// reasoningModelPrefixes match the OpenAI-style reasoning tier; these
// models reject any temperature other than 1.
var reasoningModelPrefixes = []string{"o1", "o3", "o4"}

// reasoningModelSubstrings match reasoning-tier models served by local
// runtimes and OpenAI-compatible hosts.
var reasoningModelSubstrings = []string{"deepseek-r1", "qwq"}

// IsReasoningModel reports whether the model id is reasoning-restricted.
func IsReasoningModel(model string) bool {
	m := strings.ToLower(model)
	for _, p := range reasoningModelPrefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	for _, s := range reasoningModelSubstrings {
		if strings.Contains(m, s) {
			return true
		}
	}
	return false
}

// EffectiveTemperature resolves the temperature an adapter must send
// upstream: reasoning-restricted models always get 1, an unset value gets
// the default, anything else passes through.
func EffectiveTemperature(model string, requested float64) float64 {
	if IsReasoningModel(model) {
		return 1
	}
	if requested == 0 {
		return DefaultTemperature
	}
	return requested
}
