package assistant

import (
	"errors"
	"time"

	"switchyard-ai/switchyard/pkg/routing"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("assistant closed")

// ErrHistoryDisabled is returned by HealthHistory when the history store
// is not enabled in the configuration.
var ErrHistoryDisabled = errors.New("health history is disabled")

// Reply is the result of a completed request.
type Reply struct {
	// Content is the completion text.
	Content string `json:"content"`

	// Model is the model id that served the request.
	Model string `json:"model"`

	// Provider is the provider that served the request.
	Provider string `json:"provider"`

	// TaskType is the detected or pinned task category.
	TaskType string `json:"task_type"`

	// RequestID is the unique id assigned to the routing pass.
	RequestID string `json:"request_id"`

	// Duration is the wall-clock time of the full pass, including any
	// retry.
	Duration time.Duration `json:"duration"`
}

// replyFrom flattens a routing response into the facade type.
func replyFrom(resp *routing.RouteResponse) *Reply {
	return &Reply{
		Content:   resp.Content,
		Model:     resp.Model,
		Provider:  resp.Provider,
		TaskType:  string(resp.TaskType),
		RequestID: resp.RequestID,
		Duration:  resp.Duration,
	}
}

// ChatOptions adjusts a single request. The zero value routes
// automatically under the session's priority mode.
type ChatOptions struct {
	// Provider forces a specific provider, bypassing selection.
	Provider string

	// Model forces a model id on the dispatched provider.
	Model string

	// TaskType pins the task category instead of detecting it
	// ("coding", "vision", "reasoning", ...).
	TaskType string

	// Priority overrides the session priority mode for this call
	// ("auto", "privacy-first", "performance", "cost-effective").
	Priority string

	// Temperature overrides the adapter default when greater than zero.
	Temperature float64

	// MaxTokens caps the completion length (0 = vendor default).
	MaxTokens int
}
