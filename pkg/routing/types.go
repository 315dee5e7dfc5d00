package routing

import (
	"fmt"
	"time"

	"switchyard-ai/switchyard/pkg/providers"
)

// PriorityMode names a provider priority ordering. The mode reorders
// which providers are tried first when the router selects one; it
// never changes which providers are available.
type PriorityMode string

const (
	// PriorityAuto balances capability and latency: cloud vendors
	// first, local runtimes as fallback.
	PriorityAuto PriorityMode = "auto"

	// PriorityPrivacyFirst prefers local runtimes so conversation
	// content stays on the machine.
	PriorityPrivacyFirst PriorityMode = "privacy-first"

	// PriorityPerformance prefers the lowest-latency vendors.
	PriorityPerformance PriorityMode = "performance"

	// PriorityCostEffective prefers free local runtimes, then the
	// cheapest cloud tiers.
	PriorityCostEffective PriorityMode = "cost-effective"
)

// PriorityModes lists the valid modes in documentation order.
func PriorityModes() []PriorityMode {
	return []PriorityMode{
		PriorityAuto,
		PriorityPrivacyFirst,
		PriorityPerformance,
		PriorityCostEffective,
	}
}

// ParsePriorityMode validates a mode string. Empty means auto.
func ParsePriorityMode(s string) (PriorityMode, error) {
	if s == "" {
		return PriorityAuto, nil
	}
	for _, mode := range PriorityModes() {
		if PriorityMode(s) == mode {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown priority mode %q (valid: auto, privacy-first, performance, cost-effective)", s)
}

// TaskType categorizes what a conversation is asking for. The detector
// assigns one from message content; callers can pin one explicitly.
type TaskType string

const (
	TaskChat          TaskType = "chat"
	TaskCoding        TaskType = "coding"
	TaskReasoning     TaskType = "reasoning"
	TaskVision        TaskType = "vision"
	TaskQuick         TaskType = "quick_tasks"
	TaskCostEffective TaskType = "cost_effective"
	TaskPrivacy       TaskType = "privacy"
	TaskMultilingual  TaskType = "multilingual"
	TaskCurrentEvents TaskType = "current_events"
)

// TaskTypes lists every task type the detector can produce, in
// detection precedence order, with the chat fallback last.
func TaskTypes() []TaskType {
	return []TaskType{
		TaskCoding,
		TaskReasoning,
		TaskVision,
		TaskQuick,
		TaskCostEffective,
		TaskPrivacy,
		TaskMultilingual,
		TaskCurrentEvents,
		TaskChat,
	}
}

// ParseTaskType validates a task type string. Empty means automatic
// detection and returns "".
func ParseTaskType(s string) (TaskType, error) {
	if s == "" {
		return "", nil
	}
	for _, task := range TaskTypes() {
		if TaskType(s) == task {
			return task, nil
		}
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

// RouteRequest is one chat to be routed to a provider.
type RouteRequest struct {
	// Messages is the conversation, oldest first. Must be non-empty.
	Messages []providers.Message

	// TaskType pins the task category. Empty means detect from the
	// message content.
	TaskType TaskType

	// Provider pins a specific provider by name, bypassing selection.
	// The provider must be available.
	Provider string

	// Model pins a specific model id. Empty means the task
	// recommendation, falling back to the provider default.
	Model string

	// Options carries sampling overrides passed through to the
	// adapter.
	Options *providers.ChatOptions

	// Priority selects the provider ordering. Empty means auto.
	Priority PriorityMode
}

// RouteResponse is a completed routed chat.
type RouteResponse struct {
	// Content is the assistant completion text.
	Content string `json:"content"`

	// Model is the model id that served the request, when known.
	Model string `json:"model"`

	// Provider is the provider that served the request.
	Provider string `json:"provider"`

	// TaskType is the category the request was routed as.
	TaskType TaskType `json:"task_type"`

	// RequestID is the unique id assigned to this routing pass.
	RequestID string `json:"request_id"`

	// Duration is the wall time of the provider dispatch.
	Duration time.Duration `json:"duration"`
}

// RoutingDecision records which provider and model a routing pass
// picked. Streaming callers receive it alongside the chunk channel,
// and the stats tracker keeps the most recent one.
type RoutingDecision struct {
	// Provider is the selected provider name.
	Provider string `json:"provider"`

	// Model is the resolved model id ("" when the adapter default was
	// dispatched and never pinned).
	Model string `json:"model"`

	// TaskType is the detected or pinned task category.
	TaskType TaskType `json:"task_type"`

	// RequestID is the unique id assigned to this routing pass.
	RequestID string `json:"request_id"`
}
