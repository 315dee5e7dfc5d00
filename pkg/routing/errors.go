package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is checks. The structured error types
// below match them through Is so callers get both the category and the
// detail.
var (
	// ErrNoProviders indicates selection found no available provider.
	ErrNoProviders = errors.New("no providers available")

	// ErrProviderNotAvailable indicates an explicitly requested
	// provider is unknown or currently unavailable.
	ErrProviderNotAvailable = errors.New("provider not available")

	// ErrNoVisionProviders indicates every vision-capable provider was
	// tried and none could serve the request.
	ErrNoVisionProviders = errors.New("no vision-capable providers available")
)

// NoProvidersError reports a failed selection pass.
type NoProvidersError struct {
	// TaskType is the category that was being routed.
	TaskType TaskType

	// Priority is the ordering that was in effect.
	Priority PriorityMode
}

// Error implements the error interface.
func (e *NoProvidersError) Error() string {
	return fmt.Sprintf("no providers available for task %q (priority %s)", e.TaskType, e.Priority)
}

// Is matches ErrNoProviders.
func (e *NoProvidersError) Is(target error) bool {
	return target == ErrNoProviders
}

// ProviderNotAvailableError reports an explicit provider request that
// could not be honored.
type ProviderNotAvailableError struct {
	// Provider is the requested provider name.
	Provider string

	// Available lists the providers that could have served instead.
	Available []string
}

// Error implements the error interface.
func (e *ProviderNotAvailableError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("provider %q is not available (no providers are currently available)", e.Provider)
	}
	return fmt.Sprintf("provider %q is not available (available: %s)",
		e.Provider, strings.Join(e.Available, ", "))
}

// Is matches ErrProviderNotAvailable.
func (e *ProviderNotAvailableError) Is(target error) bool {
	return target == ErrProviderNotAvailable
}

// NoVisionProvidersError reports an exhausted vision fallback chain.
type NoVisionProvidersError struct {
	// Attempted lists the providers that were tried, in order.
	Attempted []string
}

// Error implements the error interface.
func (e *NoVisionProvidersError) Error() string {
	if len(e.Attempted) == 0 {
		return "no vision-capable providers available"
	}
	return fmt.Sprintf("no vision-capable providers available (tried: %s)",
		strings.Join(e.Attempted, ", "))
}

// Is matches ErrNoVisionProviders.
func (e *NoVisionProvidersError) Is(target error) bool {
	return target == ErrNoVisionProviders
}

// DispatchError wraps a provider failure with the routing context that
// produced it.
type DispatchError struct {
	// Provider is the provider that failed.
	Provider string

	// Model is the model id that was dispatched ("" for the adapter
	// default).
	Model string

	// RequestID is the routing pass id.
	RequestID string

	// Cause is the provider error.
	Cause error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("dispatch to %s (model %s) failed: %v", e.Provider, e.Model, e.Cause)
	}
	return fmt.Sprintf("dispatch to %s failed: %v", e.Provider, e.Cause)
}

// Unwrap returns the provider error for error chain support.
func (e *DispatchError) Unwrap() error {
	return e.Cause
}
