package metrics

import (
	"context"
	"errors"
	"net"

	"switchyard-ai/switchyard/pkg/providers"
)

// ErrorLabel classifies an error into a low-cardinality label for the
// provider error counter. The set of labels is fixed: arbitrary error
// text must never become a label value.
func ErrorLabel(err error) string {
	if err == nil {
		return "none"
	}

	var (
		authErr       *providers.AuthError
		rateErr       *providers.RateLimitError
		timeoutErr    *providers.TimeoutError
		upstreamErr   *providers.UpstreamError
		parseErr      *providers.ParseError
		streamErr     *providers.StreamError
		notInitErr    *providers.NotInitializedError
		modelErr      *providers.UnsupportedModelError
		noModelsErr   *providers.NoModelsError
		emptyBodyErr  *providers.NoResponseBodyError
		validationErr *providers.ValidationError
		configErr     *providers.ConfigError
		netErr        net.Error
	)

	switch {
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limit"
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &upstreamErr):
		if upstreamErr.StatusCode >= 500 {
			return "server_error"
		}
		return "client_error"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &streamErr):
		return "stream"
	case errors.As(err, &notInitErr):
		return "not_initialized"
	case errors.As(err, &modelErr):
		return "unsupported_model"
	case errors.As(err, &noModelsErr):
		return "no_models"
	case errors.As(err, &emptyBodyErr):
		return "empty_response"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &configErr):
		return "config"
	case errors.As(err, &netErr):
		return "network"
	default:
		return "other"
	}
}
