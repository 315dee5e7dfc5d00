package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("routing.priority_mode", "unknown mode")

	expected := "configuration error in routing.priority_mode: unknown mode"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if err.Field != "routing.priority_mode" {
		t.Errorf("Field = %q", err.Field)
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("no providers available")
	err := NewCommandError("chat", cause)

	expected := "command chat failed: no providers available"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() does not reach the wrapped cause")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want the cause", err.Unwrap())
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitFailure},
		{"config error", NewConfigError("server.listen_address", "bad port"), ExitConfig},
		{"wrapped config error", fmt.Errorf("startup: %w", NewConfigError("f", "m")), ExitConfig},
		{"command error", NewCommandError("chat", errors.New("boom")), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}
