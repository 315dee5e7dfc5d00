package cli

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalContextNotInitiallyCancelled(t *testing.T) {
	ctx, stop := SignalContext(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Error("context cancelled before any signal")
	default:
	}
}

func TestSignalContextStopCancels(t *testing.T) {
	ctx, stop := SignalContext(context.Background())

	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled after stop")
	}
}

func TestSignalContextInheritsParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SignalContext(parent)
	defer stop()

	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with its parent")
	}
}

func TestSignalContextCancelsOnSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping signal delivery test in short mode")
	}

	ctx, stop := SignalContext(context.Background())
	defer stop()

	// SIGTERM is captured by the registration, so sending it to
	// ourselves cancels the context instead of killing the process.
	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess() failed: %v", err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("Signal() failed: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Skip("signal not delivered within timeout")
	}
}
