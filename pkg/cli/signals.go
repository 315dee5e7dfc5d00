package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a child of parent that is cancelled on SIGINT
// or SIGTERM. The stop function releases the signal registration; after
// it is called a second signal falls through to the default handler, so
// a hung shutdown can still be interrupted from the terminal.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
