// Package server provides the local diagnostics HTTP server.
//
// The server is optional and off by default; `switchyard health --serve`
// starts one. It exposes the health monitor's view of the configured
// providers plus the prometheus exposition.
//
// # Routes
//
//   - GET /healthz           - aggregate system health as JSON; a
//     critical overall status is reported with a 503 status code
//   - GET /healthz/providers - per-provider health records
//   - GET /stats             - routing statistics snapshot (when a
//     stats source is set)
//   - GET /metrics           - prometheus exposition (when metrics are
//     enabled; path configurable)
//
// # Basic Usage
//
//	srv := server.NewServer(cfg.Server, monitor, collector.Handler(), logger)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled or Shutdown is called, then drains
// in-flight requests for up to ShutdownTimeout.
//
// # Middleware Chain
//
// Requests pass through recovery, request ID tagging and completion
// logging, in that order, before reaching a handler. Panics become 500
// responses with the stack logged; every response carries an
// X-Request-ID header.
package server
