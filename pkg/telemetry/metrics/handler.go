package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler serving the Prometheus exposition
// for this collector's registry. It is mounted on the diagnostics
// server at the configured metrics path (typically "/metrics").
//
// A nil collector returns a handler that responds 404, so the route
// can be mounted unconditionally.
//
// Example:
//
//	collector := metrics.NewCollector(nil)
//	http.Handle("/metrics", collector.Handler())
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			// OpenMetrics encoding is negotiated when the scraper asks
			// for it, plain text otherwise.
			EnableOpenMetrics: true,

			// Serve whatever collected successfully on a partial failure.
			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}

// HandlerWithOptions returns an HTTP handler with caller-supplied
// promhttp options, for scrape timeouts or in-flight limits.
func (c *Collector) HandlerWithOptions(opts promhttp.HandlerOpts) http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, opts)
}
