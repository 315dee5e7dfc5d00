// Package ollama implements the provider adapter for a local Ollama
// daemon using its native API.
//
// # Differences from the Cloud Adapters
//
// Ollama needs no API key, and the model catalog is whatever the daemon
// currently has installed. GetModels re-queries /api/tags on every call
// because the catalog drifts as models are pulled and removed; when
// the daemon is unreachable the last known catalog (or a small fallback
// list at first start) is served instead. Transient connection errors
// are retried with exponential backoff by default, since the daemon
// briefly refuses connections while loading a model into memory.
//
// # Streaming
//
// /api/chat streams newline-delimited JSON rather than SSE. Each line
// is a complete response object; the line carrying done=true ends the
// stream and supplies the finish reason.
//
// # Model Management
//
// The adapter implements providers.ModelManager. PullModel streams
// download progress through a callback and allows up to ten minutes;
// a failed pull reports its error in-band on the progress stream, not
// as an HTTP status. DeleteModel removes an installed model. Both
// refresh the catalog afterwards.
package ollama
