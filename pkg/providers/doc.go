// Package providers implements a unified abstraction layer for LLM providers.
//
// # Overview
//
// The providers package normalizes heterogeneous chat APIs behind one
// capability interface, covering cloud vendors (OpenAI, Anthropic, Gemini,
// Groq) and local inference runtimes (Ollama, LM Studio, vLLM), so that
// routing, health monitoring, and the assistant facade never see a
// vendor-specific surface.
//
// # Architecture
//
// The package is organized into several layers:
//
//  1. Provider Interface - the contract all adapters implement
//  2. Base Client - shared HTTP logic (connection pooling, retries, rate
//     limiting, the initialization gate, the model catalog)
//  3. Vendor Adapters - one subpackage per vendor wire format
//  4. Capability Interfaces - optional surfaces (ConnectionValidator,
//     VisionProvider, ModelManager) asserted by callers
//  5. Code Helpers - GenerateCode/ReviewCode over any Provider
//
// # Basic Usage
//
// Create and initialize a single adapter:
//
//	p := openai.NewProvider()
//	if err := p.Initialize(ctx, os.Getenv("OPENAI_API_KEY"), nil); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	content, err := p.Chat(ctx, []providers.Message{
//	    {Role: providers.RoleUser, Content: "Hello!"},
//	}, "", nil)
//
// Every method other than Initialize fails with *NotInitializedError until
// Initialize has completed. An empty model id resolves to the adapter's
// default model (the first catalog entry).
//
// # Streaming
//
//	chunks, err := p.ChatStream(ctx, messages, "", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range chunks {
//	    if chunk.Err != nil {
//	        log.Fatal(chunk.Err)
//	    }
//	    fmt.Print(chunk.Delta)
//	}
//
// Chunks arrive in transport order. Cancelling the context stops the
// stream between chunks without an error chunk; a transport failure closes
// the channel after a final chunk with Err set, so a clean end of stream
// is always distinguishable from a truncated one.
//
// # Local runtimes
//
// Local adapters (Ollama, LM Studio, vLLM) probe their runtime during
// Initialize and fetch the live model catalog when it is reachable; the
// catalog falls back to a small static list otherwise. They also implement
// ConnectionValidator for cheap availability probes and retry transient
// failures with exponential backoff. Cloud adapters do neither: their
// catalogs are static and a reachability probe would be a billed call.
//
// # Error Handling
//
// The package defines specific error types for common failure scenarios:
//
//   - NotInitializedError: method called before Initialize
//   - UnsupportedModelError: requested model not in the catalog
//   - NoModelsError: empty catalog
//   - UpstreamError: non-2xx vendor response
//   - AuthError: authentication failure (HTTP 401/403)
//   - RateLimitError: rate limit exceeded (HTTP 429)
//   - TimeoutError: request deadline exceeded
//   - NoResponseBodyError: streaming transport delivered no body
//   - ParseError: malformed vendor response
//
// # Thread Safety
//
// All adapters are safe for concurrent use from multiple goroutines.
package providers
