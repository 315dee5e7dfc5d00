// Package openai implements the OpenAI provider adapter.
//
// This package provides an implementation of the providers.Provider
// interface for OpenAI's chat completions API. It supports:
//
//   - Chat completions
//   - Streaming responses (Server-Sent Events)
//   - Vision requests (inline base64 images)
//   - Live model listing via GET /models
//
// # Basic Usage
//
//	provider := openai.NewProvider()
//	if err := provider.Initialize(ctx, os.Getenv("OPENAI_API_KEY"), nil); err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	content, err := provider.Chat(ctx, []providers.Message{
//	    {Role: providers.RoleUser, Content: "Hello!"},
//	}, "gpt-4o", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(content)
//
// # Streaming
//
//	chunks, err := provider.ChatStream(ctx, messages, "gpt-4o", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range chunks {
//	    if chunk.Err != nil {
//	        log.Fatal(chunk.Err)
//	    }
//	    fmt.Print(chunk.Delta)
//	}
//
// # Compatible Vendors
//
// Groq, LM Studio, and vLLM all speak OpenAI's wire format. Their adapters
// embed this one via NewCompatible and override identity, base URL,
// catalog, and initialization while inheriting the chat, streaming, and
// vision paths unchanged.
//
// # Reasoning Models
//
// The o1/o3/o4 model tier rejects any temperature except 1. The request
// transform pins the temperature for those models, so callers do not have
// to special-case them.
//
// # Error Handling
//
// The adapter maps OpenAI-specific errors to the common error types:
//
//   - 401/403 -> AuthError
//   - 429 -> RateLimitError (includes retry-after)
//   - 5xx -> UpstreamError (retried when MaxRetries > 0)
//   - malformed payloads -> ParseError
package openai
