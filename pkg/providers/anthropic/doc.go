// Package anthropic implements the Anthropic provider adapter.
//
// This package provides an implementation of the providers.Provider
// interface for Anthropic's Messages API. It supports:
//
//   - Messages API (Claude 3.x models)
//   - Streaming responses (Server-Sent Events with event framing)
//
// # Basic Usage
//
//	provider := anthropic.NewProvider()
//	if err := provider.Initialize(ctx, os.Getenv("ANTHROPIC_API_KEY"), nil); err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	content, err := provider.Chat(ctx, []providers.Message{
//	    {Role: providers.RoleUser, Content: "Hello!"},
//	}, "claude-3-5-sonnet-20241022", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(content)
//
// # Anthropic-Specific Requirements
//
// Important differences from the OpenAI format, all handled by the
// request transform:
//
//  1. MaxTokens is required (defaults to 4096 when unset)
//  2. System messages are extracted into the dedicated "system" field
//  3. Messages must alternate between user and assistant
//  4. The first message must be from user
//  5. Authentication uses the x-api-key header, not Authorization: Bearer
//  6. Every request carries the anthropic-version header
//
// # Streaming
//
// Anthropic frames its SSE stream as typed events (message_start,
// content_block_delta, message_delta, message_stop, ...). The delta
// payload's JSON shape depends on the event type, so the reader decodes
// it per event. Only content deltas and the final stop reason become
// chunks; bookkeeping events are consumed silently.
//
// # Error Handling
//
// The adapter maps Anthropic-specific errors to the common error types:
//
//   - 401/403 -> AuthError
//   - 429 -> RateLimitError (includes retry-after)
//   - 5xx -> UpstreamError (retried when MaxRetries > 0)
//   - malformed payloads -> ParseError
package anthropic
