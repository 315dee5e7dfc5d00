// Package gemini implements the Google Gemini provider adapter using
// the Generative Language generateContent API.
//
// # Gemini-Specific Behavior
//
// The wire format differs from the OpenAI-compatible shape in several
// ways the adapter hides from callers:
//
//  1. The model id lives in the URL path
//     (/v1beta/models/{model}:generateContent), not the request body.
//  2. There is no system role. A system message becomes a synthetic
//     priming pair: a user turn carrying the system text followed by a
//     short model acknowledgment.
//  3. Assistant turns use the role "model".
//  4. Authentication uses the x-goog-api-key header.
//  5. Sampling parameters travel in a nested generationConfig object.
//
// # Streaming
//
// Streaming uses :streamGenerateContent?alt=sse. Each SSE data frame
// carries a complete response object; the stream has no terminator
// frame and simply ends after the final chunk, which carries the
// finishReason.
//
// # Vision
//
// The adapter implements providers.VisionProvider. Images are sent as
// inline_data parts with base64-encoded payloads alongside the text
// prompt.
package gemini
