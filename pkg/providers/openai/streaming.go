package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"switchyard-ai/switchyard/pkg/providers"
)

// streamReader reads Server-Sent Events (SSE) from an OpenAI-compatible
// streaming endpoint.
type streamReader struct {
	client  *providers.Client
	resp    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

// newStreamReader opens the streaming request and wraps its body.
func newStreamReader(ctx context.Context, client *providers.Client, url string, req *OpenAIRequest, headers map[string]string) (*streamReader, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.DoRequest(ctx, "POST", url, bodyBytes, headers)
	if err != nil {
		return nil, err
	}

	return &streamReader{
		client:  client,
		resp:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// Read returns the next content-bearing chunk from the stream.
// Returns io.EOF when the stream ends normally.
func (s *streamReader) Read(ctx context.Context) (providers.StreamChunk, error) {
	if s.closed {
		return providers.StreamChunk{}, io.EOF
	}

	for {
		// Check context cancellation between lines
		select {
		case <-ctx.Done():
			return providers.StreamChunk{}, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return providers.StreamChunk{}, &providers.StreamError{
					Provider: s.client.GetName(),
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
			return providers.StreamChunk{}, io.EOF
		}

		line := s.scanner.Text()
		if line == "" {
			continue
		}

		// Skip non-data lines (comments, event types, etc.)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			return providers.StreamChunk{}, io.EOF
		}

		var openaiChunk OpenAIStreamResponse
		if err := json.Unmarshal([]byte(data), &openaiChunk); err != nil {
			return providers.StreamChunk{}, &providers.ParseError{
				Provider:    s.client.GetName(),
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream chunk: %w", err),
			}
		}

		chunk := transformStreamChunk(&openaiChunk)
		if chunk.Delta == "" && chunk.FinishReason == "" {
			// Role-only or empty chunk, nothing to deliver
			continue
		}

		return chunk, nil
	}
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
