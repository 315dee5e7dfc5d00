package anthropic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"switchyard-ai/switchyard/pkg/providers"
)

// streamReader reads Server-Sent Events (SSE) from Anthropic's streaming
// API. Anthropic frames every event with an "event:" line followed by a
// "data:" line, unlike the bare data frames of the OpenAI format.
type streamReader struct {
	client  *providers.Client
	resp    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

// newStreamReader opens the streaming request and wraps its body.
func newStreamReader(ctx context.Context, client *providers.Client, url string, req *AnthropicRequest, headers map[string]string) (*streamReader, error) {
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
		// Check context cancellation between events
		select {
		case <-ctx.Done():
			return providers.StreamChunk{}, ctx.Err()
		default:
		}

		event, err := s.readEvent()
		if err != nil {
			if err == io.EOF {
				return providers.StreamChunk{}, io.EOF
			}
			return providers.StreamChunk{}, err
		}

		if event.Type == "message_stop" {
			return providers.StreamChunk{}, io.EOF
		}

		chunk, emit, err := transformStreamChunk(event)
		if err != nil {
			return providers.StreamChunk{}, &providers.ParseError{
				Provider: s.client.GetName(),
				Cause:    err,
			}
		}
		if !emit {
			continue
		}

		return chunk, nil
	}
}

// readEvent reads a complete SSE event (event type plus data lines).
func (s *streamReader) readEvent() (*AnthropicStreamEvent, error) {
	var eventType string
	var dataLines []string

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Empty line marks end of event
		if line == "" {
			if eventType != "" || len(dataLines) > 0 {
				break
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
		// Ignore other SSE fields (id, retry)
	}

	if err := s.scanner.Err(); err != nil {
		return nil, &providers.StreamError{
			Provider: s.client.GetName(),
			Message:  "failed to read stream",
			Cause:    err,
		}
	}

	// No event found means the stream ended
	if eventType == "" && len(dataLines) == 0 {
		return nil, io.EOF
	}

	var event AnthropicStreamEvent
	if len(dataLines) > 0 {
		data := strings.Join(dataLines, "\n")
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, &providers.ParseError{
				Provider:    s.client.GetName(),
				RawResponse: data,
				Cause:       fmt.Errorf("failed to parse stream event: %w", err),
			}
		}
	}

	// Fall back to the SSE event line when the payload omits the type
	if event.Type == "" {
		event.Type = eventType
	}

	return &event, nil
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.resp.Close()
}
