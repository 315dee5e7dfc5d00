package providers

import (
	"context"
	"testing"
)

// scriptedProvider returns a canned chat response and records the options
// it was called with.
type scriptedProvider struct {
	response string
	lastOpts *ChatOptions
	lastMsgs []Message
}

func (s *scriptedProvider) Initialize(ctx context.Context, apiKey string, cfg *ProviderConfig) error {
	return nil
}
func (s *scriptedProvider) GetName() string       { return "scripted" }
func (s *scriptedProvider) GetType() ProviderType { return TypeOpenAI }
func (s *scriptedProvider) GetModels(ctx context.Context) ([]string, error) {
	return []string{"scripted-model"}, nil
}
func (s *scriptedProvider) GetDefaultModel() (string, error) { return "scripted-model", nil }
func (s *scriptedProvider) ValidateModel(model string) (string, error) {
	if model == "" {
		return "scripted-model", nil
	}
	return model, nil
}
func (s *scriptedProvider) Chat(ctx context.Context, messages []Message, model string, opts *ChatOptions) (string, error) {
	s.lastMsgs = messages
	s.lastOpts = opts
	return s.response, nil
}
func (s *scriptedProvider) ChatStream(ctx context.Context, messages []Message, model string, opts *ChatOptions) (<-chan StreamChunk, error) {
	ch := make(chan StreamChunk, 1)
	ch <- StreamChunk{Delta: s.response, FinishReason: FinishReasonStop}
	close(ch)
	return ch, nil
}
func (s *scriptedProvider) Close() error { return nil }

func TestGenerateCode(t *testing.T) {
	p := &scriptedProvider{response: "```go\nfunc main() {}\n```"}

	code, err := GenerateCode(context.Background(), p, "write main", "go", "")
	if err != nil {
		t.Fatalf("GenerateCode failed: %v", err)
	}

	// Fences are stripped from the result
	if code != "func main() {}" {
		t.Errorf("expected bare code, got %q", code)
	}

	// Code calls run at low temperature
	if p.lastOpts == nil || p.lastOpts.Temperature != CodeTemperature {
		t.Errorf("expected temperature %v, got %+v", CodeTemperature, p.lastOpts)
	}

	// System prompt names the language
	if len(p.lastMsgs) != 2 || p.lastMsgs[0].Role != RoleSystem {
		t.Fatalf("expected system+user messages, got %+v", p.lastMsgs)
	}
}

func TestReviewCodeStructured(t *testing.T) {
	p := &scriptedProvider{response: `Here is my review:
{"issues":[{"severity":"warning","message":"unused variable","line":3}],"summary":"mostly fine","improvements":["add tests"]}`}

	result, err := ReviewCode(context.Background(), p, "var x int", "go", "")
	if err != nil {
		t.Fatalf("ReviewCode failed: %v", err)
	}

	if len(result.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(result.Issues))
	}
	if result.Issues[0].Severity != "warning" || result.Issues[0].Line != 3 {
		t.Errorf("unexpected issue: %+v", result.Issues[0])
	}
	if result.Summary != "mostly fine" {
		t.Errorf("expected summary preserved, got %q", result.Summary)
	}
	if len(result.Improvements) != 1 || result.Improvements[0] != "add tests" {
		t.Errorf("unexpected improvements: %v", result.Improvements)
	}
}

func TestReviewCodeDegradedOnProse(t *testing.T) {
	raw := "The code looks good to me, no issues found."
	p := &scriptedProvider{response: raw}

	result, err := ReviewCode(context.Background(), p, "package main", "go", "")
	if err != nil {
		t.Fatalf("ReviewCode failed: %v", err)
	}

	// Unparseable review degrades instead of failing
	if result.Summary != raw {
		t.Errorf("expected raw text as summary, got %q", result.Summary)
	}
	if result.Issues == nil || len(result.Issues) != 0 {
		t.Errorf("expected empty issues slice, got %v", result.Issues)
	}
	if result.Improvements == nil || len(result.Improvements) != 0 {
		t.Errorf("expected empty improvements slice, got %v", result.Improvements)
	}
}

func TestParseReviewResultFenced(t *testing.T) {
	raw := "```json\n{\"issues\":[],\"summary\":\"clean\",\"improvements\":[]}\n```"

	result := parseReviewResult(raw)
	if result.Summary != "clean" {
		t.Errorf("expected fenced JSON to parse, got summary %q", result.Summary)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fence with language tag",
			in:   "```python\nprint(1)\n```",
			want: "print(1)",
		},
		{
			name: "fence without language tag",
			in:   "```\nx = 1\n```",
			want: "x = 1",
		},
		{
			name: "no fence",
			in:   "plain text",
			want: "plain text",
		},
		{
			name: "surrounding whitespace",
			in:   "\n\n```go\nreturn\n```\n",
			want: "return",
		},
		{
			name: "missing closing fence",
			in:   "```go\nreturn",
			want: "return",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.in); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
