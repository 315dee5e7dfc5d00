package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Code generation and review are capabilities of every provider, expressed
// as package-level functions over the Provider interface rather than as
// per-vendor methods: the prompts and the JSON degrade rule are identical
// across vendors, only the chat transport differs.

const codeGenSystemPrompt = "You are an expert %s programmer. " +
	"Respond with only the requested code. Do not wrap it in markdown fences, " +
	"do not add explanations or comments beyond what the code needs."

const codeReviewSystemPrompt = "You are a strict %s code reviewer. " +
	"Respond with a single JSON object and nothing else, using exactly this shape: " +
	`{"issues":[{"severity":"info|warning|error","message":"...","line":0}],` +
	`"summary":"...","improvements":["..."]}`

// GenerateCode asks the provider for bare code in the given language.
// Temperature is pinned to CodeTemperature for deterministic output.
func GenerateCode(ctx context.Context, p Provider, prompt, language, model string) (string, error) {
	if language == "" {
		language = "software"
	}

	messages := []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(codeGenSystemPrompt, language)},
		{Role: RoleUser, Content: prompt},
	}

	opts := &ChatOptions{Temperature: CodeTemperature}
	content, err := p.Chat(ctx, messages, model, opts)
	if err != nil {
		return "", err
	}

	return stripCodeFences(content), nil
}

// ReviewCode asks the provider to review code and parses the structured
// verdict. A response that is not valid JSON degrades gracefully to a
// result carrying the raw text as Summary instead of failing the call.
func ReviewCode(ctx context.Context, p Provider, code, language, model string) (*ReviewResult, error) {
	if language == "" {
		language = "software"
	}

	messages := []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(codeReviewSystemPrompt, language)},
		{Role: RoleUser, Content: code},
	}

	opts := &ChatOptions{Temperature: CodeTemperature}
	content, err := p.Chat(ctx, messages, model, opts)
	if err != nil {
		return nil, err
	}

	return parseReviewResult(content), nil
}

// parseReviewResult decodes the model's JSON verdict, tolerating markdown
// fences and surrounding prose. Anything unparseable becomes a degraded
// result with the raw text as Summary.
func parseReviewResult(raw string) *ReviewResult {
	candidate := stripCodeFences(raw)

	// Models sometimes prefix the object with prose; cut to the outermost
	// braces before decoding.
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			candidate = candidate[start : end+1]
		}
	}

	var result ReviewResult
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return &ReviewResult{
			Issues:       []ReviewIssue{},
			Summary:      raw,
			Improvements: []string{},
		}
	}

	if result.Issues == nil {
		result.Issues = []ReviewIssue{}
	}
	if result.Improvements == nil {
		result.Improvements = []string{}
	}
	return &result
}

// stripCodeFences removes a wrapping markdown code fence, including an
// optional language tag on the opening fence.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop the opening fence line and a trailing fence line if present.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
