package routing

import (
	"strings"

	"switchyard-ai/switchyard/pkg/providers"
)

// taskKeywords maps each detectable task type to the phrases that
// signal it. Detection walks the categories in the order listed here;
// the first category with any phrase contained in the user text wins,
// so "write a quick script" classifies as coding, not quick_tasks.
var taskKeywords = []struct {
	task     TaskType
	keywords []string
}{
	{TaskCoding, []string{
		"code", "function", "debug", "script", "program", "implement",
		"algorithm", "refactor", "compile", "bug", "unit test",
		"regex", "sql", "api endpoint", "stack trace",
	}},
	{TaskReasoning, []string{
		"step by step", "reason", "prove", "logic puzzle", "analyze",
		"think through", "math problem", "solve", "deduce", "why does",
	}},
	{TaskVision, []string{
		"image", "picture", "photo", "screenshot", "diagram",
		"what is in this", "describe this",
	}},
	{TaskQuick, []string{
		"quick question", "briefly", "short answer", "one word",
		"tl;dr", "tldr", "in a sentence", "yes or no",
	}},
	{TaskCostEffective, []string{
		"cheapest", "cheap", "budget", "free tier", "low cost",
		"cost effective",
	}},
	{TaskPrivacy, []string{
		"private", "confidential", "sensitive", "offline", "local only",
		"do not send", "stays on my machine",
	}},
	{TaskMultilingual, []string{
		"translate", "translation", "in spanish", "in french",
		"in german", "in japanese", "in chinese", "in korean",
		"in italian", "in portuguese",
	}},
	{TaskCurrentEvents, []string{
		"news", "latest", "current events", "this week", "today's",
		"recent developments", "breaking",
	}},
}

// DetectTaskType classifies a conversation by keyword containment over
// the user messages. It returns TaskChat when nothing matches.
func DetectTaskType(messages []providers.Message) TaskType {
	var sb strings.Builder
	for _, msg := range messages {
		if msg.Role != providers.RoleUser {
			continue
		}
		sb.WriteString(msg.Content)
		sb.WriteString(" ")
	}

	text := strings.ToLower(sb.String())
	if text == "" {
		return TaskChat
	}

	for _, category := range taskKeywords {
		for _, kw := range category.keywords {
			if strings.Contains(text, kw) {
				return category.task
			}
		}
	}

	return TaskChat
}
