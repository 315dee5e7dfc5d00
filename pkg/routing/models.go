package routing

import (
	"strings"
)

// taskModelPreferences ranks model-id substrings per task type. Model
// resolution walks the preference list in order and picks the first
// catalog entry containing that substring, so stronger matches go
// first. Tasks absent from the map carry no preference and fall
// through to the provider default.
var taskModelPreferences = map[TaskType][]string{
	TaskCoding: {
		"qwen2.5-coder", "deepseek-coder", "codellama", "codestral",
		"claude-sonnet", "claude-3-5-sonnet", "gpt-4o", "devstral",
	},
	TaskReasoning: {
		"deepseek-r1", "qwq", "o3", "o1", "claude-opus", "gpt-4o",
	},
	TaskVision: {
		"gpt-4o", "llava", "gemini", "claude-sonnet", "moondream",
	},
	TaskQuick: {
		"gpt-4o-mini", "claude-3-5-haiku", "gemini-2.0-flash",
		"llama-3.1-8b-instant", "llama3.2", "phi",
	},
	TaskCostEffective: {
		"llama3.2", "gemini-2.0-flash", "gpt-4o-mini",
		"llama-3.1-8b-instant", "qwen2.5",
	},
	TaskPrivacy: {
		"llama3.2", "llama3.1", "qwen2.5", "mistral", "phi",
	},
	TaskMultilingual: {
		"qwen2.5", "gpt-4o", "gemini-1.5-pro", "aya", "claude",
	},
	TaskCurrentEvents: {
		"gpt-4o", "gemini", "claude-sonnet", "llama-3.3",
	},
}

// RecommendedModel picks the model from catalog best suited to the
// task. Matching is case-insensitive substring containment. It returns
// "" when the task carries no preference or nothing in the catalog
// matches, which callers treat as "use the provider default".
func RecommendedModel(task TaskType, catalog []string) string {
	prefs, ok := taskModelPreferences[task]
	if !ok || len(catalog) == 0 {
		return ""
	}

	for _, pref := range prefs {
		for _, model := range catalog {
			if strings.Contains(strings.ToLower(model), pref) {
				return model
			}
		}
	}

	return ""
}
