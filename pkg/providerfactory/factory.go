package providerfactory

import (
	"fmt"
	"log/slog"

	"switchyard-ai/switchyard/pkg/providers"
	"switchyard-ai/switchyard/pkg/providers/anthropic"
	"switchyard-ai/switchyard/pkg/providers/gemini"
	"switchyard-ai/switchyard/pkg/providers/groq"
	"switchyard-ai/switchyard/pkg/providers/lmstudio"
	"switchyard-ai/switchyard/pkg/providers/ollama"
	"switchyard-ai/switchyard/pkg/providers/openai"
	"switchyard-ai/switchyard/pkg/providers/vllm"
)

// NewProvider creates an uninitialized adapter for the named vendor.
// The caller owns initialization: no network is touched here, and every
// other adapter method fails with NotInitializedError until Initialize
// succeeds.
//
// Supported names:
//   - "openai": OpenAI chat completions API
//   - "anthropic": Anthropic Messages API
//   - "gemini": Google Gemini generateContent API
//   - "groq": Groq (OpenAI-compatible, own catalog)
//   - "ollama": local Ollama daemon
//   - "lmstudio": local LM Studio server (OpenAI-compatible)
//   - "vllm": local vLLM server (OpenAI-compatible)
//
// Example:
//
//	provider, err := providerfactory.NewProvider("anthropic")
//	if err != nil {
//	    return err
//	}
//	if err := provider.Initialize(ctx, apiKey, nil); err != nil {
//	    return err
//	}
//	defer provider.Close()
func NewProvider(name string) (providers.Provider, error) {
	slog.Debug("creating provider adapter", "name", name)

	switch name {
	case "openai":
		return openai.NewProvider(), nil
	case "anthropic":
		return anthropic.NewProvider(), nil
	case "gemini":
		return gemini.NewProvider(), nil
	case "groq":
		return groq.NewProvider(), nil
	case "ollama":
		return ollama.NewProvider(), nil
	case "lmstudio":
		return lmstudio.NewProvider(), nil
	case "vllm":
		return vllm.NewProvider(), nil
	default:
		return nil, &providers.ConfigError{
			Provider: name,
			Field:    "name",
			Message:  fmt.Sprintf("unsupported provider: %q (supported: openai, anthropic, gemini, groq, ollama, lmstudio, vllm)", name),
		}
	}
}
