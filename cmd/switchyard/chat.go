package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"switchyard-ai/switchyard/pkg/assistant"
	"switchyard-ai/switchyard/pkg/cli"
)

var chatFlags struct {
	provider    string
	model       string
	task        string
	priority    string
	temperature float64
	maxTokens   int
	stream      bool
	json        bool
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Send a chat message through the router",
	Long: `Send a chat message and print the response.

The router detects the task type from the message, orders providers by
the configured priority mode, and falls back to the next candidate when
a provider fails.

Examples:
  # Route automatically
  switchyard chat "explain goroutines"

  # Stream tokens as they arrive
  switchyard chat --stream "write a haiku about latency"

  # Pin a provider and model
  switchyard chat --provider ollama --model llama3.2 "hello"

  # Keep the conversation on local runtimes
  switchyard chat --priority privacy-first "summarize this contract"

  # Machine-readable output with routing metadata
  switchyard chat --json "what is a mutex"`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatFlags.provider, "provider", "p", "", "pin a specific provider (skips routing)")
	chatCmd.Flags().StringVarP(&chatFlags.model, "model", "m", "", "override the provider's default model")
	chatCmd.Flags().StringVarP(&chatFlags.task, "task", "t", "", "task type hint (chat, coding, analysis, creative)")
	chatCmd.Flags().StringVar(&chatFlags.priority, "priority", "", "priority mode (auto, privacy-first, performance, cost-effective)")
	chatCmd.Flags().Float64Var(&chatFlags.temperature, "temperature", 0, "sampling temperature override")
	chatCmd.Flags().IntVar(&chatFlags.maxTokens, "max-tokens", 0, "response token limit")
	chatCmd.Flags().BoolVar(&chatFlags.stream, "stream", false, "stream the response as it arrives")
	chatCmd.Flags().BoolVar(&chatFlags.json, "json", false, "emit the full reply as JSON")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := &assistant.ChatOptions{
		Provider:    chatFlags.provider,
		Model:       chatFlags.model,
		TaskType:    chatFlags.task,
		Priority:    chatFlags.priority,
		Temperature: chatFlags.temperature,
		MaxTokens:   chatFlags.maxTokens,
	}

	if chatFlags.stream {
		chunks, err := a.ChatStream(ctx, args[0], opts)
		if err != nil {
			return cli.NewCommandError("chat", err)
		}
		for chunk := range chunks {
			if chunk.Err != nil {
				fmt.Println()
				return cli.NewCommandError("chat", chunk.Err)
			}
			fmt.Print(chunk.Delta)
		}
		fmt.Println()
		return nil
	}

	reply, err := a.Chat(ctx, args[0], opts)
	if err != nil {
		return cli.NewCommandError("chat", err)
	}

	if chatFlags.json {
		return cli.WriteJSON(os.Stdout, reply)
	}
	fmt.Println(reply.Content)
	return nil
}
