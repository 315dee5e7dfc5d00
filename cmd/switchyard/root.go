package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"switchyard-ai/switchyard/pkg/assistant"
	"switchyard-ai/switchyard/pkg/cli"
	"switchyard-ai/switchyard/pkg/config"
	"switchyard-ai/switchyard/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "switchyard",
	Short: "Switchyard - provider routing and health for AI assistants",
	Long: `Switchyard routes AI requests across cloud LLM vendors and local
runtimes, picking the best available provider for each task.

It provides:
  - Task-aware routing with configurable priority modes
  - Background health monitoring with latency and uptime tracking
  - Persistent health history in SQLite
  - Local model management for Ollama-style runtimes
  - Prometheus metrics and a diagnostics HTTP endpoint

Cloud providers activate when their API key is set (OPENAI_API_KEY,
ANTHROPIC_API_KEY, GEMINI_API_KEY, GROQ_API_KEY). Local runtimes are
probed automatically.

For more information, visit: https://github.com/switchyard-ai/switchyard`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitCodeFor(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $XDG_CONFIG_HOME/switchyard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format override (json, text)")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// configPath resolves the configuration file location: the --config
// flag when given, otherwise the per-user default.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads configuration and installs the process logger.
// Logs go to stderr so stdout stays clean for command output.
func loadConfig() (*config.Config, error) {
	path := configPath()
	if err := config.Initialize(path); err != nil {
		return nil, cli.NewConfigError(path, err.Error())
	}
	cfg := config.GetConfig()

	if logFormat != "" {
		cfg.Telemetry.Logging.Format = logFormat
	}
	if _, err := logging.Setup(cfg.Telemetry.Logging, verbose); err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	return cfg, nil
}

// buildAssistant constructs the full assistant: provider adapters,
// router, and health monitor. Callers own Close.
func buildAssistant(ctx context.Context, cfg *config.Config) (*assistant.Assistant, error) {
	a, err := assistant.New(ctx, cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("failed to start assistant: %w", err)
	}
	return a, nil
}

// setup is the common command preamble: load config, then build the
// assistant against it.
func setup(ctx context.Context) (*assistant.Assistant, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildAssistant(ctx, cfg)
}
