package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"switchyard-ai/switchyard/pkg/cli"
)

var codeFlags struct {
	language string
	json     bool
}

var codeCmd = &cobra.Command{
	Use:   "code",
	Short: "Generate and review code",
	Long: `Generate and review code through coding-capable providers.

Both subcommands route as coding tasks, which prefer providers suited
to code work and use a low sampling temperature.

Examples:
  # Generate a snippet
  switchyard code generate "binary search over a sorted slice" -l go

  # Review a file
  switchyard code review internal/parser.go

  # Review with an explicit language
  switchyard code review --language python scripts/migrate`,
}

var codeGenerateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Generate code from a prompt",
	Long: `Generate code from a natural-language prompt.

The response is printed as bare code with surrounding markdown fences
stripped, so it can be piped straight into a file:

  switchyard code generate "http handler returning 204" -l go > handler.go`,
	Args: cobra.ExactArgs(1),
	RunE: runCodeGenerate,
}

var codeReviewCmd = &cobra.Command{
	Use:   "review [file]",
	Short: "Review a source file",
	Long: `Review a source file and print issues, improvements, and a summary.

The language is inferred from the file extension; use --language to
override it for files without one.`,
	Args: cobra.ExactArgs(1),
	RunE: runCodeReview,
}

func init() {
	rootCmd.AddCommand(codeCmd)
	codeCmd.AddCommand(codeGenerateCmd, codeReviewCmd)

	codeGenerateCmd.Flags().StringVarP(&codeFlags.language, "language", "l", "", "target language")
	codeGenerateCmd.Flags().BoolVar(&codeFlags.json, "json", false, "emit the full reply as JSON")

	codeReviewCmd.Flags().StringVarP(&codeFlags.language, "language", "l", "", "source language (inferred from extension if unset)")
	codeReviewCmd.Flags().BoolVar(&codeFlags.json, "json", false, "emit the verdict as JSON")
}

func runCodeGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	reply, err := a.GenerateCode(ctx, args[0], codeFlags.language)
	if err != nil {
		return cli.NewCommandError("code generate", err)
	}

	if codeFlags.json {
		return cli.WriteJSON(os.Stdout, reply)
	}
	fmt.Println(reply.Content)
	return nil
}

func runCodeReview(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	source, err := os.ReadFile(args[0])
	if err != nil {
		return cli.NewCommandError("code review", fmt.Errorf("failed to read %s: %w", args[0], err))
	}

	language := codeFlags.language
	if language == "" {
		language = languageFromExtension(args[0])
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.ReviewCode(ctx, string(source), language)
	if err != nil {
		return cli.NewCommandError("code review", err)
	}

	if codeFlags.json {
		return cli.WriteJSON(os.Stdout, result)
	}
	return cli.RenderReview(os.Stdout, result)
}

// languageFromExtension maps common source file extensions onto the
// language names providers expect. Unknown extensions return "" and
// the provider reviews without a language hint.
func languageFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".mjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".rb":
		return "ruby"
	case ".c", ".h":
		return "c"
	case ".cc", ".cpp", ".hpp":
		return "c++"
	case ".sh", ".bash":
		return "shell"
	default:
		return ""
	}
}
