package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"switchyard-ai/switchyard/pkg/assistant"
	"switchyard-ai/switchyard/pkg/cli"
	"switchyard-ai/switchyard/pkg/providers"
)

var modelsFlags struct {
	provider string
	json     bool
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List and manage provider models",
	Long: `List models across providers and manage models on local runtimes.

Listing aggregates the catalogs of every available provider. Pull and
remove work against runtimes that manage their own model store, such
as Ollama.

Examples:
  # List everything the router can currently reach
  switchyard models

  # Pull a model into the local Ollama runtime
  switchyard models pull llama3.2

  # Remove it again
  switchyard models rm llama3.2`,
	RunE: runModelsList,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models across available providers",
	RunE:  runModelsList,
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull [model]",
	Short: "Download a model into a local runtime",
	Long: `Download a model into a local runtime, showing pull progress.

Only providers that manage a local model store support this; cloud
vendors serve fixed catalogs.`,
	Args: cobra.ExactArgs(1),
	RunE: runModelsPull,
}

var modelsRemoveCmd = &cobra.Command{
	Use:     "rm [model]",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a model from a local runtime",
	Args:    cobra.ExactArgs(1),
	RunE:    runModelsRemove,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd, modelsPullCmd, modelsRemoveCmd)

	modelsCmd.Flags().BoolVar(&modelsFlags.json, "json", false, "emit the catalog as JSON")
	modelsListCmd.Flags().BoolVar(&modelsFlags.json, "json", false, "emit the catalog as JSON")

	modelsPullCmd.Flags().StringVarP(&modelsFlags.provider, "provider", "p", "ollama", "target runtime")
	modelsRemoveCmd.Flags().StringVarP(&modelsFlags.provider, "provider", "p", "ollama", "target runtime")
}

func runModelsList(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	models, err := a.GetModels(ctx)
	if err != nil {
		return cli.NewCommandError("models list", err)
	}

	if modelsFlags.json {
		return cli.WriteJSON(os.Stdout, models)
	}
	return cli.RenderModels(os.Stdout, models)
}

func runModelsPull(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mgr, err := modelManagerFor(a)
	if err != nil {
		return err
	}

	printer := cli.NewPullProgressPrinter(os.Stdout)
	defer printer.Finish()

	if err := mgr.PullModel(ctx, args[0], printer.Update); err != nil {
		return cli.NewCommandError("models pull", err)
	}
	printer.Finish()

	fmt.Printf("✓ Pulled %s into %s\n", args[0], modelsFlags.provider)
	return nil
}

func runModelsRemove(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mgr, err := modelManagerFor(a)
	if err != nil {
		return err
	}

	if err := mgr.DeleteModel(ctx, args[0]); err != nil {
		return cli.NewCommandError("models rm", err)
	}

	fmt.Printf("✓ Removed %s from %s\n", args[0], modelsFlags.provider)
	return nil
}

// modelManagerFor resolves the --provider flag to an adapter that can
// manage a local model store.
func modelManagerFor(a *assistant.Assistant) (providers.ModelManager, error) {
	p, err := a.Provider(modelsFlags.provider)
	if err != nil {
		return nil, cli.NewCommandError("models", err)
	}
	mgr, ok := p.(providers.ModelManager)
	if !ok {
		return nil, fmt.Errorf("provider %q cannot manage models (supported: ollama)", modelsFlags.provider)
	}
	return mgr, nil
}
