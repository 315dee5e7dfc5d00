package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"switchyard-ai/switchyard/pkg/cli"
	"switchyard-ai/switchyard/pkg/health/history"
)

var healthFlags struct {
	json     bool
	serve    bool
	listen   string
	interval time.Duration
	provider string
	limit    int
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check provider health",
	Long: `Check the health of all configured providers.

Without flags, runs one check pass and prints a status table. With
--serve, keeps checking in the background and exposes the results on a
diagnostics HTTP endpoint alongside prometheus metrics.

Examples:
  # One-shot check
  switchyard health

  # Machine-readable output
  switchyard health --json

  # Long-running diagnostics server with 30s checks
  switchyard health --serve --interval 30s

  # Serve on a non-default address
  switchyard health --serve --listen 0.0.0.0:9090`,
	RunE: runHealth,
}

var healthHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded health checks",
	Long: `Show recorded health check results from the history database.

History is written by the monitor when health.history.enabled is set,
so rows accumulate while 'health --serve' (or an embedding application)
is running.

Examples:
  # Most recent checks across all providers
  switchyard health history

  # One provider, more rows
  switchyard health history --provider ollama --limit 200`,
	RunE: runHealthHistory,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.AddCommand(healthHistoryCmd)

	healthCmd.Flags().BoolVar(&healthFlags.json, "json", false, "emit results as JSON")
	healthCmd.Flags().BoolVar(&healthFlags.serve, "serve", false, "keep running and expose the diagnostics endpoint")
	healthCmd.Flags().StringVarP(&healthFlags.listen, "listen", "l", "", "override the diagnostics listen address")
	healthCmd.Flags().DurationVar(&healthFlags.interval, "interval", 0, "override the check interval (e.g. 30s)")

	healthHistoryCmd.Flags().StringVarP(&healthFlags.provider, "provider", "p", "", "filter by provider")
	healthHistoryCmd.Flags().IntVar(&healthFlags.limit, "limit", 50, "max rows")
	healthHistoryCmd.Flags().BoolVar(&healthFlags.json, "json", false, "emit rows as JSON")
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if healthFlags.interval > 0 {
		cfg.Health.Interval = healthFlags.interval
	}

	a, err := buildAssistant(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if !healthFlags.serve {
		sys, err := a.CheckHealth(ctx)
		if err != nil {
			return cli.NewCommandError("health", err)
		}
		if healthFlags.json {
			return cli.WriteJSON(os.Stdout, sys)
		}
		return cli.RenderHealth(os.Stdout, sys)
	}

	addr := healthFlags.listen
	if addr == "" {
		addr = cfg.Server.ListenAddress
	}

	// Pick up config edits while serving. Best effort: a broken
	// watcher should not take the diagnostics endpoint down.
	if err := a.WatchConfig(ctx, configPath()); err != nil {
		slog.Warn("config watching unavailable", "error", err)
	}

	fmt.Printf("✓ Diagnostics server listening on %s\n", addr)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", addr)
	fmt.Printf("✓ Routing stats: http://%s/stats\n", addr)
	if cfg.MetricsEnabled() {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", addr, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := a.Serve(ctx, addr); err != nil {
		return cli.NewCommandError("health", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func runHealthHistory(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Health.History.Enabled {
		return cli.NewConfigError("health.history.enabled", "health history is disabled")
	}

	// Read the store directly instead of standing up providers and a
	// monitor just to run a query.
	store, err := history.Open(history.Config{Path: cfg.Health.History.Path}, slog.Default())
	if err != nil {
		return cli.NewCommandError("health history", fmt.Errorf("failed to open history store: %w", err))
	}
	defer store.Close()

	rows, err := store.RecentChecks(ctx, healthFlags.provider, healthFlags.limit)
	if err != nil {
		return cli.NewCommandError("health history", err)
	}

	if healthFlags.json {
		return cli.WriteJSON(os.Stdout, rows)
	}
	return cli.RenderHistory(os.Stdout, rows)
}
