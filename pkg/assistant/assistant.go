package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"switchyard-ai/switchyard/pkg/config"
	"switchyard-ai/switchyard/pkg/health"
	"switchyard-ai/switchyard/pkg/health/history"
	"switchyard-ai/switchyard/pkg/providerfactory"
	"switchyard-ai/switchyard/pkg/providers"
	"switchyard-ai/switchyard/pkg/routing"
	"switchyard-ai/switchyard/pkg/server"
	"switchyard-ai/switchyard/pkg/telemetry/metrics"
)

// Assistant is the single public entry point of the subsystem. It owns
// the provider manager, the router, the metrics collector, the health
// monitor and the optional history store, and exposes the request
// surface the CLI consumes.
type Assistant struct {
	manager   *providerfactory.Manager
	router    *routing.Router
	monitor   *health.Monitor
	collector *metrics.Collector
	history   *history.Store
	pruner    *history.Pruner
	logger    *slog.Logger

	mu           sync.RWMutex
	cfg          *config.Config
	priorityMode routing.PriorityMode
	watcher      *config.Watcher
	server       *server.Server
	closed       bool
}

// New constructs the assistant from configuration: one adapter per
// enabled provider, the router, the metrics collector, the health
// monitor and, when enabled, the SQLite history store. The monitor
// starts immediately and runs until Close.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Assistant, error) {
	manager := providerfactory.NewManager()
	if err := manager.Initialize(ctx, cfg); err != nil {
		return nil, err
	}

	a, err := NewWithManager(ctx, cfg, manager, logger)
	if err != nil {
		manager.Close()
		return nil, err
	}
	return a, nil
}

// NewWithManager wires the assistant around an existing provider
// manager. Callers that pre-register custom adapters use this; New is
// the configuration-driven path. The manager's lifecycle transfers to
// the assistant on success.
func NewWithManager(ctx context.Context, cfg *config.Config, manager *providerfactory.Manager, logger *slog.Logger) (*Assistant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mode, err := routing.ParsePriorityMode(cfg.Routing.PriorityMode)
	if err != nil {
		return nil, fmt.Errorf("invalid priority mode in configuration: %w", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled() {
		collector = metrics.NewCollector(nil)
	}

	a := &Assistant{
		manager:      manager,
		router:       routing.NewRouter(manager, collector, logger),
		collector:    collector,
		logger:       logger.With("component", "assistant"),
		cfg:          cfg,
		priorityMode: mode,
	}

	a.monitor = health.NewMonitor(manager, health.MonitorConfig{
		Interval:      cfg.Health.Interval,
		ProbeTimeout:  cfg.Health.ProbeTimeout,
		RetryAttempts: cfg.Health.RetryAttempts,
		RetryDelay:    cfg.Health.RetryDelay,
		SnapshotPath:  cfg.Health.SnapshotPath,
	}, collector, logger)

	if cfg.Health.History.Enabled {
		store, err := history.Open(history.Config{Path: cfg.Health.History.Path}, logger)
		if err != nil {
			return nil, err
		}
		a.history = store
		a.monitor.SetHistorySink(store)

		pruner := history.NewPruner(store, history.PrunerConfig{
			RetentionDays: cfg.Health.History.RetentionDays,
			Schedule:      cfg.Health.History.PruneSchedule,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			store.Close()
			return nil, err
		}
		a.pruner = pruner
	}

	a.monitor.Start(ctx)

	a.logger.Info("assistant ready",
		"providers", manager.ProviderCount(),
		"available", len(manager.AvailableProviders()),
		"priority_mode", string(mode),
		"metrics", collector != nil,
		"history", a.history != nil,
	)

	return a, nil
}

// Chat sends a single user message and returns the completion.
func (a *Assistant) Chat(ctx context.Context, message string, opts *ChatOptions) (*Reply, error) {
	return a.ChatMessages(ctx, []providers.Message{{Role: providers.RoleUser, Content: message}}, opts)
}

// ChatMessages sends a full conversation and returns the completion.
func (a *Assistant) ChatMessages(ctx context.Context, messages []providers.Message, opts *ChatOptions) (*Reply, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}

	req, err := a.buildRequest(messages, opts)
	if err != nil {
		return nil, err
	}

	resp, err := a.router.Route(ctx, req)
	if err != nil {
		return nil, err
	}
	return replyFrom(resp), nil
}

// ChatStream sends a single user message and returns a channel of
// incremental chunks. The channel is finite; the caller must drain it.
// Cancelling ctx stops the stream between chunks.
func (a *Assistant) ChatStream(ctx context.Context, message string, opts *ChatOptions) (<-chan providers.StreamChunk, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}

	req, err := a.buildRequest([]providers.Message{{Role: providers.RoleUser, Content: message}}, opts)
	if err != nil {
		return nil, err
	}

	chunks, decision, err := a.router.RouteStream(ctx, req)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("stream opened",
		"provider", decision.Provider,
		"request_id", decision.RequestID,
	)
	return chunks, nil
}

// Vision analyzes an image with an optional text prompt, dispatched to
// the first vision-capable provider that accepts it.
func (a *Assistant) Vision(ctx context.Context, image []byte, prompt string) (*Reply, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}

	resp, err := a.router.RouteVision(ctx, image, prompt, a.currentPriority())
	if err != nil {
		return nil, err
	}
	return replyFrom(resp), nil
}

// GenerateCode produces code for the prompt in the given language. The
// reply content is bare code with surrounding markdown fences stripped.
func (a *Assistant) GenerateCode(ctx context.Context, prompt, language string) (*Reply, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}

	resp, err := a.router.RouteCode(ctx, prompt, language, a.currentPriority())
	if err != nil {
		return nil, err
	}
	return replyFrom(resp), nil
}

// ReviewCode reviews the given code and returns the structured result.
// A provider response that is not valid JSON degrades to a result whose
// summary carries the raw text.
func (a *Assistant) ReviewCode(ctx context.Context, code, language string) (*providers.ReviewResult, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}

	result, decision, err := a.router.RouteReview(ctx, code, language, a.currentPriority())
	if err != nil {
		return nil, err
	}

	a.logger.Debug("code review complete",
		"provider", decision.Provider,
		"request_id", decision.RequestID,
		"issues", len(result.Issues),
	)
	return result, nil
}

// GetModels aggregates the model catalogs of all available providers.
func (a *Assistant) GetModels(ctx context.Context) ([]providers.ModelInfo, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	return a.manager.GetAvailableModels(ctx), nil
}

// Provider returns the named adapter. Callers can type-assert the
// result against optional capabilities such as providers.ModelManager.
func (a *Assistant) Provider(name string) (providers.Provider, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	return a.manager.GetProvider(name)
}

// GetHealth returns the monitor's current aggregate view without
// triggering a new check run.
func (a *Assistant) GetHealth() *health.SystemHealth {
	return a.monitor.GetSystemHealth()
}

// CheckHealth runs a synchronous check pass across all providers and
// returns the fresh aggregate view.
func (a *Assistant) CheckHealth(ctx context.Context) (*health.SystemHealth, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}

	a.monitor.PerformHealthCheck(ctx)
	return a.monitor.GetSystemHealth(), nil
}

// HealthHistory returns persisted probe results, newest first. A
// non-empty provider narrows the result; limit caps the row count.
func (a *Assistant) HealthHistory(ctx context.Context, provider string, limit int) ([]history.CheckRow, error) {
	if err := a.ensureOpen(); err != nil {
		return nil, err
	}
	if a.history == nil {
		return nil, ErrHistoryDisabled
	}
	return a.history.RecentChecks(ctx, provider, limit)
}

// RefreshProviders re-probes provider availability on demand.
func (a *Assistant) RefreshProviders(ctx context.Context) {
	a.manager.RefreshAvailability(ctx)
}

// Stats returns the in-process routing counters.
func (a *Assistant) Stats() routing.StatsSnapshot {
	return a.router.Stats()
}

// SetPriorityMode sets the session-wide provider ordering.
func (a *Assistant) SetPriorityMode(mode string) error {
	parsed, err := routing.ParsePriorityMode(mode)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.priorityMode = parsed
	a.mu.Unlock()

	a.logger.Debug("priority mode set", "mode", string(parsed))
	return nil
}

// PriorityMode returns the session-wide provider ordering.
func (a *Assistant) PriorityMode() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return string(a.priorityMode)
}

// Serve runs the diagnostics HTTP server until ctx is cancelled or the
// assistant is closed. An empty addr uses the configured listen address.
func (a *Assistant) Serve(ctx context.Context, addr string) error {
	if err := a.ensureOpen(); err != nil {
		return err
	}

	a.mu.Lock()
	if a.server != nil {
		a.mu.Unlock()
		return fmt.Errorf("diagnostics server already running")
	}
	srvCfg := a.cfg.Server
	if addr != "" {
		srvCfg.ListenAddress = addr
	}
	srv := server.NewServer(srvCfg, a.monitor, a.collector.Handler(), a.logger)
	srv.SetStatsSource(a.router)
	srv.SetMetricsPath(a.cfg.Telemetry.Metrics.Path)
	a.server = srv
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.server = nil
		a.mu.Unlock()
	}()

	return srv.Start(ctx)
}

// ServerAddr returns the bound address of the diagnostics server, or
// an empty string when it is not running. With a ":0" listen address
// this is how callers learn the real port.
func (a *Assistant) ServerAddr() string {
	a.mu.RLock()
	srv := a.server
	a.mu.RUnlock()

	if srv == nil {
		return ""
	}
	return srv.Addr()
}

// WatchConfig starts a watcher on the configuration file. After each
// successful reload the assistant re-applies the default priority mode
// and refreshes provider availability. The watcher stops when ctx is
// cancelled or the assistant is closed.
func (a *Assistant) WatchConfig(ctx context.Context, path string) error {
	if err := a.ensureOpen(); err != nil {
		return err
	}

	watcher, err := config.NewWatcher(path, a.logger)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.watcher != nil {
		a.mu.Unlock()
		return fmt.Errorf("configuration watcher already running")
	}
	a.watcher = watcher
	a.mu.Unlock()

	go func() {
		defer func() {
			a.mu.Lock()
			a.watcher = nil
			a.mu.Unlock()
		}()

		err := watcher.Watch(ctx, func() error {
			if err := config.ReloadConfig(path); err != nil {
				return err
			}
			a.applyConfig(ctx, config.GetConfig())
			return nil
		})
		if err != nil {
			a.logger.Error("configuration watcher exited", "error", err)
		}
	}()

	return nil
}

// applyConfig folds a reloaded configuration into the running assistant.
func (a *Assistant) applyConfig(ctx context.Context, cfg *config.Config) {
	if cfg == nil {
		return
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	if err := a.SetPriorityMode(cfg.Routing.PriorityMode); err != nil {
		a.logger.Warn("reloaded configuration has an invalid priority mode",
			"mode", cfg.Routing.PriorityMode,
			"error", err,
		)
	}
	a.RefreshProviders(ctx)

	a.logger.Info("configuration reloaded", "priority_mode", a.PriorityMode())
}

// Close stops the configuration watcher, the diagnostics server, the
// health monitor and the history pruner, then closes the history store
// and the provider adapters. Close is idempotent; operations after
// Close fail with ErrClosed.
func (a *Assistant) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	watcher := a.watcher
	srv := a.server
	a.mu.Unlock()

	var failures []error

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			failures = append(failures, fmt.Errorf("failed to stop configuration watcher: %w", err))
		}
	}
	if srv != nil {
		if err := srv.Shutdown(context.Background()); err != nil {
			failures = append(failures, err)
		}
	}

	a.monitor.Stop()
	if a.pruner != nil {
		a.pruner.Stop()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			failures = append(failures, err)
		}
	}
	if err := a.manager.Close(); err != nil {
		failures = append(failures, err)
	}

	if len(failures) > 0 {
		return fmt.Errorf("errors closing assistant: %v", failures)
	}

	a.logger.Info("assistant closed")
	return nil
}

// ensureOpen gates operations on the closed flag.
func (a *Assistant) ensureOpen() error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}
	return nil
}

// currentPriority reads the session priority mode.
func (a *Assistant) currentPriority() routing.PriorityMode {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.priorityMode
}

// buildRequest translates facade options into a routing request.
func (a *Assistant) buildRequest(messages []providers.Message, opts *ChatOptions) (routing.RouteRequest, error) {
	if opts == nil {
		opts = &ChatOptions{}
	}

	req := routing.RouteRequest{
		Messages: messages,
		Provider: opts.Provider,
		Model:    opts.Model,
	}

	if opts.TaskType != "" {
		taskType, err := routing.ParseTaskType(opts.TaskType)
		if err != nil {
			return routing.RouteRequest{}, err
		}
		req.TaskType = taskType
	}

	if opts.Priority != "" {
		priority, err := routing.ParsePriorityMode(opts.Priority)
		if err != nil {
			return routing.RouteRequest{}, err
		}
		req.Priority = priority
	} else {
		req.Priority = a.currentPriority()
	}

	if opts.Temperature > 0 || opts.MaxTokens > 0 {
		req.Options = &providers.ChatOptions{
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}

	return req, nil
}
