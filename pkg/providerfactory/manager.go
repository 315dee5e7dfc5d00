package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"switchyard-ai/switchyard/pkg/config"
	"switchyard-ai/switchyard/pkg/providers"
)

// priorityOrderings are the fixed provider preference lists per routing
// priority mode. Selection walks the list and takes the first available
// name.
var priorityOrderings = map[string][]string{
	"auto":           {"openai", "anthropic", "gemini", "groq", "ollama", "lmstudio", "vllm"},
	"privacy-first":  {"ollama", "lmstudio", "vllm", "anthropic", "openai", "gemini", "groq"},
	"performance":    {"groq", "openai", "anthropic", "gemini", "vllm", "lmstudio", "ollama"},
	"cost-effective": {"ollama", "lmstudio", "vllm", "gemini", "groq", "openai", "anthropic"},
}

// Manager owns the set of constructed provider adapters and the set of
// currently available ones. Construction happens once in Initialize;
// availability is re-checked on demand and by the health monitor.
//
// Manager is thread-safe and can be used concurrently.
type Manager struct {
	providers map[string]providers.Provider
	available map[string]bool
	mu        sync.RWMutex
}

// NewManager creates an empty provider manager.
func NewManager() *Manager {
	return &Manager{
		providers: make(map[string]providers.Provider),
		available: make(map[string]bool),
	}
}

// Initialize constructs and initializes one adapter per enabled provider,
// then runs an availability check across the set. A provider is enabled
// when the configuration says so: local runtimes by default, cloud
// vendors once a key is present.
//
// Per-adapter failures are collected and logged but do not abort
// siblings; an error is returned only when every enabled adapter failed
// to initialize.
func (m *Manager) Initialize(ctx context.Context, cfg *config.Config) error {
	attempted := 0
	var failures []error

	for _, name := range config.KnownProviders {
		if !cfg.IsEnabled(name) {
			slog.Debug("provider disabled", "name", name)
			continue
		}
		attempted++

		provider, err := NewProvider(name)
		if err != nil {
			failures = append(failures, err)
			slog.Error("failed to create provider", "name", name, "error", err)
			continue
		}

		entry := cfg.Providers[name]
		pcfg := &providers.ProviderConfig{
			Name:       name,
			BaseURL:    entry.BaseURL,
			Timeout:    entry.Timeout,
			MaxRetries: entry.MaxRetries,
			RetryDelay: entry.RetryDelay,
			RateLimit:  entry.RateLimit,
		}

		if err := provider.Initialize(ctx, entry.APIKey, pcfg); err != nil {
			failures = append(failures, fmt.Errorf("failed to initialize provider %q: %w", name, err))
			slog.Error("failed to initialize provider", "name", name, "error", err)
			continue
		}

		m.mu.Lock()
		m.providers[name] = provider
		m.mu.Unlock()
	}

	m.CheckAvailability(ctx)

	slog.Info("provider manager initialized",
		"enabled", attempted,
		"initialized", m.ProviderCount(),
		"available", len(m.AvailableProviders()),
	)

	if attempted > 0 && len(failures) == attempted {
		return fmt.Errorf("all %d enabled provider(s) failed to initialize", attempted)
	}
	return nil
}

// Register adds an already-constructed and initialized adapter to the
// manager and marks it available. An existing adapter with the same name
// is closed and replaced.
func (m *Manager) Register(provider providers.Provider) {
	name := provider.GetName()

	m.mu.Lock()
	if existing, ok := m.providers[name]; ok {
		slog.Warn("replacing existing provider", "name", name)
		existing.Close()
	}
	m.providers[name] = provider
	m.available[name] = true
	m.mu.Unlock()

	slog.Debug("provider registered", "name", name)
}

// CheckAvailability probes every constructed adapter concurrently and
// swaps in a freshly built availability set. Adapters without a
// reachability probe (the cloud vendors) count as available. Readers
// never observe a partially built set.
func (m *Manager) CheckAvailability(ctx context.Context) {
	m.mu.RLock()
	snapshot := make(map[string]providers.Provider, len(m.providers))
	for name, provider := range m.providers {
		snapshot[name] = provider
	}
	m.mu.RUnlock()

	fresh := make(map[string]bool, len(snapshot))
	var freshMu sync.Mutex
	var wg sync.WaitGroup

	for name, provider := range snapshot {
		wg.Add(1)
		go func(name string, provider providers.Provider) {
			defer wg.Done()

			ok := true
			if validator, is := provider.(providers.ConnectionValidator); is {
				ok = probe(ctx, name, validator)
			}

			if ok {
				freshMu.Lock()
				fresh[name] = true
				freshMu.Unlock()
			} else {
				slog.Debug("provider unavailable", "name", name)
			}
		}(name, provider)
	}
	wg.Wait()

	m.mu.Lock()
	m.available = fresh
	m.mu.Unlock()

	slog.Debug("availability check complete",
		"providers", len(snapshot),
		"available", len(fresh),
	)
}

// probe runs a single reachability check. A panic inside an adapter's
// ValidateConnection marks that adapter unavailable without disturbing
// the probes running for its siblings.
func probe(ctx context.Context, name string, validator providers.ConnectionValidator) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("availability probe panicked", "name", name, "panic", r)
			ok = false
		}
	}()
	return validator.ValidateConnection(ctx)
}

// RefreshAvailability re-runs the availability check on demand, e.g.
// from the health monitor, the config watcher, or the CLI.
func (m *Manager) RefreshAvailability(ctx context.Context) {
	m.CheckAvailability(ctx)
}

// SelectOptimalProvider picks a provider for a task under the given
// priority mode. It walks the mode's fixed preference ordering and
// returns the first available name; when the ordering misses entirely it
// falls back to an arbitrary available provider. Returns ("", false)
// when nothing is available. An unknown mode uses the auto ordering.
func (m *Manager) SelectOptimalProvider(taskType, priorityMode string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ordering, ok := priorityOrderings[priorityMode]
	if !ok {
		ordering = priorityOrderings["auto"]
	}

	for _, name := range ordering {
		if m.available[name] {
			slog.Debug("provider selected",
				"name", name,
				"task_type", taskType,
				"priority_mode", priorityMode,
			)
			return name, true
		}
	}

	for name := range m.available {
		slog.Debug("provider selected by fallback",
			"name", name,
			"task_type", taskType,
			"priority_mode", priorityMode,
		)
		return name, true
	}

	return "", false
}

// GetAvailableModels aggregates the model catalogs of all available
// providers into a flat listing. A provider whose catalog call fails is
// skipped rather than failing the aggregation.
func (m *Manager) GetAvailableModels(ctx context.Context) []providers.ModelInfo {
	m.mu.RLock()
	names := make([]string, 0, len(m.available))
	for name := range m.available {
		names = append(names, name)
	}
	snapshot := make(map[string]providers.Provider, len(names))
	for _, name := range names {
		snapshot[name] = m.providers[name]
	}
	m.mu.RUnlock()

	sort.Strings(names)

	var infos []providers.ModelInfo
	for _, name := range names {
		provider := snapshot[name]
		if provider == nil {
			continue
		}

		models, err := provider.GetModels(ctx)
		if err != nil {
			slog.Debug("skipping provider with failing catalog", "name", name, "error", err)
			continue
		}

		capabilities := []string{"chat", "code"}
		if _, ok := provider.(providers.VisionProvider); ok {
			capabilities = append(capabilities, "vision")
		}

		for _, model := range models {
			infos = append(infos, providers.ModelInfo{
				ID:           fmt.Sprintf("%s-%s", name, model),
				Name:         model,
				Provider:     name,
				Capabilities: capabilities,
				Available:    true,
			})
		}
	}

	return infos
}

// GetProvider returns a constructed provider by name.
func (m *Manager) GetProvider(name string) (providers.Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	provider, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not found", name)
	}

	return provider, nil
}

// GetProviders returns a map of all constructed providers.
// The returned map is a copy and safe to modify.
func (m *Manager) GetProviders() map[string]providers.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]providers.Provider, len(m.providers))
	for name, provider := range m.providers {
		out[name] = provider
	}

	return out
}

// GetProviderNames returns the names of all constructed providers,
// sorted for stable output.
func (m *Manager) GetProviderNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// ProviderCount returns the number of constructed providers.
func (m *Manager) ProviderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.providers)
}

// IsAvailable reports whether the named provider passed the most recent
// availability check.
func (m *Manager) IsAvailable(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.available[name]
}

// AvailableProviders returns the names of currently available
// providers, sorted for stable output.
func (m *Manager) AvailableProviders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.available))
	for name := range m.available {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Close closes all adapters and clears the manager. Adapters hold no
// persistent connections, so this only releases idle pool entries.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var failures []error
	for name, provider := range m.providers {
		if err := provider.Close(); err != nil {
			failures = append(failures, fmt.Errorf("failed to close provider %q: %w", name, err))
		}
	}

	m.providers = make(map[string]providers.Provider)
	m.available = make(map[string]bool)

	if len(failures) > 0 {
		return fmt.Errorf("errors closing providers: %v", failures)
	}

	slog.Info("provider manager closed")
	return nil
}
