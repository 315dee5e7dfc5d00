package providerfactory

import (
	"context"
	"errors"
	"strings"
	"testing"

	mocks "switchyard-ai/switchyard/internal/routing"
	"switchyard-ai/switchyard/pkg/config"
	"switchyard-ai/switchyard/pkg/providers"
)

func boolPtr(b bool) *bool {
	return &b
}

// cloudOnlyConfig builds a config with the given cloud keys and all
// local runtimes disabled, so tests never probe localhost.
func cloudOnlyConfig(keys map[string]string) *config.Config {
	cfg := config.DefaultConfig()
	for name, key := range keys {
		cfg.Providers[name] = config.ProviderConfig{APIKey: key}
	}
	for _, name := range []string{"ollama", "lmstudio", "vllm"} {
		cfg.Providers[name] = config.ProviderConfig{Enabled: boolPtr(false)}
	}
	return cfg
}

// seed installs a provider directly, bypassing Initialize, for
// white-box tests of selection and aggregation.
func seed(m *Manager, p providers.Provider, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.GetName()] = p
	if available {
		m.available[p.GetName()] = true
	}
}

func TestManager_Initialize_CloudProviders(t *testing.T) {
	cfg := cloudOnlyConfig(map[string]string{
		"openai":    "test-key",
		"anthropic": "test-key",
	})

	m := NewManager()
	defer m.Close()

	if err := m.Initialize(context.Background(), cfg); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	if m.ProviderCount() != 2 {
		t.Errorf("expected 2 providers, got %d", m.ProviderCount())
	}

	// Cloud adapters carry no probe, so they count as available
	if !m.IsAvailable("openai") {
		t.Error("openai should be available")
	}
	if !m.IsAvailable("anthropic") {
		t.Error("anthropic should be available")
	}

	available := m.AvailableProviders()
	if len(available) != 2 || available[0] != "anthropic" || available[1] != "openai" {
		t.Errorf("expected sorted [anthropic openai], got %v", available)
	}
}

func TestManager_Initialize_CollectsFailuresWithoutAborting(t *testing.T) {
	cfg := cloudOnlyConfig(map[string]string{
		"anthropic": "test-key",
	})
	// Force-enable openai without a key so its Initialize fails
	cfg.Providers["openai"] = config.ProviderConfig{Enabled: boolPtr(true)}

	m := NewManager()
	defer m.Close()

	if err := m.Initialize(context.Background(), cfg); err != nil {
		t.Fatalf("partial failure should not return an error, got: %v", err)
	}

	if m.ProviderCount() != 1 {
		t.Errorf("expected 1 provider after sibling failure, got %d", m.ProviderCount())
	}
	if _, err := m.GetProvider("anthropic"); err != nil {
		t.Errorf("anthropic should have survived openai's failure: %v", err)
	}
	if _, err := m.GetProvider("openai"); err == nil {
		t.Error("openai should not be registered after init failure")
	}
}

func TestManager_Initialize_AllFailed(t *testing.T) {
	cfg := cloudOnlyConfig(nil)
	cfg.Providers["openai"] = config.ProviderConfig{Enabled: boolPtr(true)}
	cfg.Providers["gemini"] = config.ProviderConfig{Enabled: boolPtr(true)}

	m := NewManager()
	defer m.Close()

	err := m.Initialize(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error when every enabled provider fails")
	}
	if !strings.Contains(err.Error(), "failed to initialize") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestManager_Initialize_NothingEnabled(t *testing.T) {
	cfg := cloudOnlyConfig(nil)

	m := NewManager()
	defer m.Close()

	if err := m.Initialize(context.Background(), cfg); err != nil {
		t.Fatalf("no enabled providers should not be an error, got: %v", err)
	}
	if m.ProviderCount() != 0 {
		t.Errorf("expected 0 providers, got %d", m.ProviderCount())
	}
	if _, ok := m.SelectOptimalProvider("chat", "auto"); ok {
		t.Error("selection should fail with no providers")
	}
}

func TestManager_CheckAvailability_RebuildAndSwap(t *testing.T) {
	m := NewManager()
	defer m.Close()

	local := mocks.NewMockLocalProvider("ollama")
	cloud := mocks.NewMockProvider("openai")
	seed(m, local, false)
	seed(m, cloud, false)

	m.CheckAvailability(context.Background())

	if !m.IsAvailable("ollama") {
		t.Error("reachable local provider should be available")
	}
	if !m.IsAvailable("openai") {
		t.Error("cloud provider without probe should default to available")
	}

	// Daemon goes away: the next check rebuilds the set from scratch
	local.SetReachable(false)
	m.CheckAvailability(context.Background())

	if m.IsAvailable("ollama") {
		t.Error("unreachable local provider should drop out of the set")
	}
	if !m.IsAvailable("openai") {
		t.Error("cloud provider should remain available")
	}
}

func TestManager_CheckAvailability_PanickingProbe(t *testing.T) {
	m := NewManager()
	defer m.Close()

	broken := mocks.NewMockLocalProvider("vllm")
	broken.SetProbePanic("nil deref in adapter")
	seed(m, broken, false)
	seed(m, mocks.NewMockLocalProvider("ollama"), false)
	seed(m, mocks.NewMockProvider("openai"), false)

	m.CheckAvailability(context.Background())

	if m.IsAvailable("vllm") {
		t.Error("provider with a panicking probe should be unavailable")
	}
	if !m.IsAvailable("ollama") {
		t.Error("sibling local provider should be unaffected by the panic")
	}
	if !m.IsAvailable("openai") {
		t.Error("sibling cloud provider should be unaffected by the panic")
	}
}

func TestManager_SelectOptimalProvider_Orderings(t *testing.T) {
	m := NewManager()
	defer m.Close()

	seed(m, mocks.NewMockProvider("anthropic"), true)
	seed(m, mocks.NewMockLocalProvider("ollama"), true)

	tests := []struct {
		mode string
		want string
	}{
		{"auto", "anthropic"},
		{"privacy-first", "ollama"},
		{"performance", "anthropic"},
		{"cost-effective", "ollama"},
		{"unknown-mode", "anthropic"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, ok := m.SelectOptimalProvider("chat", tt.mode)
			if !ok {
				t.Fatalf("expected a selection in mode %q", tt.mode)
			}
			if got != tt.want {
				t.Errorf("mode %q selected %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestManager_SelectOptimalProvider_SkipsUnavailable(t *testing.T) {
	m := NewManager()
	defer m.Close()

	// openai leads the auto ordering but is currently unavailable
	seed(m, mocks.NewMockProvider("openai"), false)
	seed(m, mocks.NewMockProvider("anthropic"), true)
	seed(m, mocks.NewMockLocalProvider("ollama"), true)

	got, ok := m.SelectOptimalProvider("chat", "auto")
	if !ok {
		t.Fatal("expected a selection")
	}
	if got != "anthropic" {
		t.Errorf("expected the next available name in the ordering, got %q", got)
	}
}

func TestManager_SelectOptimalProvider_Fallback(t *testing.T) {
	m := NewManager()
	defer m.Close()

	// A name outside every ordering still gets picked up by the fallback
	seed(m, mocks.NewMockProvider("custom"), true)

	got, ok := m.SelectOptimalProvider("chat", "auto")
	if !ok {
		t.Fatal("expected fallback selection")
	}
	if got != "custom" {
		t.Errorf("expected fallback to %q, got %q", "custom", got)
	}
}

func TestManager_SelectOptimalProvider_NoneAvailable(t *testing.T) {
	m := NewManager()
	defer m.Close()

	// Constructed but unavailable providers must not be selected
	seed(m, mocks.NewMockProvider("openai"), false)

	if name, ok := m.SelectOptimalProvider("chat", "auto"); ok {
		t.Errorf("expected no selection, got %q", name)
	}
}

func TestManager_GetAvailableModels(t *testing.T) {
	m := NewManager()
	defer m.Close()

	chat := mocks.NewMockProvider("groq")
	chat.SetModels([]string{"llama-3.3-70b-versatile"})
	seed(m, chat, true)

	vision := mocks.NewMockVisionProvider("openai")
	vision.SetModels([]string{"gpt-4o", "gpt-4o-mini"})
	seed(m, vision, true)

	broken := mocks.NewMockProvider("gemini")
	broken.SetModelsError(errors.New("catalog unavailable"))
	seed(m, broken, true)

	// Constructed but unavailable: excluded from the listing
	offline := mocks.NewMockLocalProvider("ollama")
	seed(m, offline, false)

	infos := m.GetAvailableModels(context.Background())

	if len(infos) != 3 {
		t.Fatalf("expected 3 models, got %d: %+v", len(infos), infos)
	}

	// Sorted by provider name: groq before openai
	if infos[0].ID != "groq-llama-3.3-70b-versatile" {
		t.Errorf("expected first id %q, got %q", "groq-llama-3.3-70b-versatile", infos[0].ID)
	}
	if infos[1].Provider != "openai" || infos[1].Name != "gpt-4o" {
		t.Errorf("unexpected second entry: %+v", infos[1])
	}
	if !infos[1].Available {
		t.Error("aggregated models should be marked available")
	}

	hasVision := false
	for _, capability := range infos[1].Capabilities {
		if capability == "vision" {
			hasVision = true
		}
	}
	if !hasVision {
		t.Error("vision-capable provider should advertise the vision capability")
	}

	for _, info := range infos {
		if info.Provider == "gemini" {
			t.Error("provider with failing catalog should be skipped")
		}
		if info.Provider == "ollama" {
			t.Error("unavailable provider should be skipped")
		}
	}
}

func TestManager_GetProviders_ReturnsCopy(t *testing.T) {
	m := NewManager()
	defer m.Close()

	seed(m, mocks.NewMockProvider("openai"), true)

	got := m.GetProviders()
	delete(got, "openai")

	if m.ProviderCount() != 1 {
		t.Error("mutating the returned map must not affect the manager")
	}
}

func TestManager_Close(t *testing.T) {
	m := NewManager()

	mock := mocks.NewMockProvider("openai")
	seed(m, mock, true)

	if err := m.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if !mock.Closed() {
		t.Error("Close() should close the adapters")
	}
	if m.ProviderCount() != 0 {
		t.Errorf("expected empty manager after Close, got %d providers", m.ProviderCount())
	}
	if len(m.AvailableProviders()) != 0 {
		t.Error("expected empty availability set after Close")
	}
}

func TestManager_RefreshAvailability(t *testing.T) {
	m := NewManager()
	defer m.Close()

	local := mocks.NewMockLocalProvider("lmstudio")
	local.SetReachable(false)
	seed(m, local, false)

	m.RefreshAvailability(context.Background())
	if m.IsAvailable("lmstudio") {
		t.Error("unreachable provider should stay unavailable")
	}

	// Server comes up between checks
	local.SetReachable(true)
	m.RefreshAvailability(context.Background())
	if !m.IsAvailable("lmstudio") {
		t.Error("provider should become available after refresh")
	}
}

func TestManager_Register(t *testing.T) {
	m := NewManager()
	defer m.Close()

	first := mocks.NewMockProvider("groq")
	m.Register(first)

	if m.ProviderCount() != 1 {
		t.Fatalf("expected 1 provider, got %d", m.ProviderCount())
	}
	if !m.IsAvailable("groq") {
		t.Error("registered provider should be available")
	}
	got, err := m.GetProvider("groq")
	if err != nil {
		t.Fatalf("GetProvider() failed: %v", err)
	}
	if got != providers.Provider(first) {
		t.Error("GetProvider() should return the registered adapter")
	}

	// Registering the same name replaces and closes the old adapter
	second := mocks.NewMockProvider("groq")
	m.Register(second)

	if !first.Closed() {
		t.Error("replaced adapter should be closed")
	}
	if m.ProviderCount() != 1 {
		t.Errorf("expected 1 provider after replacement, got %d", m.ProviderCount())
	}
	got, err = m.GetProvider("groq")
	if err != nil {
		t.Fatalf("GetProvider() failed: %v", err)
	}
	if got != providers.Provider(second) {
		t.Error("GetProvider() should return the replacement adapter")
	}
}
