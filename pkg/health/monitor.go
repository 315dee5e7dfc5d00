package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"switchyard-ai/switchyard/pkg/providers"
	"switchyard-ai/switchyard/pkg/telemetry/metrics"
)

// errorRateAlpha is the weight of the newest check run in the rolling
// error rate.
const errorRateAlpha = 0.2

var errRuntimeUnreachable = errors.New("runtime unreachable")

// ProviderSource supplies the provider set to probe. The provider
// manager implements it.
type ProviderSource interface {
	// GetProviders returns a copy of the constructed adapters by name.
	GetProviders() map[string]providers.Provider

	// RefreshAvailability re-probes routing availability. The monitor
	// calls it after every check run so routing and the health records
	// describe the same moment.
	RefreshAvailability(ctx context.Context)
}

// rolling accumulates per-provider probe statistics across check runs.
type rolling struct {
	totalChecks   int64
	successChecks int64
	totalProbes   int64
	errorRate     float64
	avgResponseMS float64
}

func (r rolling) uptime() float64 {
	if r.totalChecks == 0 {
		return 0
	}
	return float64(r.successChecks) / float64(r.totalChecks)
}

// Monitor periodically probes every constructed provider and maintains
// the authoritative health records. It is the single writer of the
// record map; readers always receive copies.
//
// Example:
//
//	monitor := health.NewMonitor(manager, health.MonitorConfig{}, collector, nil)
//	monitor.Start(ctx)
//	defer monitor.Stop()
//
//	sys := monitor.GetSystemHealth()
//	fmt.Println(sys.Overall)
type Monitor struct {
	source    ProviderSource
	cfg       MonitorConfig
	collector *metrics.Collector
	logger    *slog.Logger

	mu      sync.RWMutex
	records map[string]ProviderHealthRecord
	stats   map[string]*rolling
	history HistorySink

	started   atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startedAt time.Time
}

// NewMonitor creates a monitor over the given provider source. The
// collector may be nil to disable metrics; logger nil means
// slog.Default. When a snapshot from a previous session exists at
// cfg.SnapshotPath it seeds the records, so health queries before the
// first run return the previous picture instead of nothing.
func NewMonitor(source ProviderSource, cfg MonitorConfig, collector *metrics.Collector, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Monitor{
		source:    source,
		cfg:       cfg.withDefaults(),
		collector: collector,
		logger:    logger,
		records:   make(map[string]ProviderHealthRecord),
		stats:     make(map[string]*rolling),
		stop:      make(chan struct{}),
		startedAt: time.Now(),
	}
	m.loadSnapshot()
	return m
}

// SetHistorySink attaches a durable store for check results. Call it
// before Start; a nil sink disables persistence.
func (m *Monitor) SetHistorySink(sink HistorySink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = sink
}

// Start launches the periodic loop: one immediate check run, then one
// every Interval. Calling Start again is a no-op. The loop ends when
// ctx is cancelled or Stop is called; a stopped monitor does not
// restart.
func (m *Monitor) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.PerformHealthCheck(ctx)

		ticker := time.NewTicker(m.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stop:
				return
			case <-ticker.C:
				m.PerformHealthCheck(ctx)
			}
		}
	}()

	m.logger.Info("health monitor started",
		"interval", m.cfg.Interval,
		"probe_timeout", m.cfg.ProbeTimeout,
		"retry_attempts", m.cfg.RetryAttempts,
	)
}

// Stop ends the periodic loop and waits for an in-flight run to
// finish. Safe to call multiple times, and before Start.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.wg.Wait()
}

// PerformHealthCheck probes every provider concurrently and publishes
// the fresh record set in one swap. One provider's failure never
// disturbs the others. Side effects after the swap are best-effort:
// prometheus updates, the JSON snapshot, the history append, and an
// availability refresh.
func (m *Monitor) PerformHealthCheck(ctx context.Context) {
	adapters := m.source.GetProviders()
	if len(adapters) == 0 {
		m.logger.Debug("health check skipped, no providers constructed")
		return
	}

	runID := uuid.NewString()
	start := time.Now()

	fresh := make(map[string]ProviderHealthRecord, len(adapters))
	var freshMu sync.Mutex
	var wg sync.WaitGroup

	for name, p := range adapters {
		wg.Add(1)
		go func(name string, p providers.Provider) {
			defer wg.Done()

			record := m.CheckProviderHealth(ctx, name, p)

			freshMu.Lock()
			fresh[name] = record
			freshMu.Unlock()
		}(name, p)
	}
	wg.Wait()

	m.mu.Lock()
	m.records = fresh
	history := m.history
	m.mu.Unlock()

	for name, record := range fresh {
		m.collector.UpdateProviderHealth(name, string(record.Status))
		m.collector.RecordHealthCheck(name, string(record.Status))
	}

	sys := m.GetSystemHealth()
	m.logger.Info("health check complete",
		"run_id", runID,
		"providers", len(fresh),
		"overall", sys.Overall,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	m.persistSnapshot(sys)

	if history != nil {
		records := make([]ProviderHealthRecord, 0, len(fresh))
		for _, record := range fresh {
			records = append(records, record)
		}
		if err := history.AppendChecks(ctx, runID, sys.CheckedAt, records); err != nil {
			m.logger.Warn("health history append failed", "run_id", runID, "error", err)
		}
		if err := history.AppendSnapshot(ctx, runID, sys); err != nil {
			m.logger.Warn("health history snapshot failed", "run_id", runID, "error", err)
		}
	}

	m.source.RefreshAvailability(ctx)
}

// CheckProviderHealth probes one provider with retries and returns its
// fresh record. Local runtimes answer via ValidateConnection; cloud
// adapters list their catalog instead, so a probe never makes a
// billable chat call. The backoff between attempts is linear
// (RetryDelay, then 2x, 3x), unlike the adapters' exponential request
// backoff.
func (m *Monitor) CheckProviderHealth(ctx context.Context, name string, p providers.Provider) ProviderHealthRecord {
	var (
		attempts int64
		latency  time.Duration
	)

	backoff := retry.WithMaxRetries(uint64(m.cfg.RetryAttempts-1), linearBackoff(m.cfg.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
		defer cancel()

		attemptStart := time.Now()
		if err := m.probe(probeCtx, p); err != nil {
			if ctx.Err() != nil {
				return err
			}
			return retry.RetryableError(err)
		}
		latency = time.Since(attemptStart)
		return nil
	})

	now := time.Now()
	stats := m.updateStats(name, attempts, err == nil, latency)

	record := ProviderHealthRecord{
		Provider:  name,
		LastCheck: now,
		Uptime:    stats.uptime(),
		Metadata: Metadata{
			TotalRequests:       stats.totalProbes,
			ErrorRate:           stats.errorRate,
			AverageResponseTime: int64(stats.avgResponseMS),
			LastRequest:         now,
		},
	}

	if err != nil {
		record.Status = StatusOffline
		record.Error = err.Error()
		m.logger.Warn("provider offline",
			"provider", name,
			"attempts", attempts,
			"error", err,
		)
		return record
	}

	record.ResponseTime = latency.Milliseconds()
	record.Status = m.classify(latency, stats.errorRate)
	m.logger.Debug("provider probed",
		"provider", name,
		"status", record.Status,
		"response_ms", record.ResponseTime,
	)
	return record
}

// GetSystemHealth assembles the aggregate picture from the current
// records. Safe for concurrent use.
func (m *Monitor) GetSystemHealth() *SystemHealth {
	records := m.Records()
	return &SystemHealth{
		Overall:         overallStatus(records),
		Providers:       records,
		Recommendations: recommendations(records),
		CheckedAt:       time.Now(),
		Uptime:          time.Since(m.startedAt).Milliseconds(),
	}
}

// GetProviderHealth returns the current record for one provider.
func (m *Monitor) GetProviderHealth(name string) (ProviderHealthRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[name]
	return record, ok
}

// Records returns a copy of every current provider record.
func (m *Monitor) Records() map[string]ProviderHealthRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]ProviderHealthRecord, len(m.records))
	for name, record := range m.records {
		out[name] = record
	}
	return out
}

// probe answers whether the provider is reachable right now. A panic
// inside the adapter surfaces as a failed attempt; sibling probes in
// the same check run are unaffected.
func (m *Monitor) probe(ctx context.Context, p providers.Provider) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()

	if validator, ok := p.(providers.ConnectionValidator); ok {
		if !validator.ValidateConnection(ctx) {
			return errRuntimeUnreachable
		}
		return nil
	}
	_, err = p.GetModels(ctx)
	return err
}

// classify maps a successful probe onto a status from the latency and
// rolling error-rate thresholds.
func (m *Monitor) classify(latency time.Duration, errorRate float64) Status {
	switch {
	case latency > m.cfg.CriticalLatency || errorRate > m.cfg.CriticalErrorRate:
		return StatusCritical
	case latency > m.cfg.DegradedLatency || errorRate > m.cfg.DegradedErrorRate:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// updateStats folds one check run outcome into the provider's rolling
// statistics and returns a copy.
func (m *Monitor) updateStats(name string, attempts int64, success bool, latency time.Duration) rolling {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stats[name]
	if !ok {
		st = &rolling{}
		m.stats[name] = st
	}

	st.totalChecks++
	st.totalProbes += attempts

	sample := 1.0
	if success {
		sample = 0.0
		st.successChecks++
		// Running mean over successful probes only.
		ms := float64(latency.Milliseconds())
		st.avgResponseMS += (ms - st.avgResponseMS) / float64(st.successChecks)
	}
	st.errorRate = clamp01((1-errorRateAlpha)*st.errorRate + errorRateAlpha*sample)

	return *st
}

// overallStatus folds the provider records into one classification.
// With no records nothing can serve a request, which counts as
// critical.
func overallStatus(records map[string]ProviderHealthRecord) Status {
	if len(records) == 0 {
		return StatusCritical
	}

	offline := 0
	anyCritical := false
	anyDegraded := false
	for _, record := range records {
		switch record.Status {
		case StatusOffline:
			offline++
		case StatusCritical:
			anyCritical = true
		case StatusDegraded:
			anyDegraded = true
		}
	}

	switch {
	case offline == len(records), anyCritical, offline*2 > len(records):
		return StatusCritical
	case anyDegraded:
		return StatusDegraded
	default:
		return StatusHealthy
	}
}

// linearBackoff waits base, then 2x base, then 3x base between
// attempts.
func linearBackoff(base time.Duration) retry.Backoff {
	var attempt int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * base, false
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
