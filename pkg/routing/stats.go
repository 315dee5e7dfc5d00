package routing

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks routing activity with atomic counters, so the hot path
// never takes a lock.
//
// Every routing pass records one request and exactly one outcome, so
// TotalRequests equals Successes plus Failures once in-flight passes
// settle.
type Stats struct {
	// totalRequests counts every routing pass, including ones that
	// fail validation or selection.
	totalRequests atomic.Int64

	// successes counts passes that returned a response.
	successes atomic.Int64

	// failures counts passes that returned an error.
	failures atomic.Int64

	// requestsPerProvider counts dispatches per provider.
	requestsPerProvider sync.Map // map[string]*atomic.Int64

	// requestsPerTask counts passes per task type.
	requestsPerTask sync.Map // map[string]*atomic.Int64

	// retries counts second-phase dispatches with a pinned model.
	retries atomic.Int64

	// lastDecision is the most recent routing decision.
	lastDecision atomic.Pointer[RoutingDecision]

	// mu protects lastReset.
	mu        sync.RWMutex
	lastReset time.Time
}

// StatsSnapshot is a point-in-time copy of the statistics, safe to
// read and serialize without synchronization.
type StatsSnapshot struct {
	TotalRequests       int64            `json:"total_requests"`
	Successes           int64            `json:"successes"`
	Failures            int64            `json:"failures"`
	Retries             int64            `json:"retries"`
	RequestsPerProvider map[string]int64 `json:"requests_per_provider"`
	RequestsPerTask     map[string]int64 `json:"requests_per_task"`
	LastDecision        *RoutingDecision `json:"last_decision,omitempty"`
	Since               time.Time        `json:"since"`
}

// NewStats creates a statistics tracker.
func NewStats() *Stats {
	return &Stats{
		lastReset: time.Now(),
	}
}

// RecordRequest counts the start of a routing pass.
func (s *Stats) RecordRequest() {
	s.totalRequests.Add(1)
}

// RecordDecision records a completed selection: the provider, the task
// type, and the decision itself. The decision must not be mutated
// after this call.
func (s *Stats) RecordDecision(decision *RoutingDecision) {
	incMapCounter(&s.requestsPerProvider, decision.Provider)
	incMapCounter(&s.requestsPerTask, string(decision.TaskType))
	s.lastDecision.Store(decision)
}

// RecordSuccess records a completed dispatch.
func (s *Stats) RecordSuccess() {
	s.successes.Add(1)
}

// RecordFailure records a failed dispatch.
func (s *Stats) RecordFailure() {
	s.failures.Add(1)
}

// RecordRetry records a second-phase dispatch with a pinned model.
func (s *Stats) RecordRetry() {
	s.retries.Add(1)
}

// Snapshot returns a point-in-time copy of the statistics.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.RLock()
	since := s.lastReset
	s.mu.RUnlock()

	perProvider := make(map[string]int64)
	s.requestsPerProvider.Range(func(key, value any) bool {
		perProvider[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	perTask := make(map[string]int64)
	s.requestsPerTask.Range(func(key, value any) bool {
		perTask[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})

	return StatsSnapshot{
		TotalRequests:       s.totalRequests.Load(),
		Successes:           s.successes.Load(),
		Failures:            s.failures.Load(),
		Retries:             s.retries.Load(),
		RequestsPerProvider: perProvider,
		RequestsPerTask:     perTask,
		LastDecision:        s.lastDecision.Load(),
		Since:               since,
	}
}

// Reset zeroes all counters and clears the last decision.
func (s *Stats) Reset() {
	s.totalRequests.Store(0)
	s.successes.Store(0)
	s.failures.Store(0)
	s.retries.Store(0)
	s.lastDecision.Store(nil)

	s.requestsPerProvider.Range(func(key, value any) bool {
		s.requestsPerProvider.Delete(key)
		return true
	})
	s.requestsPerTask.Range(func(key, value any) bool {
		s.requestsPerTask.Delete(key)
		return true
	})

	s.mu.Lock()
	s.lastReset = time.Now()
	s.mu.Unlock()
}

// incMapCounter bumps the named counter, creating it on first use.
func incMapCounter(m *sync.Map, key string) {
	val, _ := m.LoadOrStore(key, &atomic.Int64{})
	val.(*atomic.Int64).Add(1)
}
