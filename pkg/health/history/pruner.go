package history

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PrunerConfig contains configuration for the history pruner.
type PrunerConfig struct {
	// RetentionDays is how many days of history to keep.
	// Default: 14
	RetentionDays int

	// Schedule is the cron expression for the pruning job.
	//
	// Common expressions:
	//   - "0 3 * * *"   - daily at 03:00
	//   - "0 */6 * * *" - every 6 hours
	//   - "0 0 * * 0"   - weekly on Sunday at midnight
	//
	// Default: "0 3 * * *"
	Schedule string
}

func (c PrunerConfig) withDefaults() PrunerConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 14
	}
	if c.Schedule == "" {
		c.Schedule = "0 3 * * *"
	}
	return c
}

// Pruner deletes history rows older than the retention window on a cron
// schedule.
type Pruner struct {
	store  *Store
	cfg    PrunerConfig
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewPruner creates a pruner for the given store.
func NewPruner(store *Store, cfg PrunerConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:  store,
		cfg:    cfg.withDefaults(),
		cron:   cron.New(),
		logger: logger.With("component", "health.pruner"),
	}
}

// Start validates the schedule and begins periodic pruning. The pruner
// stops when ctx is cancelled or Stop is called.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return nil
	}

	if _, err := cron.ParseStandard(p.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.cfg.Schedule, err)
	}

	_, err := p.cron.AddFunc(p.cfg.Schedule, func() {
		if _, err := p.RunOnce(ctx); err != nil {
			p.logger.Error("scheduled history pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("history pruner started",
		"schedule", p.cfg.Schedule,
		"retention_days", p.cfg.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// RunOnce prunes immediately and returns the number of rows deleted.
func (p *Pruner) RunOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.cfg.RetentionDays)

	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		p.logger.Info("pruned health history",
			"deleted_rows", deleted,
			"retention_days", p.cfg.RetentionDays,
		)
	} else {
		p.logger.Debug("no history rows past retention",
			"retention_days", p.cfg.RetentionDays,
		)
	}
	return deleted, nil
}

// Stop halts scheduling and waits for a running prune to finish. Stop is
// safe to call more than once.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	<-p.cron.Stop().Done()
	p.running = false
	p.logger.Info("history pruner stopped")
}

// IsRunning reports whether the pruner is scheduled.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}

// NextRun returns the next scheduled prune time, or nil when the pruner
// is not running.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
