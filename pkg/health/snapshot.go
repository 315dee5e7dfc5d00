package health

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// snapshotFile is the on-disk JSON layout of the health snapshot.
type snapshotFile struct {
	SavedAt time.Time       `json:"saved_at"`
	Monitor snapshotMonitor `json:"monitor"`
	Health  *SystemHealth   `json:"health"`
}

// snapshotMonitor records the settings that produced the snapshot, for
// operator context when reading the file.
type snapshotMonitor struct {
	Interval      string `json:"interval"`
	ProbeTimeout  string `json:"probe_timeout"`
	RetryAttempts int    `json:"retry_attempts"`
}

// persistSnapshot writes the aggregate picture to the configured path
// via a temp file and rename, so a crash mid-write never leaves a
// truncated snapshot. Failures are logged, never surfaced: the
// snapshot is advisory.
func (m *Monitor) persistSnapshot(sys *SystemHealth) {
	if m.cfg.SnapshotPath == "" {
		return
	}

	payload := snapshotFile{
		SavedAt: time.Now(),
		Monitor: snapshotMonitor{
			Interval:      m.cfg.Interval.String(),
			ProbeTimeout:  m.cfg.ProbeTimeout.String(),
			RetryAttempts: m.cfg.RetryAttempts,
		},
		Health: sys,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		m.logger.Warn("health snapshot encode failed", "error", err)
		return
	}

	dir := filepath.Dir(m.cfg.SnapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("health snapshot dir create failed", "path", dir, "error", err)
		return
	}

	tmp, err := os.CreateTemp(dir, ".health-*.json")
	if err != nil {
		m.logger.Warn("health snapshot write failed", "error", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		m.logger.Warn("health snapshot write failed", "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		m.logger.Warn("health snapshot write failed", "error", err)
		return
	}
	if err := os.Rename(tmpName, m.cfg.SnapshotPath); err != nil {
		os.Remove(tmpName)
		m.logger.Warn("health snapshot rename failed", "error", err)
		return
	}

	m.logger.Debug("health snapshot written", "path", m.cfg.SnapshotPath)
}

// loadSnapshot seeds the record map from the last persisted snapshot.
// Statuses are taken as written; LastCheck tells readers how stale
// they are. A missing or unreadable file is not an error.
func (m *Monitor) loadSnapshot() {
	if m.cfg.SnapshotPath == "" {
		return
	}

	data, err := os.ReadFile(m.cfg.SnapshotPath)
	if err != nil {
		return
	}

	var payload snapshotFile
	if err := json.Unmarshal(data, &payload); err != nil {
		m.logger.Warn("health snapshot unreadable, ignoring",
			"path", m.cfg.SnapshotPath,
			"error", err,
		)
		return
	}
	if payload.Health == nil {
		return
	}

	m.mu.Lock()
	for name, record := range payload.Health.Providers {
		m.records[name] = record
	}
	m.mu.Unlock()

	m.logger.Debug("health snapshot loaded",
		"path", m.cfg.SnapshotPath,
		"providers", len(payload.Health.Providers),
		"saved_at", payload.SavedAt,
	)
}
