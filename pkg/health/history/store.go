package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"switchyard-ai/switchyard/pkg/health"
)

// Config contains configuration for the history store.
type Config struct {
	// Path is the SQLite database file location. Missing parent
	// directories are created on open.
	Path string

	// BusyTimeout bounds how long SQLite waits on a locked database
	// before failing a statement.
	// Default: 5s
	BusyTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
	return c
}

// Store persists health check results to a local SQLite database. It
// implements health.HistorySink: the monitor appends one row per provider
// per check run plus one aggregate snapshot per run.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open opens the history database at cfg.Path, creating the file and
// schema when missing.
func Open(cfg Config, logger *slog.Logger) (*Store, error) {
	cfg = cfg.withDefaults()
	if cfg.Path == "" {
		return nil, fmt.Errorf("history database path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// The monitor is the sole writer; a single connection keeps
	// SQLITE_BUSY out of the append path.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		path:   cfg.Path,
		logger: logger.With("component", "health.history"),
	}
	if err := s.initialize(cfg.BusyTimeout); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize applies pragmas, creates the schema and verifies its version.
func (s *Store) initialize(busyTimeout time.Duration) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("history schema version mismatch: database has %d, expected %d", version, SchemaVersion)
	}

	s.logger.Debug("history database ready",
		"path", s.path,
		"schema_version", version,
	)
	return nil
}

// AppendChecks records one row per provider probed during a check run.
func (s *Store) AppendChecks(ctx context.Context, runID string, checkedAt time.Time, records []health.ProviderHealthRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history append: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		_, err := tx.ExecContext(ctx, insertCheck,
			runID,
			rec.Provider,
			string(rec.Status),
			rec.ResponseTime,
			rec.Uptime,
			rec.Metadata.ErrorRate,
			nullable(rec.Error),
			checkedAt.UnixMilli(),
		)
		if err != nil {
			return fmt.Errorf("failed to append check for %s: %w", rec.Provider, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history append: %w", err)
	}
	return nil
}

// AppendSnapshot records the aggregate system view for a check run.
func (s *Store) AppendSnapshot(ctx context.Context, runID string, sys *health.SystemHealth) error {
	if sys == nil {
		return nil
	}

	payload, err := json.Marshal(sys)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, insertSnapshot,
		runID,
		string(sys.Overall),
		len(sys.Providers),
		string(payload),
		sys.CheckedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// CheckRow is one persisted probe result.
type CheckRow struct {
	RunID      string
	Provider   string
	Status     health.Status
	ResponseMS int64
	Uptime     float64
	ErrorRate  float64
	Error      string
	CheckedAt  time.Time
}

// RecentChecks returns persisted probe results, newest first. A non-empty
// provider narrows the result to that provider. limit caps the row count
// and defaults to 50 when zero or negative.
func (s *Store) RecentChecks(ctx context.Context, provider string, limit int) ([]CheckRow, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if provider == "" {
		rows, err = s.db.QueryContext(ctx, selectRecentChecks, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, selectRecentChecksByProvider, provider, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history checks: %w", err)
	}
	defer rows.Close()

	var out []CheckRow
	for rows.Next() {
		row, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history checks: %w", err)
	}
	return out, nil
}

func scanCheck(rows *sql.Rows) (CheckRow, error) {
	var (
		row       CheckRow
		status    string
		probeErr  sql.NullString
		checkedMS int64
	)
	err := rows.Scan(
		&row.RunID,
		&row.Provider,
		&status,
		&row.ResponseMS,
		&row.Uptime,
		&row.ErrorRate,
		&probeErr,
		&checkedMS,
	)
	if err != nil {
		return CheckRow{}, fmt.Errorf("failed to scan history row: %w", err)
	}

	row.Status = health.Status(status)
	row.Error = probeErr.String
	row.CheckedAt = time.UnixMilli(checkedMS).UTC()
	return row, nil
}

// LatestSnapshot returns the most recent aggregate snapshot, or nil when
// the store holds none.
func (s *Store) LatestSnapshot(ctx context.Context) (*health.SystemHealth, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, selectLatestSnapshot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	var sys health.SystemHealth
	if err := json.Unmarshal([]byte(payload), &sys); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &sys, nil
}

// CountChecks returns the number of persisted probe results.
func (s *Store) CountChecks(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, countChecks).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history checks: %w", err)
	}
	return n, nil
}

// PruneOlderThan deletes checks and snapshots recorded before cutoff and
// returns the number of rows removed.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64

	res, err := s.db.ExecContext(ctx, deleteChecksBefore, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune history checks: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	res, err = s.db.ExecContext(ctx, deleteSnapshotsBefore, cutoff.UnixMilli())
	if err != nil {
		return total, fmt.Errorf("failed to prune history snapshots: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		total += n
	}

	return total, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close history database: %w", err)
	}
	s.logger.Debug("history database closed", "path", s.path)
	return nil
}

// nullable converts empty strings to NULL for optional text columns.
func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
