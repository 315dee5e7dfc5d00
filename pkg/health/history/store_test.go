package history

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"switchyard-ai/switchyard/pkg/health"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openTestStore creates a history store backed by a throwaway database.
func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(Config{Path: dbPath}, discardLogger())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, dbPath
}

func checkRecord(provider string, status health.Status, responseMS int64, errMsg string) health.ProviderHealthRecord {
	return health.ProviderHealthRecord{
		Provider:     provider,
		Status:       status,
		Uptime:       0.9,
		LastCheck:    time.Now().UTC(),
		ResponseTime: responseMS,
		Error:        errMsg,
		Metadata: health.Metadata{
			TotalRequests: 10,
			ErrorRate:     0.25,
		},
	}
}

func TestOpenCreatesDatabase(t *testing.T) {
	store, dbPath := openTestStore(t)

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file was not created: %v", err)
	}

	n, err := store.CountChecks(context.Background())
	if err != nil {
		t.Fatalf("CountChecks() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d rows", n)
	}
	if store.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", store.Path(), dbPath)
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	store, err := Open(Config{Path: dbPath}, discardLogger())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file was not created: %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}, discardLogger()); err == nil {
		t.Fatal("Open() with empty path should fail")
	}
}

func TestOpenExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	first, err := Open(Config{Path: dbPath}, discardLogger())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	checkedAt := time.Now().UTC().Truncate(time.Millisecond)
	if err := first.AppendChecks(ctx, "run-1", checkedAt, []health.ProviderHealthRecord{
		checkRecord("ollama", health.StatusHealthy, 42, ""),
	}); err != nil {
		t.Fatalf("AppendChecks() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Reopening must keep existing rows and pass the schema version check.
	second, err := Open(Config{Path: dbPath}, discardLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	n, err := second.CountChecks(ctx)
	if err != nil {
		t.Fatalf("CountChecks() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row after reopen, got %d", n)
	}
}

func TestAppendChecksRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	checkedAt := time.Now().UTC().Truncate(time.Millisecond)
	records := []health.ProviderHealthRecord{
		checkRecord("ollama", health.StatusHealthy, 42, ""),
		checkRecord("openai", health.StatusOffline, 0, "connection refused"),
	}
	if err := store.AppendChecks(ctx, "run-1", checkedAt, records); err != nil {
		t.Fatalf("AppendChecks() failed: %v", err)
	}

	rows, err := store.RecentChecks(ctx, "", 10)
	if err != nil {
		t.Fatalf("RecentChecks() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byProvider := make(map[string]CheckRow, len(rows))
	for _, row := range rows {
		byProvider[row.Provider] = row
	}

	ollama, ok := byProvider["ollama"]
	if !ok {
		t.Fatal("missing row for ollama")
	}
	if ollama.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", ollama.RunID)
	}
	if ollama.Status != health.StatusHealthy {
		t.Errorf("Status = %q, want healthy", ollama.Status)
	}
	if ollama.ResponseMS != 42 {
		t.Errorf("ResponseMS = %d, want 42", ollama.ResponseMS)
	}
	if ollama.Uptime != 0.9 {
		t.Errorf("Uptime = %v, want 0.9", ollama.Uptime)
	}
	if ollama.ErrorRate != 0.25 {
		t.Errorf("ErrorRate = %v, want 0.25", ollama.ErrorRate)
	}
	if ollama.Error != "" {
		t.Errorf("Error = %q, want empty", ollama.Error)
	}
	if !ollama.CheckedAt.Equal(checkedAt) {
		t.Errorf("CheckedAt = %v, want %v", ollama.CheckedAt, checkedAt)
	}

	openai, ok := byProvider["openai"]
	if !ok {
		t.Fatal("missing row for openai")
	}
	if openai.Status != health.StatusOffline {
		t.Errorf("Status = %q, want offline", openai.Status)
	}
	if openai.Error != "connection refused" {
		t.Errorf("Error = %q, want connection refused", openai.Error)
	}
}

func TestAppendChecksEmptyIsNoOp(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendChecks(ctx, "run-1", time.Now(), nil); err != nil {
		t.Fatalf("AppendChecks() failed: %v", err)
	}

	n, err := store.CountChecks(ctx)
	if err != nil {
		t.Fatalf("CountChecks() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}

func TestRecentChecksFilterAndOrder(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	for i := 0; i < 3; i++ {
		checkedAt := base.Add(time.Duration(i) * time.Minute)
		records := []health.ProviderHealthRecord{
			checkRecord("ollama", health.StatusHealthy, int64(10+i), ""),
			checkRecord("groq", health.StatusDegraded, int64(100+i), ""),
		}
		if err := store.AppendChecks(ctx, "run-"+string(rune('a'+i)), checkedAt, records); err != nil {
			t.Fatalf("AppendChecks() failed: %v", err)
		}
	}

	rows, err := store.RecentChecks(ctx, "ollama", 10)
	if err != nil {
		t.Fatalf("RecentChecks() failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 ollama rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Provider != "ollama" {
			t.Errorf("filter leaked row for %q", row.Provider)
		}
	}
	// Newest first.
	if rows[0].ResponseMS != 12 || rows[2].ResponseMS != 10 {
		t.Errorf("rows out of order: first=%d last=%d", rows[0].ResponseMS, rows[2].ResponseMS)
	}

	limited, err := store.RecentChecks(ctx, "", 2)
	if err != nil {
		t.Fatalf("RecentChecks() failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 rows with limit, got %d", len(limited))
	}
	if !limited[0].CheckedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("limited query did not return the newest run first")
	}
}

func TestLatestSnapshot(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	sys, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if sys != nil {
		t.Fatal("expected nil snapshot from empty store")
	}

	older := &health.SystemHealth{
		Overall:   health.StatusDegraded,
		Providers: map[string]health.ProviderHealthRecord{"ollama": checkRecord("ollama", health.StatusDegraded, 900, "")},
		CheckedAt: time.Now().UTC().Add(-time.Minute).Truncate(time.Millisecond),
	}
	newer := &health.SystemHealth{
		Overall: health.StatusHealthy,
		Providers: map[string]health.ProviderHealthRecord{
			"ollama": checkRecord("ollama", health.StatusHealthy, 40, ""),
			"groq":   checkRecord("groq", health.StatusHealthy, 80, ""),
		},
		CheckedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := store.AppendSnapshot(ctx, "run-1", older); err != nil {
		t.Fatalf("AppendSnapshot() failed: %v", err)
	}
	if err := store.AppendSnapshot(ctx, "run-2", newer); err != nil {
		t.Fatalf("AppendSnapshot() failed: %v", err)
	}

	got, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot")
	}
	if got.Overall != health.StatusHealthy {
		t.Errorf("Overall = %q, want healthy", got.Overall)
	}
	if len(got.Providers) != 2 {
		t.Errorf("expected 2 providers in snapshot, got %d", len(got.Providers))
	}
}

func TestAppendSnapshotNilIsNoOp(t *testing.T) {
	store, _ := openTestStore(t)

	if err := store.AppendSnapshot(context.Background(), "run-1", nil); err != nil {
		t.Fatalf("AppendSnapshot() failed: %v", err)
	}

	sys, err := store.LatestSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if sys != nil {
		t.Fatal("expected no snapshot")
	}
}

func TestPruneOlderThan(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -20).Truncate(time.Millisecond)
	fresh := time.Now().UTC().Truncate(time.Millisecond)

	oldRecords := []health.ProviderHealthRecord{
		checkRecord("ollama", health.StatusHealthy, 40, ""),
		checkRecord("groq", health.StatusHealthy, 90, ""),
	}
	if err := store.AppendChecks(ctx, "run-old", old, oldRecords); err != nil {
		t.Fatalf("AppendChecks() failed: %v", err)
	}
	if err := store.AppendSnapshot(ctx, "run-old", &health.SystemHealth{
		Overall:   health.StatusHealthy,
		CheckedAt: old,
	}); err != nil {
		t.Fatalf("AppendSnapshot() failed: %v", err)
	}

	if err := store.AppendChecks(ctx, "run-new", fresh, oldRecords[:1]); err != nil {
		t.Fatalf("AppendChecks() failed: %v", err)
	}
	if err := store.AppendSnapshot(ctx, "run-new", &health.SystemHealth{
		Overall:   health.StatusHealthy,
		CheckedAt: fresh,
	}); err != nil {
		t.Fatalf("AppendSnapshot() failed: %v", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -14)
	deleted, err := store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("PruneOlderThan() failed: %v", err)
	}
	// Two old checks plus one old snapshot.
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	n, err := store.CountChecks(ctx)
	if err != nil {
		t.Fatalf("CountChecks() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 remaining check, got %d", n)
	}

	sys, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot() failed: %v", err)
	}
	if sys == nil || !sys.CheckedAt.Equal(fresh) {
		t.Error("fresh snapshot should survive pruning")
	}
}

func TestStoreImplementsHistorySink(t *testing.T) {
	store, _ := openTestStore(t)

	var sink health.HistorySink = store
	if err := sink.AppendChecks(context.Background(), "run-1", time.Now(), nil); err != nil {
		t.Fatalf("AppendChecks() through interface failed: %v", err)
	}
}
