// Package history persists provider health check results to SQLite.
//
// The Store implements health.HistorySink: the monitor appends one row per
// provider per check run plus one aggregate snapshot per run. The database
// uses WAL mode with a busy timeout, and its schema version is tracked in
// a schema_version table for future migrations.
//
// # Basic Usage
//
//	store, err := history.Open(history.Config{Path: "history.db"}, logger)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	monitor.SetHistorySink(store)
//
// # Pruning
//
// A cron-scheduled Pruner deletes rows older than the retention window
// and logs the counts:
//
//	pruner := history.NewPruner(store, history.PrunerConfig{
//		RetentionDays: 14,
//		Schedule:      "0 3 * * *", // daily at 03:00
//	}, logger)
//	if err := pruner.Start(ctx); err != nil {
//		return err
//	}
//	defer pruner.Stop()
//
// RunOnce triggers a prune immediately, outside the schedule.
package history
