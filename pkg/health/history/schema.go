package history

// SchemaVersion is the current history database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements that create the health history schema.
const Schema = `
-- One row per provider per check run
CREATE TABLE IF NOT EXISTS provider_checks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    provider TEXT NOT NULL,
    status TEXT NOT NULL,
    response_ms INTEGER NOT NULL,
    uptime REAL NOT NULL,
    error_rate REAL NOT NULL,
    error TEXT,

    -- Unix milliseconds
    checked_at INTEGER NOT NULL
);

-- One aggregate snapshot per check run
CREATE TABLE IF NOT EXISTS snapshots (
    run_id TEXT PRIMARY KEY,
    overall TEXT NOT NULL,
    providers INTEGER NOT NULL,
    payload TEXT NOT NULL,

    -- Unix milliseconds
    checked_at INTEGER NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for history queries and pruning
CREATE INDEX IF NOT EXISTS idx_provider_checks_checked_at ON provider_checks(checked_at);
CREATE INDEX IF NOT EXISTS idx_provider_checks_provider ON provider_checks(provider, checked_at);
CREATE INDEX IF NOT EXISTS idx_provider_checks_run_id ON provider_checks(run_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_checked_at ON snapshots(checked_at);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertCheck = `
INSERT INTO provider_checks (run_id, provider, status, response_ms, uptime, error_rate, error, checked_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`

const insertSnapshot = `
INSERT INTO snapshots (run_id, overall, providers, payload, checked_at)
VALUES (?, ?, ?, ?, ?);
`

const selectRecentChecks = `
SELECT run_id, provider, status, response_ms, uptime, error_rate, error, checked_at
FROM provider_checks
ORDER BY checked_at DESC, id DESC
LIMIT ?;
`

const selectRecentChecksByProvider = `
SELECT run_id, provider, status, response_ms, uptime, error_rate, error, checked_at
FROM provider_checks
WHERE provider = ?
ORDER BY checked_at DESC, id DESC
LIMIT ?;
`

const selectLatestSnapshot = `
SELECT payload FROM snapshots ORDER BY checked_at DESC LIMIT 1;
`

const countChecks = `
SELECT COUNT(*) FROM provider_checks;
`

const deleteChecksBefore = `
DELETE FROM provider_checks WHERE checked_at < ?;
`

const deleteSnapshotsBefore = `
DELETE FROM snapshots WHERE checked_at < ?;
`
