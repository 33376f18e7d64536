package storage

const schema = `
CREATE TABLE IF NOT EXISTS sync_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid TEXT UNIQUE NOT NULL,
    triggered_by TEXT NOT NULL DEFAULT 'manual',
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    state TEXT NOT NULL DEFAULT 'PENDING',
    releases_seen INTEGER DEFAULT 0,
    releases_applied INTEGER DEFAULT 0,
    commit_hash TEXT DEFAULT '',
    error TEXT DEFAULT '',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_sync_runs_run_uuid ON sync_runs(run_uuid);
`
