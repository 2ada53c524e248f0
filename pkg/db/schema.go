package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per "lrp process" invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    input_dir TEXT NOT NULL,
    output_dir TEXT NOT NULL,
    model TEXT NOT NULL,
    filepath_base TEXT NOT NULL,
    workers INTEGER NOT NULL,
    status TEXT NOT NULL,            -- success, partial_failure
    units_total INTEGER DEFAULT 0,
    units_failed INTEGER DEFAULT 0,
    files_processed INTEGER DEFAULT 0,
    files_skipped INTEGER DEFAULT 0,
    words_total INTEGER DEFAULT 0,
    tokens_total INTEGER DEFAULT 0,
    bytes_written INTEGER DEFAULT 0,
    top_keywords TEXT                -- JSON array of "word:count"
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

-- Top-level units (first-level subdirectories of the input root)
CREATE TABLE IF NOT EXISTS units (
    unit_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    name TEXT NOT NULL,
    status TEXT NOT NULL,            -- success, failed
    processed INTEGER DEFAULT 0,
    skipped INTEGER DEFAULT 0,
    bytes_written INTEGER DEFAULT 0,
    duration_ms INTEGER DEFAULT 0,
    error_type TEXT,
    error_message TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, name)
);

CREATE INDEX IF NOT EXISTS idx_units_run ON units(run_id);

-- Per-file outcomes within a unit
CREATE TABLE IF NOT EXISTS files (
    file_id INTEGER PRIMARY KEY AUTOINCREMENT,
    unit_id INTEGER NOT NULL,
    rel_path TEXT NOT NULL,
    output_path TEXT,
    status TEXT NOT NULL,            -- processed, skipped
    content_hash TEXT,
    word_count INTEGER DEFAULT 0,
    token_count INTEGER DEFAULT 0,
    error_message TEXT,
    FOREIGN KEY (unit_id) REFERENCES units(unit_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_files_unit ON files(unit_id);
CREATE INDEX IF NOT EXISTS idx_files_status ON files(status);
`
