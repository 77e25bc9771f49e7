package library

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per invocation of the downloader.
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    url_count INTEGER NOT NULL,
    merged BOOLEAN NOT NULL DEFAULT 0,
    merged_name TEXT,
    success_count INTEGER DEFAULT 0,
    failed_count INTEGER DEFAULT 0
);

-- One row per acquisition slot within a run, in slot order.
CREATE TABLE IF NOT EXISTS run_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    slot INTEGER NOT NULL,
    url TEXT NOT NULL,
    status TEXT NOT NULL,           -- success, partial, failed
    error_kind TEXT,                -- timeout, http_status, connection, content_type, extract, no_content, epub
    error_message TEXT,
    title TEXT,
    output_path TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_results_run ON run_results(run_id);
CREATE INDEX IF NOT EXISTS idx_results_url ON run_results(url);
`
