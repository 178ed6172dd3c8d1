package history

// Schema contains the complete DDL for the fill history table.
const Schema = `
CREATE TABLE IF NOT EXISTS fill_events (
    event_id TEXT PRIMARY KEY,
    page_url TEXT NOT NULL,
    host TEXT NOT NULL DEFAULT '',
    profile_id TEXT,
    action TEXT NOT NULL,
    field_count INTEGER NOT NULL DEFAULT 0,
    match_count INTEGER NOT NULL DEFAULT 0,
    filled_count INTEGER NOT NULL DEFAULT 0,
    message TEXT,
    success INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_fill_events_time ON fill_events(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_fill_events_host ON fill_events(host, created_at DESC);
`
