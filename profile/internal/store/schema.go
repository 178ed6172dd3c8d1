package store

// Schema contains the complete DDL for the profile tables.
const Schema = `
-- Profiles: one row per named fill profile
CREATE TABLE IF NOT EXISTS profiles (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    attributes  TEXT NOT NULL DEFAULT '{}',
    custom      TEXT NOT NULL DEFAULT '{}',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name);

-- Settings: single-row table (id = 1)
CREATE TABLE IF NOT EXISTS settings (
    id                INTEGER PRIMARY KEY CHECK (id = 1),
    active_profile_id TEXT NOT NULL DEFAULT '',
    auto_fill         INTEGER NOT NULL DEFAULT 0,
    blacklist         TEXT NOT NULL DEFAULT '[]',
    updated_at        INTEGER NOT NULL
);

-- Vault: single-row table holding the passphrase hash (id = 1)
CREATE TABLE IF NOT EXISTS vault (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    pass_hash  BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`
