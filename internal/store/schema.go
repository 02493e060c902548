package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id   TEXT PRIMARY KEY,
    started_at   TEXT NOT NULL,
    host         TEXT NOT NULL,
    page_count   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settles (
    session_id     TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
    seq            INTEGER NOT NULL,
    transition_id  INTEGER NOT NULL,
    source         TEXT NOT NULL,
    from_index     INTEGER NOT NULL,
    to_index       INTEGER NOT NULL,
    route          TEXT NOT NULL,
    route_written  INTEGER NOT NULL DEFAULT 0,
    settled_at     TEXT NOT NULL,
    PRIMARY KEY (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_settles_at ON settles(settled_at);
`
