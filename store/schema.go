package store

// schemaSQL is the DDL for the response cache.
const schemaSQL = `
-- Raw model responses keyed by image content hash.
-- Model and prompt are part of the key: changing either invalidates the
-- cached output for the same image bytes.
CREATE TABLE IF NOT EXISTS responses (
    id INTEGER PRIMARY KEY,
    content_hash TEXT NOT NULL,
    model TEXT NOT NULL,
    prompt TEXT NOT NULL,
    raw_content TEXT NOT NULL,
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(content_hash, model, prompt)
);
`
