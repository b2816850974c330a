package cache

// schemaSQL defines the SQLite schema for the cache database.
// Tables:
//   - header_source: one row per direction of a header/source pair
//   - symbols: document symbols of a file as JSON, valid for scan_hash
const schemaSQL = `
CREATE TABLE IF NOT EXISTS header_source (
    path TEXT PRIMARY KEY,
    match TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
    file_path TEXT PRIMARY KEY,
    scan_hash TEXT NOT NULL,
    data TEXT NOT NULL,
    scanned_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_header_source_match ON header_source(match);
`

// initSchema creates the database tables and indexes if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
