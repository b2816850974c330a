// Package cache persists workspace state between runs in .cppgen/cache.db:
// header/source pairs and the document symbols parsed from each file, keyed
// by the content hash they were computed from.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache manages the .cppgen/cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in dir and initializes the schema.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode so the CLI can read while a server process writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	// Index workers share the cache; one connection serializes their writes
	db.SetMaxOpenConns(1)

	cache := &Cache{db: db, dbPath: dbPath}
	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes all cached pairs and symbols.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM header_source; DELETE FROM symbols;")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats holds row counts of the cache tables.
type Stats struct {
	Pairs   int64 `json:"pairs" yaml:"pairs"`
	Symbols int64 `json:"symbols" yaml:"symbols"`
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(*) FROM header_source").Scan(&stats.Pairs)
	if err != nil {
		return nil, fmt.Errorf("count pairs: %w", err)
	}

	err = c.db.QueryRow("SELECT COUNT(*) FROM symbols").Scan(&stats.Symbols)
	if err != nil {
		return nil, fmt.Errorf("count symbols: %w", err)
	}

	return &stats, nil
}
