package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SymbolEntry is the parse result of one file.
type SymbolEntry struct {
	FilePath  string
	ScanHash  string
	Symbols   []protocol.DocumentSymbol
	ScannedAt time.Time
}

// SaveBulkSymbols stores the parse results of many files in one transaction.
func (c *Cache) SaveBulkSymbols(entries []SymbolEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO symbols (file_path, scan_hash, data, scanned_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		data, err := json.Marshal(entry.Symbols)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode symbols %s: %w", entry.FilePath, err)
		}
		scannedAt := entry.ScannedAt
		if scannedAt.IsZero() {
			scannedAt = time.Now()
		}
		if _, err := stmt.Exec(entry.FilePath, entry.ScanHash, string(data), scannedAt.Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("save symbols %s: %w", entry.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadSymbols returns the symbols stored for path. ok is false when nothing is
// stored or the stored entry was computed from different content.
func (c *Cache) LoadSymbols(path, hash string) (symbols []protocol.DocumentSymbol, ok bool, err error) {
	var stored, data string
	err = c.db.QueryRow("SELECT scan_hash, data FROM symbols WHERE file_path = ?", path).Scan(&stored, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load symbols %s: %w", path, err)
	}
	if stored != hash {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(data), &symbols); err != nil {
		return nil, false, fmt.Errorf("decode symbols %s: %w", path, err)
	}
	return symbols, true, nil
}

// IsFileChanged reports whether path was never parsed or was parsed from
// content with a different hash.
func (c *Cache) IsFileChanged(path, hash string) (bool, error) {
	var stored string
	err := c.db.QueryRow("SELECT scan_hash FROM symbols WHERE file_path = ?", path).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get file hash %s: %w", path, err)
	}
	return stored != hash, nil
}

// GetChangedFiles returns the paths of fileHashes whose stored symbols are
// missing or stale.
func (c *Cache) GetChangedFiles(fileHashes map[string]string) ([]string, error) {
	var changed []string
	for path, hash := range fileHashes {
		isChanged, err := c.IsFileChanged(path, hash)
		if err != nil {
			return nil, err
		}
		if isChanged {
			changed = append(changed, path)
		}
	}
	return changed, nil
}

// DeleteSymbols removes the stored symbols of path.
func (c *Cache) DeleteSymbols(path string) error {
	_, err := c.db.Exec("DELETE FROM symbols WHERE file_path = ?", path)
	if err != nil {
		return fmt.Errorf("delete symbols %s: %w", path, err)
	}
	return nil
}

// PruneStaleEntries removes stored symbols and pairs of files not in
// validPaths and returns the number of files pruned.
func (c *Cache) PruneStaleEntries(validPaths map[string]bool) (int, error) {
	rows, err := c.db.Query("SELECT file_path FROM symbols UNION SELECT path FROM header_source")
	if err != nil {
		return 0, fmt.Errorf("query cached files: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan row: %w", err)
		}
		if !validPaths[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate rows: %w", err)
	}

	for i, path := range stale {
		if err := c.DeleteSymbols(path); err != nil {
			return i, err
		}
		if err := c.DeleteMatch(path); err != nil {
			return i, err
		}
	}
	return len(stale), nil
}
