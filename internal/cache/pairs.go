package cache

import (
	"database/sql"
	"errors"
	"fmt"
)

// SetMatch records that a and b are a header/source pair, in both directions.
// Any previous match of either file is replaced.
func (c *Cache) SetMatch(a, b string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO header_source (path, match) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range [][2]string{{a, b}, {b, a}} {
		if _, err := stmt.Exec(p[0], p[1]); err != nil {
			tx.Rollback()
			return fmt.Errorf("set match %s: %w", p[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetMatch returns the cached match of path. ok is false when path has no
// cached match.
func (c *Cache) GetMatch(path string) (match string, ok bool, err error) {
	err = c.db.QueryRow("SELECT match FROM header_source WHERE path = ?", path).Scan(&match)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get match %s: %w", path, err)
	}
	return match, true, nil
}

// DeleteMatch forgets every pair path takes part in.
func (c *Cache) DeleteMatch(path string) error {
	_, err := c.db.Exec("DELETE FROM header_source WHERE path = ? OR match = ?", path, path)
	if err != nil {
		return fmt.Errorf("delete match %s: %w", path, err)
	}
	return nil
}

// AllMatches returns every cached direction of every pair.
func (c *Cache) AllMatches() (map[string]string, error) {
	rows, err := c.db.Query("SELECT path, match FROM header_source ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := make(map[string]string)
	for rows.Next() {
		var path, match string
		if err := rows.Scan(&path, &match); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		matches[path] = match
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return matches, nil
}
