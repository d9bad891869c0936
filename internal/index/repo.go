package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/bulletlog/internal/journal"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Date    string `json:"date"`
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Snippet string `json:"snippet"`
}

// ReplaceJournal swaps the indexed entries for those of doc and records the
// checksum of the bytes doc was parsed from, in one transaction.
func (db *DB) ReplaceJournal(checksum string, doc *journal.Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("index: clear entries: %w", err)
	}
	if err := ftsReset(tx); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO entries (section, position, date, kind, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for si, s := range doc.Sections {
		for ei, e := range s.Entries {
			if _, err := stmt.Exec(si, ei, s.Date.String(), e.Kind.String(), e.Text); err != nil {
				return fmt.Errorf("index: insert entry: %w", err)
			}
			if err := ftsInsert(tx, s.Date.String(), e.Kind.String(), e.Text); err != nil {
				return err
			}
		}
	}

	_, err = tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, metaChecksum, checksum)
	if err != nil {
		return fmt.Errorf("index: store checksum: %w", err)
	}

	return tx.Commit()
}

// Checksum returns the checksum of the last indexed journal, or empty string
// if nothing has been indexed.
func (db *DB) Checksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, metaChecksum).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// Count returns the number of indexed entries.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Date, &r.Kind, &r.Text, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
