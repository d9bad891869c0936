// Package testutil provides shared test helpers for setting up journals and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/bulletlog/internal/index"
	"github.com/starford/bulletlog/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "bulletlog-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestJournal returns a storage.File for a not-yet-existing journal in a temp directory.
func TestJournal(t *testing.T) *storage.File {
	t.Helper()
	store, err := storage.NewFile(filepath.Join(t.TempDir(), ".BULLETLOG"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// ReadJournal returns the journal file contents as a string.
func ReadJournal(t *testing.T, store storage.Provider) string {
	t.Helper()
	data, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return string(data)
}
