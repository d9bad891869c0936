package index

import "github.com/starford/bulletlog/internal/journal"

// EntryIndex defines the interface for journal indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type EntryIndex interface {
	ReplaceJournal(checksum string, doc *journal.Document) error
	Checksum() (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
