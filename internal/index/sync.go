package index

import (
	"fmt"
	"log/slog"

	"github.com/starford/bulletlog/internal/checksum"
	"github.com/starford/bulletlog/internal/parser"
	"github.com/starford/bulletlog/internal/storage"
)

// Sync brings the index up to date with the journal file. The file is only
// parsed when its checksum differs from the indexed one. It reports whether
// the index changed.
func Sync(db EntryIndex, store storage.Provider, logger *slog.Logger) (bool, error) {
	data, err := store.Read()
	if err != nil {
		return false, err
	}
	cs := checksum.Sum(data)

	indexed, err := db.Checksum()
	if err != nil {
		return false, err
	}
	if indexed == cs {
		logger.Debug("sync: up to date", slog.String("checksum", cs))
		return false, nil
	}

	doc, err := parser.Parse(data)
	if err != nil {
		return false, fmt.Errorf("index: sync %s: %w", store.Path(), err)
	}
	if err := db.ReplaceJournal(cs, doc); err != nil {
		return false, err
	}
	logger.Debug("sync: indexed",
		slog.String("path", store.Path()),
		slog.Int("sections", len(doc.Sections)),
		slog.Int("entries", doc.Len()))
	return true, nil
}
