// Package logservice runs one read-modify-write cycle per operation against
// the journal file and keeps the search index in step with it.
package logservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/bulletlog/internal/apperr"
	"github.com/starford/bulletlog/internal/checksum"
	"github.com/starford/bulletlog/internal/index"
	"github.com/starford/bulletlog/internal/journal"
	"github.com/starford/bulletlog/internal/parser"
	"github.com/starford/bulletlog/internal/sse"
	"github.com/starford/bulletlog/internal/storage"
)

// ErrNoIndex is returned by Search and Reindex when no index is configured.
var ErrNoIndex = errors.New("logservice: search index not configured")

// ChangeFunc receives an event kind (see package sse) and its payload after a
// successful write.
type ChangeFunc func(kind string, data map[string]any)

// Option configures a Service.
type Option func(*Service)

// WithIndex keeps idx in sync after every write and enables Search.
func WithIndex(idx index.EntryIndex) Option {
	return func(s *Service) {
		s.index = idx
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithOnChange registers fn to be called after each successful write.
func WithOnChange(fn ChangeFunc) Option {
	return func(s *Service) {
		s.onChange = fn
	}
}

// Service coordinates storage, parsing and indexing.
//
// mu serializes cycles within one process. Separate processes writing the same
// file are not coordinated: the last writer wins.
type Service struct {
	mu       sync.Mutex
	store    storage.Provider
	index    index.EntryIndex
	logger   *slog.Logger
	onChange ChangeFunc
}

// NewService creates a new journal service.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddNote appends a note under date.
func (s *Service) AddNote(ctx context.Context, date journal.Date, text string) (journal.Entry, error) {
	return s.add(ctx, date, journal.Note, text)
}

// AddTask appends an open task under date.
func (s *Service) AddTask(ctx context.Context, date journal.Date, text string) (journal.Entry, error) {
	return s.add(ctx, date, journal.TaskOpen, text)
}

func (s *Service) add(_ context.Context, date journal.Date, kind journal.Kind, text string) (journal.Entry, error) {
	if err := ValidateText(text); err != nil {
		return journal.Entry{}, err
	}
	if _, err := journal.ParseDate(date.String()); err != nil {
		return journal.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, _, err := s.load()
	if err != nil {
		return journal.Entry{}, err
	}
	doc.Append(date, kind, text)
	if err := s.save(doc); err != nil {
		return journal.Entry{}, err
	}

	s.logger.Debug("entry added",
		slog.String("date", date.String()),
		slog.String("kind", kind.String()))
	s.notify(sse.KindEntryAdded, map[string]any{
		"date": date.String(),
		"kind": kind.String(),
		"text": text,
	})
	return journal.Entry{Kind: kind, Text: text}, nil
}

// CompleteTask marks the open task at index as done. A non-empty ifMatch must
// equal the checksum of the current file, otherwise apperr.ErrConflict is
// returned and nothing is written.
func (s *Service) CompleteTask(_ context.Context, index int, ifMatch string) (journal.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, cs, err := s.load()
	if err != nil {
		return journal.Task{}, err
	}
	if err := checksum.Check(cs, ifMatch); err != nil {
		return journal.Task{}, err
	}
	task, err := doc.Complete(index)
	if err != nil {
		return journal.Task{}, err
	}
	if err := s.save(doc); err != nil {
		return journal.Task{}, err
	}

	s.logger.Debug("task completed", slog.Int("index", index), slog.String("date", task.Date.String()))
	s.notify(sse.KindTaskCompleted, map[string]any{
		"index": index,
		"date":  task.Date.String(),
		"text":  task.Text,
	})
	return task, nil
}

// ListTasks returns the open tasks in listing order.
func (s *Service) ListTasks(ctx context.Context) ([]journal.Task, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.OpenTasks(), nil
}

// ListNotes returns every note in file order.
func (s *Service) ListNotes(ctx context.Context) ([]journal.NoteRef, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Notes(), nil
}

// Document parses and returns the current journal.
func (s *Service) Document(_ context.Context) (*journal.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _, err := s.load()
	return doc, err
}

// Raw returns the journal bytes and their checksum.
func (s *Service) Raw(_ context.Context) ([]byte, string, error) {
	data, err := s.store.Read()
	if err != nil {
		return nil, "", err
	}
	return data, checksum.Sum(data), nil
}

// Search brings the index up to date and queries it.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if _, err := s.Reindex(ctx); err != nil {
		return nil, err
	}
	return s.index.Search(query, limit)
}

// Reindex syncs the index with the file on disk and reports whether it changed.
func (s *Service) Reindex(_ context.Context) (bool, error) {
	if s.index == nil {
		return false, ErrNoIndex
	}
	return index.Sync(s.index, s.store, s.logger)
}

// Path returns the journal file path.
func (s *Service) Path() string {
	return s.store.Path()
}

// ValidateText rejects text that cannot be stored on a single line.
func ValidateText(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("%w: text must be a single line", apperr.ErrInvalidEntry)
	}
	return nil
}

func (s *Service) load() (*journal.Document, string, error) {
	data, err := s.store.Read()
	if err != nil {
		return nil, "", err
	}
	doc, err := parser.Parse(data)
	if err != nil {
		return nil, "", fmt.Errorf("logservice: load %s: %w", s.store.Path(), err)
	}
	return doc, checksum.Sum(data), nil
}

// save writes doc and refreshes the index. An index failure is logged, not
// returned: the file is already the new source of truth and the next sync
// repairs the index.
func (s *Service) save(doc *journal.Document) error {
	data := doc.Bytes()
	if err := s.store.Write(data); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.ReplaceJournal(checksum.Sum(data), doc); err != nil {
			s.logger.Warn("index update failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *Service) notify(kind string, data map[string]any) {
	if s.onChange != nil {
		s.onChange(kind, data)
	}
}
