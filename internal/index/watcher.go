package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/bulletlog/internal/storage"
)

const settleDelay = 100 * time.Millisecond

// EventCallback is called after a watcher-driven index change with the
// journal path.
type EventCallback func(path string)

// Watch starts an fsnotify watcher on the journal's directory and re-syncs the
// index whenever the journal file is created, written, renamed or removed,
// until ctx is cancelled. It calls cb (if non-nil) after each sync that
// changed the index.
//
// The directory is watched rather than the file because every write replaces
// the file by rename. Bursts of events are coalesced with a short timer.
func Watch(ctx context.Context, db EntryIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := store.Path()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", target))

	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	scheduleSync := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settleDelay)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			changed, syncErr := Sync(db, store, logger)
			if syncErr != nil {
				logger.Warn("watcher: sync failed", slog.String("path", target), slog.String("error", syncErr.Error()))
				continue
			}
			if changed {
				logger.Debug("watcher: reindexed", slog.String("path", target))
				if cb != nil {
					cb(target)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
