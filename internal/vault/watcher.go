package vault

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after the watcher has refreshed the index in
// response to outside edits. kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, name string)

// Watch starts an fsnotify watcher on the vault root and keeps the store's
// index in sync with edits made by external tools until ctx is cancelled.
//
// Only .md files directly in the vault root are interesting; trash and
// attachment churn is driven by the store itself. Events are coalesced: any
// burst of changes schedules a single index rescan after a short quiet
// period, since external editors commonly write a file several times in
// quick succession.
func Watch(ctx context.Context, store *Store, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(vaultRoot); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var rescanTimer *time.Timer
	var rescanCh <-chan time.Time
	var pending []pendingEvent

	scheduleRescan := func() {
		if rescanTimer == nil {
			rescanTimer = time.NewTimer(200 * time.Millisecond)
			rescanCh = rescanTimer.C
		} else {
			rescanTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rescanTimer != nil {
				rescanTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rescanCh:
			if _, err := store.List(ctx); err != nil {
				logger.Warn("watcher: rescan failed", slog.String("error", err.Error()))
				pending = nil
				continue
			}
			for _, ev := range pending {
				logger.Debug("watcher: outside change", slog.String("file", ev.name), slog.String("op", ev.kind))
				if cb != nil {
					cb(ev.kind, ev.name)
				}
			}
			pending = nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, noteExt) || strings.HasPrefix(name, ".") {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				pending = append(pending, pendingEvent{"created", name})
			case ev.Op&fsnotify.Write != 0:
				pending = append(pending, pendingEvent{"updated", name})
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; if the file moved
				// within the root, the new path arrives as a Create.
				pending = append(pending, pendingEvent{"deleted", name})
			default:
				continue
			}
			scheduleRescan()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

type pendingEvent struct {
	kind string
	name string
}
