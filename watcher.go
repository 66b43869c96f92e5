package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/petroserv/rag-server/docstore"
)

type inboxUploader interface {
	Upload(ctx context.Context, filename string, content []byte, category, language string) (string, docstore.DocumentRecord, error)
}

// Watcher ingests files dropped into an inbox directory. Editors and
// copies emit bursts of write events, so ingestion waits for a quiet
// period per file before reading it.
type Watcher struct {
	log      *slog.Logger
	uploader inboxUploader
	dir      string
	category string
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewWatcher(log *slog.Logger, uploader inboxUploader, dir, category string, debounce time.Duration) *Watcher {
	return &Watcher{
		log:      log,
		uploader: uploader,
		dir:      dir,
		category: category,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Watch ingests files already present in the inbox, then blocks processing
// filesystem events until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read inbox directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			w.ingest(ctx, filepath.Join(w.dir, entry.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create inbox watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch inbox directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("inbox watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		w.ingest(ctx, path)
	})
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn("failed to read inbox file", "file", path, "error", err)
		return
	}

	_, _, err = w.uploader.Upload(ctx, filepath.Base(path), content, w.category, "")
	if err != nil {
		w.log.Warn("failed to ingest inbox file", "file", path, "error", err)
	}
}
