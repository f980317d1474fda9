package download

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// jarWatcher counts .jar files arriving in a directory while a
// download runs. Progress signal only: the final on-disk count stays
// authoritative.
type jarWatcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu   sync.Mutex
	seen map[string]bool

	done chan struct{}
}

// watchJars starts counting jar arrivals in dir until stop is called
// or the context ends.
func watchJars(ctx context.Context, dir string, logger *slog.Logger) (*jarWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &jarWatcher{
		watcher: fw,
		logger:  logger,
		seen:    make(map[string]bool),
		done:    make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

func (w *jarWatcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".jar") {
				continue
			}
			w.mu.Lock()
			if !w.seen[event.Name] {
				w.seen[event.Name] = true
				w.logger.Debug("mod downloaded", "file", filepath.Base(event.Name))
			}
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("mods dir watch error", "error", err)
		}
	}
}

// stop closes the watcher and returns the number of distinct jars seen.
func (w *jarWatcher) stop() int {
	_ = w.watcher.Close()
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
