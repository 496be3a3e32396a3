package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watcher turns fsnotify events into FileEvents.
type watcher struct {
	fs  *fsnotify.Watcher
	log *slog.Logger
}

func newWatcher(paths []string, log *slog.Logger) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, p := range paths {
		if err := fs.Add(p); err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
	}
	return &watcher{fs: fs, log: log.With(slog.String("component", "watcher"))}, nil
}

// run forwards events to send until ctx ends or the watcher is closed.
func (w *watcher) run(ctx context.Context, send func(FileEvent)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			send(FileEvent{Path: ev.Name, Op: ev.Op, At: time.Now()})
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", slog.Any("error", err))
		}
	}
}

func (w *watcher) Close() error { return w.fs.Close() }
