package main

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codewandler/reactbus/core/bus"
)

// StopFileName is the file name that makes stopFileActor fail.
const StopFileName = ".reactbus-stop"

var errStopFile = errors.New("stop file created")

// FileEvent is the message type carried by the bus.
type FileEvent struct {
	Path string      `json:"path"`
	Op   fsnotify.Op `json:"op"`
	At   time.Time   `json:"at"`
}

func (e FileEvent) Ext() string { return strings.ToLower(filepath.Ext(e.Path)) }

type logActor struct {
	log *slog.Logger
}

func (a logActor) OnReceive(_ context.Context, ev FileEvent) error {
	a.log.Info("file event", slog.String("path", ev.Path), slog.String("op", ev.Op.String()))
	return nil
}

// tally counts events per operation.
type tally struct {
	mu     sync.Mutex
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) OnReceive(_ context.Context, ev FileEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, op := range []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename, fsnotify.Chmod} {
		if ev.Op.Has(op) {
			t.counts[op.String()]++
		}
	}
	return nil
}

func (t *tally) snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.counts)
}

// stopFileActor fails once a stop file shows up.
type stopFileActor struct{}

func (stopFileActor) Accept(ev FileEvent) bool {
	return ev.Op.Has(fsnotify.Create) && filepath.Base(ev.Path) == StopFileName
}

func (stopFileActor) OnReceive(context.Context, FileEvent) error { return errStopFile }

// extensionFilter accepts events for the given extensions. No extensions
// means no filter.
func extensionFilter(exts []string) bus.Predicate[FileEvent] {
	if len(exts) == 0 {
		return nil
	}
	allowed := make([]string, 0, len(exts))
	for _, e := range exts {
		allowed = append(allowed, strings.ToLower(e))
	}
	return func(ev FileEvent) bool { return slices.Contains(allowed, ev.Ext()) }
}

var (
	_ bus.Actor[FileEvent]    = logActor{}
	_ bus.Actor[FileEvent]    = (*tally)(nil)
	_ bus.Acceptor[FileEvent] = stopFileActor{}
)
