package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/reactbus/internal/config"
)

func TestTally(t *testing.T) {
	tl := newTally()
	require.NoError(t, tl.OnReceive(t.Context(), FileEvent{Path: "a", Op: fsnotify.Create}))
	require.NoError(t, tl.OnReceive(t.Context(), FileEvent{Path: "a", Op: fsnotify.Write | fsnotify.Chmod}))
	require.NoError(t, tl.OnReceive(t.Context(), FileEvent{Path: "a", Op: fsnotify.Write}))

	require.Equal(t, map[string]int{"CREATE": 1, "WRITE": 2, "CHMOD": 1}, tl.snapshot())
}

func TestExtensionFilter(t *testing.T) {
	require.Nil(t, extensionFilter(nil))

	f := extensionFilter([]string{".GO", ".md"})
	require.True(t, f(FileEvent{Path: "/x/main.go"}))
	require.True(t, f(FileEvent{Path: "README.MD"}))
	require.False(t, f(FileEvent{Path: "/x/main.rs"}))
	require.False(t, f(FileEvent{Path: "Makefile"}))
}

func TestStopFileActor(t *testing.T) {
	a := stopFileActor{}
	require.True(t, a.Accept(FileEvent{Path: "/tmp/" + StopFileName, Op: fsnotify.Create}))
	require.False(t, a.Accept(FileEvent{Path: "/tmp/" + StopFileName, Op: fsnotify.Remove}))
	require.False(t, a.Accept(FileEvent{Path: "/tmp/other", Op: fsnotify.Create}))
	require.ErrorIs(t, a.OnReceive(t.Context(), FileEvent{}), errStopFile)
}

func TestRun_stop_file(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Watch.Paths = []string{dir}
	cfg.ShutdownTimeout = time.Second

	res := make(chan error, 1)
	go func() { res <- run(t.Context(), cfg, slog.New(slog.DiscardHandler)) }()

	stop := filepath.Join(dir, StopFileName)
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	// the watcher may not be registered yet, so keep recreating the stop file
	for {
		select {
		case err := <-res:
			require.NoError(t, err)
			return
		case <-deadline:
			t.Fatal("run did not return")
		case <-tick.C:
			_ = os.Remove(stop)
			require.NoError(t, os.WriteFile(stop, nil, 0o600))
		}
	}
}

func TestRun_invalid_watch_path(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.Paths = []string{filepath.Join(t.TempDir(), "missing")}

	err := run(t.Context(), cfg, slog.New(slog.DiscardHandler))
	require.ErrorContains(t, err, "watch")
}
