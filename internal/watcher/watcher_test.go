package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ceald/senhas/internal/pubsub"
	"github.com/ceald/senhas/internal/watcher"
)

func startWatcher(t *testing.T, path string) <-chan pubsub.Event[watcher.WatcherEvent] {
	t.Helper()
	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	events := w.Broker().Subscribe(ctx)

	require.NoError(t, w.Start())
	return events
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n"), 0o600))
	events := startWatcher(t, path)

	for i := range 10 {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("# edit %d\n", i)), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case ev := <-events:
		require.Equal(t, watcher.ConfigChanged, ev.Payload.Type)
		require.Equal(t, filepath.Base(path), filepath.Base(ev.Payload.Path))
	case <-time.After(2 * time.Second):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-events:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	other := filepath.Join(dir, "traces.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("{}\n"), 0o600))
	events := startWatcher(t, path)

	require.NoError(t, os.WriteFile(other, []byte("{}\n{}\n"), 0o600))

	select {
	case <-events:
		t.Fatal("unexpected notification for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_DetectsAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))
	events := startWatcher(t, path)

	tmp := filepath.Join(dir, ".config.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("a: 2\n"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case ev := <-events:
		require.Equal(t, watcher.ConfigChanged, ev.Payload.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("expected notification after rename")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	w, err := watcher.New(watcher.DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "config.yaml")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()
	require.Error(t, w.Start())
}
