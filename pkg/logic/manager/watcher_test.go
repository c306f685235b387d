package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/formgate/pkg/telemetry/logging"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestFileWatcher_ShouldProcessEvent(t *testing.T) {
	fw := &FileWatcher{config: DefaultFileWatcherConfig()}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write yaml", fsnotify.Event{Name: "forms/a.yaml", Op: fsnotify.Write}, true},
		{"create json", fsnotify.Event{Name: "forms/a.JSON", Op: fsnotify.Create}, true},
		{"remove yml", fsnotify.Event{Name: "forms/a.yml", Op: fsnotify.Remove}, true},
		{"chmod only", fsnotify.Event{Name: "forms/a.yaml", Op: fsnotify.Chmod}, false},
		{"other extension", fsnotify.Event{Name: "forms/notes.txt", Op: fsnotify.Write}, false},
		{"hidden file", fsnotify.Event{Name: "forms/.a.yaml.swp", Op: fsnotify.Write}, false},
		{"hidden yaml", fsnotify.Event{Name: "forms/.a.yaml", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fw.shouldProcessEvent(tt.event))
		})
	}

	single := &FileWatcher{config: DefaultFileWatcherConfig(), file: filepath.Clean("forms/a.yaml")}
	assert.True(t, single.shouldProcessEvent(fsnotify.Event{Name: "forms/a.yaml", Op: fsnotify.Write}))
	assert.False(t, single.shouldProcessEvent(fsnotify.Event{Name: "forms/b.yaml", Op: fsnotify.Write}))
}

func TestFileWatcher_StopWithoutWatch(t *testing.T) {
	fw, err := NewFileWatcher(nil, logging.Discard())
	require.NoError(t, err)

	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}

func TestFileWatcher_TriggersReload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "feedback.yaml", feedbackForm)

	cfg := DefaultFileWatcherConfig()
	cfg.Path = dir
	cfg.DebounceInterval = 20 * time.Millisecond

	fw, err := NewFileWatcher(cfg, logging.Discard())
	require.NoError(t, err)

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(context.Background(), func() error {
			reloads.Add(1)
			return nil
		})
	}()

	// Wait for the watch to be registered before writing.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "signup.yaml", signupForm)

	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, fw.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after Stop")
	}
	assert.NoError(t, fw.Stop())
}

func TestFileWatcher_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "feedback.yaml", feedbackForm)

	cfg := DefaultFileWatcherConfig()
	cfg.Path = path
	cfg.DebounceInterval = 20 * time.Millisecond

	fw, err := NewFileWatcher(cfg, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(ctx, func() error {
			reloads.Add(1)
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(signupForm), 0o644))
	assert.Eventually(t, func() bool { return reloads.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestFileWatcher_MissingPath(t *testing.T) {
	cfg := DefaultFileWatcherConfig()
	cfg.Path = filepath.Join(t.TempDir(), "missing")

	fw, err := NewFileWatcher(cfg, logging.Discard())
	require.NoError(t, err)

	err = fw.Watch(context.Background(), func() error { return nil })
	assert.Error(t, err)
	assert.NoError(t, fw.Stop())
}
