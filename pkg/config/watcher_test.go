package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Watch(t *testing.T) {
	t.Run("Should notify on file writes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("cli:\n  format: text\n"), 0o600))

		watcher, err := NewWatcher()
		require.NoError(t, err)
		defer watcher.Close()

		var calls atomic.Int32
		watcher.OnChange(func() { calls.Add(1) })
		require.NoError(t, watcher.Watch(t.Context(), path))

		require.NoError(t, os.WriteFile(path, []byte("cli:\n  format: line\n"), 0o600))
		assert.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("Should stop notifying after the context is canceled", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

		watcher, err := NewWatcher()
		require.NoError(t, err)
		defer watcher.Close()

		var calls atomic.Int32
		watcher.OnChange(func() { calls.Add(1) })
		ctx, cancel := context.WithCancel(t.Context())
		require.NoError(t, watcher.Watch(ctx, path))
		cancel()
		assert.Eventually(t, func() bool {
			watcher.mu.RLock()
			defer watcher.mu.RUnlock()
			return len(watcher.watched) == 0
		}, 2*time.Second, 20*time.Millisecond)

		require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o600))
		time.Sleep(100 * time.Millisecond)
		assert.Zero(t, calls.Load())
	})

	t.Run("Should fail for a missing file", func(t *testing.T) {
		watcher, err := NewWatcher()
		require.NoError(t, err)
		defer watcher.Close()
		assert.Error(t, watcher.Watch(t.Context(), filepath.Join(t.TempDir(), "absent.yaml")))
	})

	t.Run("Should close idempotently", func(t *testing.T) {
		watcher, err := NewWatcher()
		require.NoError(t, err)
		require.NoError(t, watcher.Close())
		assert.NoError(t, watcher.Close())
	})
}
