package whoami

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realmauth/pkg/realmauth"
)

func TestNewWatcher_Defaults(t *testing.T) {
	w := NewWatcher(WatcherConfig{Path: "whoami.yaml"})

	assert.Equal(t, DefaultDebounceInterval, w.config.Debounce)
	assert.Equal(t, DefaultPollInterval, w.config.PollInterval)
	assert.True(t, filepath.IsAbs(w.config.Path))
	assert.False(t, w.IsRunning())
}

func TestWatcher_StartStop(t *testing.T) {
	w := NewWatcher(WatcherConfig{Path: filepath.Join(t.TempDir(), "whoami.yaml")})

	require.NoError(t, w.Start())
	require.NoError(t, w.Start())
	assert.True(t, w.IsRunning())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

func TestWatcher_DetectsChanges(t *testing.T) {
	for _, polling := range []bool{false, true} {
		name := "fsnotify"
		if polling {
			name = "polling"
		}
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "whoami.yaml")
			var calls atomic.Int32

			w := NewWatcher(WatcherConfig{
				Path:         path,
				Debounce:     10 * time.Millisecond,
				PollInterval: 20 * time.Millisecond,
				ForcePolling: polling,
				OnChange:     func() { calls.Add(1) },
			})
			require.NoError(t, w.Start())
			defer w.Stop()

			require.NoError(t, os.WriteFile(path, []byte(yamlDocument), 0644))
			assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

			seen := calls.Load()
			require.NoError(t, os.Remove(path))
			assert.Eventually(t, func() bool { return calls.Load() > seen }, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32

	w := NewWatcher(WatcherConfig{
		Path:     filepath.Join(dir, "whoami.yaml"),
		Debounce: 10 * time.Millisecond,
		OnChange: func() { calls.Add(1) },
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestFollow(t *testing.T) {
	path := writeDocument(t, t.TempDir(), yamlDocument)
	store := realmauth.NewStore(realmauth.Config{})
	src := NewFileSource(path, ValidateOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, store, src, WatcherConfig{Debounce: 20 * time.Millisecond})
	}()

	assert.Eventually(t, store.IsAuthenticated, 2*time.Second, 10*time.Millisecond)
	_, ok := store.SetActiveAccess("r2:t2")
	require.True(t, ok)

	// The selection survives a replace of the document that still holds it.
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(yamlDocument+"\n# touched\n"), 0644))
	require.NoError(t, os.Rename(tmp, path))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "r2:t2", store.ActiveAccessID())

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool { return !store.IsAuthenticated() }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancellation")
	}
}
