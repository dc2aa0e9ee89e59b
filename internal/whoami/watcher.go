package whoami

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"realmauth/pkg/logging"
)

const watcherSubsystem = "Watcher"

const (
	// DefaultDebounceInterval is how long the watcher waits after the last
	// change before firing, so editors that write in several steps cause a
	// single refresh.
	DefaultDebounceInterval = 200 * time.Millisecond

	// DefaultPollInterval is used when fsnotify is unavailable.
	DefaultPollInterval = 2 * time.Second
)

// WatcherConfig holds configuration for the document watcher.
type WatcherConfig struct {
	// Path is the whoami document to watch.
	Path string

	// Debounce defaults to DefaultDebounceInterval.
	Debounce time.Duration

	// PollInterval is the fallback polling interval when fsnotify is not available.
	PollInterval time.Duration

	// ForcePolling skips fsnotify entirely.
	ForcePolling bool

	// OnChange is called when the document is written, created, removed or renamed.
	OnChange func()
}

// Watcher monitors a whoami document for changes. The containing directory is
// watched rather than the file itself so that atomic replaces (write to a
// temp file, rename over the original) are seen.
type Watcher struct {
	mu sync.Mutex

	config WatcherConfig

	// fsWatcher is nil when polling
	fsWatcher *fsnotify.Watcher

	stopCh  chan struct{}
	running bool

	// lastModTime and lastExists track the file for fallback polling
	lastModTime time.Time
	lastExists  bool

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a new document watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounceInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if abs, err := filepath.Abs(config.Path); err == nil {
		config.Path = abs
	}

	return &Watcher{config: config}
}

// Start begins watching for changes. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	if w.config.ForcePolling {
		w.startPolling()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn(watcherSubsystem, "fsnotify not available, falling back to polling: %v", err)
		w.startPolling()
		return nil
	}

	dir := filepath.Dir(w.config.Path)
	if err := watcher.Add(dir); err != nil {
		logging.Warn(watcherSubsystem, "Failed to watch directory %s, falling back to polling: %v", dir, err)
		watcher.Close()
		w.startPolling()
		return nil
	}
	w.fsWatcher = watcher

	go w.processEvents(w.stopCh, watcher.Events, watcher.Errors)

	logging.Info(watcherSubsystem, "Started watching %s", w.config.Path)
	return nil
}

// processEvents handles fsnotify events until stopCh is closed.
// The channels are passed as parameters to avoid races with Stop.
func (w *Watcher) processEvents(stopCh <-chan struct{}, eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error(watcherSubsystem, err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.config.Path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug(watcherSubsystem, "Document changed: %s (%s)", event.Name, event.Op)
	w.triggerDebounced()
}

func (w *Watcher) triggerDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		running := w.running
		callback := w.config.OnChange
		w.mu.Unlock()

		if running && callback != nil {
			callback()
		}
	})
}

// startPolling records the current state of the file before the polling
// goroutine starts, so a change right after Start is not missed.
func (w *Watcher) startPolling() {
	w.checkForChanges()
	go w.pollForChanges(w.stopCh)
}

func (w *Watcher) pollForChanges(stopCh <-chan struct{}) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	logging.Info(watcherSubsystem, "Polling %s every %s", w.config.Path, w.config.PollInterval)

	for {
		select {
		case <-stopCh:
			return

		case <-ticker.C:
			if w.checkForChanges() {
				logging.Debug(watcherSubsystem, "Document change detected via polling")
				w.triggerDebounced()
			}
		}
	}
}

// checkForChanges records the file's state and reports whether it differs
// from the previous observation. Appearing and disappearing count as changes.
func (w *Watcher) checkForChanges() bool {
	info, err := os.Stat(w.config.Path)
	exists := err == nil

	var modTime time.Time
	if exists {
		modTime = info.ModTime()
	}

	changed := exists != w.lastExists || (exists && !modTime.Equal(w.lastModTime))
	w.lastExists = exists
	w.lastModTime = modTime
	return changed
}

// Stop stops the watcher and cancels any pending callback.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn(watcherSubsystem, "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info(watcherSubsystem, "Stopped watching %s", w.config.Path)
	return nil
}

// IsRunning returns whether the watcher is currently active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
