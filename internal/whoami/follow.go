package whoami

import (
	"context"

	"realmauth/pkg/logging"
	"realmauth/pkg/realmauth"
)

// Follow keeps store in sync with the document behind src until ctx is done.
// It refreshes once up front and again after every change the watcher sees.
// Refresh failures are logged and do not stop the loop; the store keeps the
// last good context.
func Follow(ctx context.Context, store *realmauth.Store, src *FileSource, config WatcherConfig) error {
	refresh := func() {
		if _, err := Refresh(ctx, store, src); err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Error(logSubsystem, err, "Failed to refresh access context from %s", src.Path())
		}
	}

	refresh()

	config.Path = src.Path()
	userOnChange := config.OnChange
	config.OnChange = func() {
		refresh()
		if userOnChange != nil {
			userOnChange()
		}
	}

	watcher := NewWatcher(config)
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}
