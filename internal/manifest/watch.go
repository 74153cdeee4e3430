package manifest

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"media-convert/internal/logging"
)

// Watch reloads the table whenever the manifest file at path changes. It
// returns once the watcher is installed; reloads happen in the background
// until ctx is canceled. The parent directory is watched rather than the
// file itself so atomic save-and-rename editors and configmap updates are
// still observed.
func Watch(ctx context.Context, table *Table, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return err
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				logging.Warn("failed to close manifest watcher: %v", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if err := table.Reload(absPath); err != nil {
					logging.Warn("Manifest reload failed, keeping previous table: %v", err)
					continue
				}
				logging.Info("Reloaded tools manifest: %d tools", table.Len())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("Manifest watcher error: %v", err)
			}
		}
	}()

	logging.Info("Watching tools manifest: %s", absPath)
	return nil
}
