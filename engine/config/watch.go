package config

import (
	"context"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration at path whenever it is written or re-created and passes every
// successfully validated result to onChange. Invalid files are logged and skipped so a half-saved
// edit never reaches the running swarm.
// The parent directory is watched rather than the file, since editors commonly replace files on save.
// Watch blocks until ctx is cancelled or the watcher fails.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the configuration file to follow
//   - onChange: invoked on the watcher goroutine with each reloaded configuration
//
// Returns:
//   - error: nil on cancellation, otherwise the watcher error
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != abs {
				continue
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				core.LogWarn("config reload of %s skipped: %v", abs, err)
				continue
			}
			core.LogInfo("config reloaded from %s", abs)
			onChange(cfg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
