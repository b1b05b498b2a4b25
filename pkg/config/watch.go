package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/riaz37/meetgenie-sub001/pkg/log"
)

// Watch reloads the config file whenever it changes and hands the new
// config to onReload. Editors and secret managers replace files via
// rename, so the parent directory is watched rather than the file itself.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(path)
	var lastReload time.Time

	log.Infof("Watching config file for changes: %s", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Writers produce bursts of events; coalesce them.
			if time.Since(lastReload) < time.Second {
				continue
			}
			lastReload = time.Now()

			cfg, err := Load(path)
			if err != nil {
				log.WithError(err).Error("Config reload failed, keeping previous configuration")
				continue
			}
			log.Info("Config file changed, reloading")
			onReload(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Config watcher error")
		}
	}
}
