package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultWatchDebounce coalesces the burst of events produced by one save.
const DefaultWatchDebounce = 150 * time.Millisecond

// Watch calls onChange after the settings file is written, created or
// replaced, until ctx is done. The parent directory is watched because
// Save replaces the file by rename. Bursts of events within debounce are
// reported once.
func (b *FileBackend) Watch(ctx context.Context, debounce time.Duration, logger zerolog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating settings watcher: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err = watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	go func() {
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("closing settings watcher")
			}
		}()

		var timer *time.Timer
		var fire <-chan time.Time
		target := filepath.Clean(b.path)

		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				logger.Debug().Str("path", b.path).Msg("settings file changed")
				onChange()
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error().Err(watchErr).Msg("settings watcher error")
			}
		}
	}()

	return nil
}
