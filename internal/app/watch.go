package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/fieldtext/internal/source"
)

// ErrNotWatchable is returned by Watch for targets that are not local files.
var ErrNotWatchable = errors.New("only local files can be watched")

// watchDebounce collapses the burst of events an editor produces per save.
const watchDebounce = 300 * time.Millisecond

// Watch runs an extraction now and again every time the target file is
// written, until ctx is done. Failed runs are reported and the watch goes
// on, since the user can fix the file and save again.
func (a *App) Watch(ctx context.Context) error {
	target := a.cfg.Target
	if target == "" || target == "-" || source.IsURL(target) || a.cfg.Browser {
		return ErrNotWatchable
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", target, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Info().Str("file", abs).Msg("watching for changes")

	a.runLogged(ctx)

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Debug().Str("op", ev.Op.String()).Msg("target changed")
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case <-timer.C:
			a.runLogged(ctx)
		}
	}
}

func (a *App) runLogged(ctx context.Context) {
	if err := a.Run(ctx); err != nil {
		log.Warn().Err(err).Msg("extraction failed; waiting for the next change")
	}
}
