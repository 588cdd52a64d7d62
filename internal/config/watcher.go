package config

import (
	"context"
	"path/filepath"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the settings file whenever it changes on disk. The parent
// directory is watched because editors often replace files by rename.
// Invalid edits are logged and ignored; the previous configuration stays
// in effect.
func (m *Manager) Watch(ctx context.Context, callback func(*Config)) error {
	errFactory := errors.New()

	path := filepath.Clean(m.File())
	if path == "" || path == "." {
		return errFactory.WithMessage(errors.ErrReadConfig, "no configuration file to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return errFactory.Wrap(errors.ErrInitFailed, err)
	}

	go func() {
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				cfg, changed, err := m.Reload()
				if err != nil {
					m.logger.Warn().Err(err).Str("file", path).Msg("Ignoring invalid configuration change")
					continue
				}
				if changed {
					m.logger.Info().Str("file", path).Msg("Configuration reloaded")
					callback(cfg)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				m.logger.Warn().Err(err).Msg("Config watcher error")
			}
		}
	}()

	return nil
}
