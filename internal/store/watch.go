package store

import (
	"context"
	"path/filepath"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the record whenever the file is replaced or written and
// passes the fresh record to fn. fn runs on the watcher goroutine. Records
// that fail to decode are skipped so a running overlay keeps its current
// appearance. Watching stops when ctx is done.
func (s *Store) Watch(ctx context.Context, fn func(Record)) error {
	errFactory := errors.New()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errFactory.Wrap(ErrWatch, err)
	}

	// The file itself is replaced on every save, so watch its directory.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return errFactory.Wrap(ErrWatch, err)
	}

	target := filepath.Clean(s.path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
					continue
				}
				rec, err := Read(s.path)
				if err != nil {
					s.log.Debug().Err(err).Msg("Ignoring unreadable overlay configuration change")
					continue
				}
				s.log.Info().Str("path", s.path).Msg("Overlay configuration reloaded")
				fn(rec)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn().Err(err).Msg("Overlay configuration watcher error")
			}
		}
	}()

	return nil
}
