// Package journal keeps a sqlite record of overlay process lifecycles so a
// restarted control app can find overlays a crashed run left behind.
package journal

import (
	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/store"
)

// No-op implementation
type noopJournal struct{}

// New opens the journal described by cfg, or a no-op journal when it is
// disabled.
func New(cfg Config, log logger.Logger) (Journal, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Lifecycle journal disabled, using no-op journal")
		return noopJournal{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create journal repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Msg("Lifecycle journal initialized successfully")

	return repo, nil
}

func (noopJournal) Started(store.Kind, int) error       { return nil }
func (noopJournal) Ended(store.Kind, int, string) error { return nil }
func (noopJournal) Open() ([]Session, error)            { return nil, nil }
func (noopJournal) CloseStale(string) (int, error)      { return 0, nil }
func (noopJournal) Close() error                        { return nil }
