package journal

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewRepository opens or creates the sqlite journal at cfg.DBPath.
func NewRepository(cfg Config, log logger.Logger) (Journal, error) {
	return newRepository(cfg, log, time.Now)
}

func newRepository(cfg Config, log logger.Logger, now func() time.Time) (*repository, error) {
	errFactory := errors.New()

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_busy_timeout=1000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}
	db.SetMaxOpenConns(1)

	if err := ValidateAndUpdateSchema(db, cfg, log); err != nil {
		db.Close()
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "schema_version",
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Journal repository initialized")

	return &repository{db: db, logger: log, now: now}, nil
}

func (r *repository) Started(kind store.Kind, pid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec(insertSessionSQL, string(kind), pid, r.now().Unix()); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err)
	}
	return nil
}

func (r *repository) Ended(kind store.Kind, pid int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec(endSessionSQL, r.now().Unix(), reason, string(kind), pid); err != nil {
		return errors.New().Wrap(ErrWriteFailed, err)
	}
	return nil
}

func (r *repository) Open() ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	rows, err := r.db.Query(openSessionsSQL)
	if err != nil {
		return nil, errFactory.Wrap(ErrQueryFailed, err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			s       Session
			kind    string
			started int64
		)
		if err := rows.Scan(&s.ID, &kind, &s.Pid, &started); err != nil {
			return nil, errFactory.Wrap(ErrQueryFailed, err)
		}
		s.Kind = store.Kind(kind)
		s.StartedAt = time.Unix(started, 0)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errFactory.Wrap(ErrQueryFailed, err)
	}

	return sessions, nil
}

func (r *repository) CloseStale(reason string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(closeStaleSQL, r.now().Unix(), reason)
	if err != nil {
		return 0, errors.New().Wrap(ErrWriteFailed, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.New().Wrap(ErrWriteFailed, err)
	}
	if n > 0 {
		r.logger.Info().Int64("sessions", n).Str("reason", reason).Msg("Closed stale overlay sessions")
	}

	return int(n), nil
}

func (r *repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errors.New().WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.logger.Debug().Msg("Journal repository closed")

	return nil
}
