package journal

import (
	"time"

	"codeberg.org/mutker/iroverlay/internal/store"
)

// Journal records when overlay processes start and end.
type Journal interface {
	Started(kind store.Kind, pid int) error
	Ended(kind store.Kind, pid int, reason string) error
	// Open lists sessions that were started but never ended.
	Open() ([]Session, error)
	// CloseStale ends every open session with reason and returns how many
	// were closed.
	CloseStale(reason string) (int, error)
	Close() error
}

type Session struct {
	ID        int64
	Kind      store.Kind
	Pid       int
	StartedAt time.Time
	EndedAt   time.Time
	EndReason string
}

// Open reports whether the session has no recorded end.
func (s Session) Open() bool {
	return s.EndedAt.IsZero()
}

// ReasonOrphaned ends sessions left open by a control app that did not
// shut down cleanly.
const ReasonOrphaned = "orphaned"
