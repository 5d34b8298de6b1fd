package supervisor

import "codeberg.org/mutker/iroverlay/internal/store"

// Process is a running overlay.
type Process interface {
	Pid() int
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// Terminate asks the process to exit without waiting for it.
	Terminate() error
}

// Launcher starts the overlay executable for a kind.
type Launcher interface {
	Launch(kind store.Kind) (Process, error)
}

// Journal records overlay lifecycles. Implementations must not block the
// update loop for long.
type Journal interface {
	Started(kind store.Kind, pid int) error
	Ended(kind store.Kind, pid int, reason string) error
}

// End reasons recorded in the journal.
const (
	ReasonStopped  = "stopped"
	ReasonExited   = "exited"
	ReasonShutdown = "shutdown"
)

// Report lists what one reconciliation pass did.
type Report struct {
	Started []store.Kind
	Stopped []store.Kind
	// Exited lists overlays found to have exited on their own.
	Exited []store.Kind
	// Errors holds one LaunchError per overlay that failed to start.
	Errors []error
}

// Changed reports whether the pass changed the process table.
func (r Report) Changed() bool {
	return len(r.Started)+len(r.Stopped)+len(r.Exited) > 0
}
