package supervisor

import (
	"time"

	"codeberg.org/mutker/iroverlay/internal/journal"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/proc"
)

// StartSlack is how far a live process's start time may be from the
// session's recorded start for the process to count as that overlay. The
// journal stores whole seconds and records the start after exec returns.
const StartSlack = 5 * time.Second

// ProcessTable looks up and signals processes by PID.
type ProcessTable interface {
	Alive(pid int) bool
	StartTime(pid int) (time.Time, error)
	Terminate(pid int) error
	Kill(pid int) error
	WaitExit(pid int, timeout time.Duration) bool
}

type osProcessTable struct{}

// OSProcessTable returns the operating system's process table.
func OSProcessTable() ProcessTable { return osProcessTable{} }

func (osProcessTable) Alive(pid int) bool                     { return proc.Alive(pid) }
func (osProcessTable) StartTime(pid int) (time.Time, error)   { return proc.StartTime(pid) }
func (osProcessTable) Terminate(pid int) error                { return proc.TerminatePID(pid) }
func (osProcessTable) Kill(pid int) error                     { return proc.KillPID(pid) }
func (osProcessTable) WaitExit(pid int, t time.Duration) bool { return proc.WaitExit(pid, t) }

// Reaper terminates overlays a crashed control app left running.
type Reaper struct {
	procs ProcessTable
	force bool
	grace time.Duration
	log   logger.Logger
}

// NewReaper returns a reaper. A live PID is reaped when its start time
// matches the session's start. With force set, it is also reaped when the
// start time cannot be read or does not match.
func NewReaper(procs ProcessTable, force bool, grace time.Duration, log logger.Logger) *Reaper {
	return &Reaper{procs: procs, force: force, grace: grace, log: log}
}

// Reap terminates the still-running processes of sessions and returns the
// PIDs it signalled.
func (r *Reaper) Reap(sessions []journal.Session) []int {
	var reaped []int
	for _, s := range sessions {
		if !s.Open() || !r.procs.Alive(s.Pid) {
			continue
		}
		if !r.owns(s) {
			r.log.Info().
				Str("kind", string(s.Kind)).
				Int("pid", s.Pid).
				Msg("Leaving process alone, it does not match the orphaned overlay")
			continue
		}

		r.log.Info().Str("kind", string(s.Kind)).Int("pid", s.Pid).Msg("Terminating orphaned overlay")
		if err := r.procs.Terminate(s.Pid); err != nil {
			r.log.Debug().Err(err).Int("pid", s.Pid).Msg("Failed to terminate orphaned overlay")
			continue
		}
		reaped = append(reaped, s.Pid)

		if r.procs.WaitExit(s.Pid, r.grace) {
			continue
		}
		if err := r.procs.Kill(s.Pid); err != nil {
			r.log.Debug().Err(err).Int("pid", s.Pid).Msg("Failed to kill orphaned overlay")
		}
	}

	return reaped
}

func (r *Reaper) owns(s journal.Session) bool {
	started, err := r.procs.StartTime(s.Pid)
	if err != nil {
		r.log.Debug().Err(err).Int("pid", s.Pid).Msg("Failed to read process start time")
		return r.force
	}

	diff := started.Sub(s.StartedAt)
	if diff < 0 {
		diff = -diff
	}

	return diff <= StartSlack || r.force
}
