// Package supervisor keeps the set of running overlay processes in line
// with the overlays the user has enabled.
package supervisor

import (
	"slices"

	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/store"
)

// Supervisor owns the table of running overlays. It is not safe for
// concurrent use; the control loop calls it from one goroutine.
type Supervisor struct {
	launcher Launcher
	journal  Journal
	log      logger.Logger
	procs    map[store.Kind]Process
}

type Option func(*Supervisor)

// WithJournal records every start and end in j.
func WithJournal(j Journal) Option {
	return func(s *Supervisor) {
		s.journal = j
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Supervisor) {
		s.log = log
	}
}

func New(launcher Launcher, opts ...Option) *Supervisor {
	s := &Supervisor{
		launcher: launcher,
		log:      logger.Default().With("supervisor"),
		procs:    make(map[store.Kind]Process),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Reconcile starts enabled overlays that are not running and stops running
// overlays that are not enabled. Kinds missing from desired count as
// disabled. Calling it again with the same desired state does nothing.
func (s *Supervisor) Reconcile(desired map[store.Kind]bool) Report {
	var report Report

	for _, kind := range s.kinds(desired) {
		p, running := s.procs[kind]
		if running && exited(p) {
			delete(s.procs, kind)
			s.record(kind, p.Pid(), ReasonExited)
			s.log.Info().Str("kind", string(kind)).Int("pid", p.Pid()).Msg("Overlay exited")
			report.Exited = append(report.Exited, kind)
			// Relaunching an overlay the user closed would fight the user.
			continue
		}

		switch want := desired[kind]; {
		case want && !running:
			p, err := s.launcher.Launch(kind)
			if err != nil {
				s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Failed to launch overlay")
				report.Errors = append(report.Errors, &LaunchError{Kind: string(kind), Err: err})
				continue
			}
			s.procs[kind] = p
			s.recordStart(kind, p.Pid())
			s.log.Info().Str("kind", string(kind)).Int("pid", p.Pid()).Msg("Overlay started")
			report.Started = append(report.Started, kind)
		case !want && running:
			s.stop(kind, p, ReasonStopped)
			report.Stopped = append(report.Stopped, kind)
		}
	}

	return report
}

// ShutdownAll terminates every running overlay and empties the table.
func (s *Supervisor) ShutdownAll() {
	for _, kind := range s.kinds(nil) {
		s.stop(kind, s.procs[kind], ReasonShutdown)
	}
}

// Running returns the kinds with a live handle, in display order.
func (s *Supervisor) Running() []store.Kind {
	return s.kinds(nil)
}

// Pid returns the process ID of the overlay for kind.
func (s *Supervisor) Pid(kind store.Kind) (int, bool) {
	p, ok := s.procs[kind]
	if !ok {
		return 0, false
	}

	return p.Pid(), true
}

// stop signals termination and forgets the handle at once; the OS is
// trusted to deliver the signal.
func (s *Supervisor) stop(kind store.Kind, p Process, reason string) {
	delete(s.procs, kind)
	if err := p.Terminate(); err != nil {
		s.log.Debug().Err(err).Str("kind", string(kind)).Int("pid", p.Pid()).Msg("Failed to terminate overlay")
	}
	s.record(kind, p.Pid(), reason)
	s.log.Info().Str("kind", string(kind)).Int("pid", p.Pid()).Str("reason", reason).Msg("Overlay stopped")
}

func (s *Supervisor) recordStart(kind store.Kind, pid int) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Started(kind, pid); err != nil {
		s.log.Warn().Err(err).Msg("Failed to journal overlay start")
	}
}

func (s *Supervisor) record(kind store.Kind, pid int, reason string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Ended(kind, pid, reason); err != nil {
		s.log.Warn().Err(err).Msg("Failed to journal overlay end")
	}
}

// kinds returns the union of desired and running kinds, overlay kinds
// first in display order and any others sorted after them.
func (s *Supervisor) kinds(desired map[store.Kind]bool) []store.Kind {
	var out []store.Kind
	seen := make(map[store.Kind]bool)
	add := func(k store.Kind) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}

	for _, k := range store.OverlayKinds {
		_, want := desired[k]
		_, running := s.procs[k]
		if want || running {
			add(k)
		}
	}

	var extra []store.Kind
	for k := range desired {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	for k := range s.procs {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		add(k)
	}

	return out
}

func exited(p Process) bool {
	select {
	case <-p.Done():
		return true
	default:
		return false
	}
}
