// Package control runs one step of the control app: apply the user's edits,
// persist them and bring the overlay processes in line.
package control

import (
	"io"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/supervisor"
)

type Saver interface {
	Save(rec store.Record) error
}

type Reconciler interface {
	Reconcile(desired map[store.Kind]bool) supervisor.Report
	ShutdownAll()
	Running() []store.Kind
}

type Controller struct {
	rec     store.Record
	saver   Saver
	sup     Reconciler
	closers []io.Closer
	log     logger.Logger
}

type Option func(*Controller)

// WithCloser closes c after the overlays are shut down.
func WithCloser(c io.Closer) Option {
	return func(ctl *Controller) {
		ctl.closers = append(ctl.closers, c)
	}
}

func WithLogger(log logger.Logger) Option {
	return func(ctl *Controller) {
		ctl.log = log
	}
}

func New(rec store.Record, saver Saver, sup Reconciler, opts ...Option) *Controller {
	c := &Controller{
		rec:   rec,
		saver: saver,
		sup:   sup,
		log:   logger.Default().With("control"),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Record returns the in-memory record.
func (c *Controller) Record() store.Record {
	return c.rec
}

func (c *Controller) Running() []store.Kind {
	return c.sup.Running()
}

// Step applies actions, saves the record if they changed it, then
// reconciles. The save always happens before any overlay is launched so a
// new overlay reads the current record.
func (c *Controller) Step(actions []Action) supervisor.Report {
	changed := false
	for _, a := range actions {
		if a.Apply(&c.rec) {
			changed = true
		}
	}
	if changed {
		c.save()
	}

	report := c.sup.Reconcile(c.rec.Desired())

	// Overlays that exited or never started turn their toggle back off.
	flipped := false
	for _, kind := range report.Exited {
		flipped = c.disable(kind) || flipped
	}
	for _, err := range report.Errors {
		var launchErr *supervisor.LaunchError
		if errors.As(err, &launchErr) {
			flipped = c.disable(store.Kind(launchErr.Kind)) || flipped
		}
	}
	if flipped {
		c.save()
	}

	return report
}

// Close stops every overlay and releases the journal. It is safe to call
// on any exit path.
func (c *Controller) Close() error {
	c.sup.ShutdownAll()

	var firstErr error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (c *Controller) disable(kind store.Kind) bool {
	section := c.rec.Section(kind)
	if section == nil || !section.Enabled {
		return false
	}
	section.Enabled = false

	return true
}

func (c *Controller) save() {
	if err := c.saver.Save(c.rec); err != nil {
		c.log.Warn().Err(err).Msg("Failed to save overlay configuration")
	}
}
