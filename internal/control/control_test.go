package control_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/iroverlay/internal/control"
	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/supervisor"
	"codeberg.org/mutker/iroverlay/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// event is one call observed by the fakes, in order.
type event struct {
	name    string
	enabled map[store.Kind]bool
}

type recorder struct {
	events []event
}

type fakeSaver struct {
	*recorder
	saved []store.Record
	err   error
}

func (s *fakeSaver) Save(rec store.Record) error {
	s.events = append(s.events, event{name: "save", enabled: rec.Desired()})
	s.saved = append(s.saved, rec)
	return s.err
}

type fakeSupervisor struct {
	*recorder
	next     supervisor.Report
	running  []store.Kind
	shutdown int
}

func (s *fakeSupervisor) Reconcile(desired map[store.Kind]bool) supervisor.Report {
	s.events = append(s.events, event{name: "reconcile", enabled: desired})
	report := s.next
	s.next = supervisor.Report{}
	return report
}

func (s *fakeSupervisor) ShutdownAll()          { s.shutdown++ }
func (s *fakeSupervisor) Running() []store.Kind { return s.running }

type fakeCloser struct{ closed bool }

func (c *fakeCloser) Close() error {
	c.closed = true
	return nil
}

func newController(t *testing.T) (*control.Controller, *fakeSaver, *fakeSupervisor, *recorder) {
	t.Helper()
	rec := &recorder{}
	saver := &fakeSaver{recorder: rec}
	sup := &fakeSupervisor{recorder: rec}
	return control.New(store.Default(), saver, sup), saver, sup, rec
}

func TestStepSavesBeforeReconcile(t *testing.T) {
	ctl, saver, _, rec := newController(t)

	ctl.Step([]control.Action{{Op: control.OpToggle, Kind: store.KindSpeed}})

	require.Len(t, rec.events, 2)
	assert.Equal(t, "save", rec.events[0].name)
	assert.Equal(t, "reconcile", rec.events[1].name)
	assert.True(t, rec.events[1].enabled[store.KindSpeed])
	assert.True(t, saver.saved[0].Speed.Enabled)
}

func TestStepWithoutChangesDoesNotSave(t *testing.T) {
	ctl, saver, _, rec := newController(t)

	ctl.Step(nil)
	ctl.Step([]control.Action{{Op: control.OpToggle, Kind: store.KindHome}})

	assert.Empty(t, saver.saved)
	require.Len(t, rec.events, 2)
	assert.Equal(t, "reconcile", rec.events[0].name)
}

func TestSaveFailureStillReconciles(t *testing.T) {
	ctl, saver, _, rec := newController(t)
	saver.err = errors.New().New(store.ErrConfigSave)

	ctl.Step([]control.Action{{Op: control.OpToggle, Kind: store.KindLastLapTime}})

	require.Len(t, rec.events, 2)
	assert.Equal(t, "reconcile", rec.events[1].name)
	assert.True(t, ctl.Record().LastLapTime.Enabled)
}

func TestLaunchErrorTurnsToggleOff(t *testing.T) {
	ctl, saver, sup, _ := newController(t)
	sup.next = supervisor.Report{Errors: []error{
		&supervisor.LaunchError{Kind: string(store.KindSpeed), Err: fmt.Errorf("not found")},
	}}

	ctl.Step([]control.Action{{Op: control.OpToggle, Kind: store.KindSpeed}})

	assert.False(t, ctl.Record().Speed.Enabled)
	require.Len(t, saver.saved, 2)
	assert.False(t, saver.saved[1].Speed.Enabled, "the toggle is persisted off")
}

func TestExitedOverlayTurnsToggleOff(t *testing.T) {
	ctl, saver, sup, _ := newController(t)
	ctl.Step([]control.Action{{Op: control.OpToggle, Kind: store.KindLastLapTime}})
	require.Len(t, saver.saved, 1)

	sup.next = supervisor.Report{Exited: []store.Kind{store.KindLastLapTime}}
	ctl.Step(nil)

	assert.False(t, ctl.Record().LastLapTime.Enabled)
	assert.Len(t, saver.saved, 2)
}

func TestCloseShutsDownAndCloses(t *testing.T) {
	rec := &recorder{}
	sup := &fakeSupervisor{recorder: rec}
	closer := &fakeCloser{}
	ctl := control.New(store.Default(), &fakeSaver{recorder: rec}, sup, control.WithCloser(closer))

	require.NoError(t, ctl.Close())
	assert.Equal(t, 1, sup.shutdown)
	assert.True(t, closer.closed)
}

func TestActionApply(t *testing.T) {
	rec := store.Default()

	assert.True(t, control.Action{Op: control.OpFontLarger, Kind: store.KindSpeed}.Apply(&rec))
	assert.InDelta(t, 24.5, rec.Speed.FontSize, 1e-9)

	rec.Home.FontSize = store.MinFontSize
	assert.False(t, control.Action{Op: control.OpFontSmaller, Kind: store.KindHome}.Apply(&rec), "clamped at the minimum")

	assert.True(t, control.Action{Op: control.OpCycleUnits, Kind: store.KindSpeed}.Apply(&rec))
	assert.Equal(t, units.MilesPerHour, rec.Speed.Units)
	assert.False(t, control.Action{Op: control.OpCycleUnits, Kind: store.KindLastLapTime}.Apply(&rec))

	before := rec.LastLapTime.BackgroundColor
	assert.True(t, control.Action{Op: control.OpCycleBackground, Kind: store.KindLastLapTime}.Apply(&rec))
	assert.Equal(t, store.NextInPalette(before), rec.LastLapTime.BackgroundColor)

	assert.False(t, control.Action{Op: control.OpToggle, Kind: store.Kind("bogus")}.Apply(&rec))
}
