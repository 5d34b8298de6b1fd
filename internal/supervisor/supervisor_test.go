package supervisor_test

import (
	"fmt"
	"testing"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid        int
	done       chan struct{}
	terminated int
}

func (p *fakeProcess) Pid() int                 { return p.pid }
func (p *fakeProcess) Done() <-chan struct{}    { return p.done }
func (p *fakeProcess) exit()                    { close(p.done) }
func (p *fakeProcess) Terminate() error {
	p.terminated++
	return nil
}

type fakeLauncher struct {
	nextPid  int
	fail     map[store.Kind]bool
	launched map[store.Kind][]*fakeProcess
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{
		nextPid:  100,
		fail:     make(map[store.Kind]bool),
		launched: make(map[store.Kind][]*fakeProcess),
	}
}

func (l *fakeLauncher) Launch(kind store.Kind) (supervisor.Process, error) {
	if l.fail[kind] {
		return nil, errors.New().Wrap(supervisor.ErrLaunch, fmt.Errorf("executable not found"))
	}
	l.nextPid++
	p := &fakeProcess{pid: l.nextPid, done: make(chan struct{})}
	l.launched[kind] = append(l.launched[kind], p)

	return p, nil
}

func (l *fakeLauncher) count() int {
	n := 0
	for _, ps := range l.launched {
		n += len(ps)
	}
	return n
}

type journalEntry struct {
	kind   store.Kind
	pid    int
	reason string
}

type fakeJournal struct {
	entries []journalEntry
}

func (j *fakeJournal) Started(kind store.Kind, pid int) error {
	j.entries = append(j.entries, journalEntry{kind, pid, "started"})
	return nil
}

func (j *fakeJournal) Ended(kind store.Kind, pid int, reason string) error {
	j.entries = append(j.entries, journalEntry{kind, pid, reason})
	return nil
}

func TestReconcileConverges(t *testing.T) {
	l := newFakeLauncher()
	s := supervisor.New(l)

	report := s.Reconcile(map[store.Kind]bool{store.KindSpeed: true})
	assert.Equal(t, []store.Kind{store.KindSpeed}, report.Started)
	assert.Equal(t, []store.Kind{store.KindSpeed}, s.Running())
	require.Len(t, l.launched[store.KindSpeed], 1)

	p := l.launched[store.KindSpeed][0]
	pid, ok := s.Pid(store.KindSpeed)
	assert.True(t, ok)
	assert.Equal(t, p.pid, pid)

	report = s.Reconcile(map[store.Kind]bool{store.KindSpeed: false})
	assert.Equal(t, []store.Kind{store.KindSpeed}, report.Stopped)
	assert.Empty(t, s.Running())
	assert.Equal(t, 1, p.terminated)
	_, ok = s.Pid(store.KindSpeed)
	assert.False(t, ok)
}

func TestReconcileIsIdempotent(t *testing.T) {
	l := newFakeLauncher()
	s := supervisor.New(l)
	desired := map[store.Kind]bool{store.KindSpeed: true, store.KindLastLapTime: false}

	first := s.Reconcile(desired)
	assert.True(t, first.Changed())

	second := s.Reconcile(desired)
	assert.False(t, second.Changed())
	assert.Empty(t, second.Errors)
	assert.Equal(t, 1, l.count())

	off := map[store.Kind]bool{store.KindSpeed: false}
	s.Reconcile(off)
	third := s.Reconcile(off)
	assert.False(t, third.Changed())
	assert.Equal(t, 1, l.launched[store.KindSpeed][0].terminated)
}

func TestMissingKindCountsAsDisabled(t *testing.T) {
	l := newFakeLauncher()
	s := supervisor.New(l)

	s.Reconcile(map[store.Kind]bool{store.KindSpeed: true, store.KindLastLapTime: true})
	report := s.Reconcile(map[store.Kind]bool{store.KindSpeed: true})
	assert.Equal(t, []store.Kind{store.KindLastLapTime}, report.Stopped)
	assert.Equal(t, []store.Kind{store.KindSpeed}, s.Running())
}

func TestLaunchFailureIsNonFatal(t *testing.T) {
	l := newFakeLauncher()
	l.fail[store.KindLastLapTime] = true
	s := supervisor.New(l)

	report := s.Reconcile(map[store.Kind]bool{store.KindSpeed: true, store.KindLastLapTime: true})
	assert.Equal(t, []store.Kind{store.KindSpeed}, report.Started)
	require.Len(t, report.Errors, 1)

	var launchErr *supervisor.LaunchError
	require.ErrorAs(t, report.Errors[0], &launchErr)
	assert.Equal(t, string(store.KindLastLapTime), launchErr.Kind)
	assert.Equal(t, supervisor.ErrLaunch, errors.CodeOf(launchErr.Err))
	assert.Equal(t, []store.Kind{store.KindSpeed}, s.Running())

	// The next pass retries.
	l.fail[store.KindLastLapTime] = false
	report = s.Reconcile(map[store.Kind]bool{store.KindSpeed: true, store.KindLastLapTime: true})
	assert.Equal(t, []store.Kind{store.KindLastLapTime}, report.Started)
}

func TestExitedOverlayIsForgotten(t *testing.T) {
	l := newFakeLauncher()
	s := supervisor.New(l)
	desired := map[store.Kind]bool{store.KindSpeed: true}

	s.Reconcile(desired)
	l.launched[store.KindSpeed][0].exit()

	report := s.Reconcile(desired)
	assert.Equal(t, []store.Kind{store.KindSpeed}, report.Exited)
	assert.Empty(t, report.Started, "an overlay closed by the user is not relaunched in the same pass")
	assert.Empty(t, s.Running())
	assert.Equal(t, 0, l.launched[store.KindSpeed][0].terminated)
}

func TestShutdownAll(t *testing.T) {
	l := newFakeLauncher()
	j := &fakeJournal{}
	s := supervisor.New(l, supervisor.WithJournal(j))

	s.Reconcile(map[store.Kind]bool{store.KindSpeed: true, store.KindLastLapTime: true})
	s.ShutdownAll()

	assert.Empty(t, s.Running())
	for _, kind := range store.OverlayKinds {
		require.Len(t, l.launched[kind], 1)
		assert.Equal(t, 1, l.launched[kind][0].terminated, kind)
	}

	speed := l.launched[store.KindSpeed][0].pid
	lap := l.launched[store.KindLastLapTime][0].pid
	assert.Equal(t, []journalEntry{
		{store.KindSpeed, speed, "started"},
		{store.KindLastLapTime, lap, "started"},
		{store.KindSpeed, speed, supervisor.ReasonShutdown},
		{store.KindLastLapTime, lap, supervisor.ReasonShutdown},
	}, j.entries)

	// A second shutdown has nothing left to do.
	s.ShutdownAll()
	assert.Equal(t, 1, l.launched[store.KindSpeed][0].terminated)
}
