package replay_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/iroverlay/internal/telemetry"
	"codeberg.org/mutker/iroverlay/internal/telemetry/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

const script = `
rate_hz: 10
frames:
  - Speed: 10
    LapLastLapTime: 90.5
  - Speed: 20
  - Speed: 30
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))

	s, err := replay.Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, s.RateHz, 1e-9)
	assert.False(t, s.Loop)
	assert.Len(t, s.Frames, 3)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := replay.Parse([]byte("rate_hz: 5\n"))
	assert.Error(t, err)

	s, err := replay.Parse([]byte("frames:\n  - Speed: 1\n"))
	require.NoError(t, err)
	assert.InDelta(t, 60.0, s.RateHz, 1e-9)
}

func TestNextPlaysFramesInOrder(t *testing.T) {
	s, err := replay.Parse([]byte(script))
	require.NoError(t, err)
	clock := &fakeClock{now: time.Unix(1000, 0)}

	conn, err := replay.NewWithClock(s, clock).Open()
	require.NoError(t, err)

	f, err := conn.Next(16 * time.Millisecond)
	require.NoError(t, err)
	v, _ := f.Float(telemetry.FieldSpeed)
	assert.InDelta(t, 10.0, v, 1e-9)
	lap, ok := f.Float(telemetry.FieldLastLapTime)
	assert.True(t, ok)
	assert.InDelta(t, 90.5, lap, 1e-9)

	// The next frame is due in 100ms, longer than the timeout.
	_, err = conn.Next(16 * time.Millisecond)
	assert.True(t, telemetry.IsTimeout(err))
	assert.Equal(t, []time.Duration{16 * time.Millisecond}, clock.slept)

	clock.now = clock.now.Add(84 * time.Millisecond)
	f, err = conn.Next(16 * time.Millisecond)
	require.NoError(t, err)
	v, _ = f.Float(telemetry.FieldSpeed)
	assert.InDelta(t, 20.0, v, 1e-9)
	_, ok = f.Float(telemetry.FieldLastLapTime)
	assert.False(t, ok, "fields absent from a frame are not present")

	clock.now = clock.now.Add(time.Second)
	_, err = conn.Next(16 * time.Millisecond)
	assert.True(t, telemetry.IsConnectionLost(err), "a finished replay without loop ends the connection")
}

func TestLoopWraps(t *testing.T) {
	s, err := replay.Parse([]byte(script))
	require.NoError(t, err)
	s.Loop = true
	clock := &fakeClock{now: time.Unix(0, 0)}

	conn, err := replay.NewWithClock(s, clock).Open()
	require.NoError(t, err)

	clock.now = clock.now.Add(350 * time.Millisecond)
	f, err := conn.Next(16 * time.Millisecond)
	require.NoError(t, err)
	v, _ := f.Float(telemetry.FieldSpeed)
	assert.InDelta(t, 10.0, v, 1e-9, "frame 3 wraps to the first frame")

	require.NoError(t, conn.Close())
	_, err = conn.Next(time.Millisecond)
	assert.True(t, telemetry.IsConnectionLost(err))
}
