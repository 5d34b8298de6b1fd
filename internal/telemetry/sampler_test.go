package telemetry_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newSampler(feed *fakeFeed, cfg telemetry.Config) *telemetry.Sampler {
	return telemetry.NewSampler(telemetry.NewAdapter(feed, logger.Default()), cfg, logger.Default())
}

// connected returns a sampler that has completed its connect tick at epoch.
func connected(t *testing.T, feed *fakeFeed) *telemetry.Sampler {
	t.Helper()
	s := newSampler(feed, telemetry.DefaultConfig())
	s.Tick(epoch)
	require.Equal(t, telemetry.Connected, s.State())
	return s
}

func TestSnapshotStartsAtSentinel(t *testing.T) {
	s := newSampler(&fakeFeed{openErr: true}, telemetry.DefaultConfig())

	snap := s.Snapshot()
	assert.Zero(t, snap.Speed)
	assert.Zero(t, snap.LastLapTime)
	assert.False(t, snap.Connected)
	assert.Equal(t, telemetry.Disconnected, s.State())
}

func TestTickThrottles(t *testing.T) {
	feed := &fakeFeed{steps: []step{frame(10, 90), frame(20, 91), frame(30, 92)}}
	s := connected(t, feed)

	s.Tick(epoch.Add(16 * time.Millisecond))
	s.Tick(epoch.Add(20 * time.Millisecond))
	s.Tick(epoch.Add(31 * time.Millisecond))
	assert.Equal(t, 1, feed.nexts, "ticks within 16ms of the last attempt are no-ops")
	assert.InDelta(t, 10.0, s.Snapshot().Speed, 1e-9)

	s.Tick(epoch.Add(32 * time.Millisecond))
	assert.Equal(t, 2, feed.nexts)
	assert.InDelta(t, 20.0, s.Snapshot().Speed, 1e-9)
	assert.InDelta(t, 91.0, s.Snapshot().LastLapTime, 1e-9)
	assert.Equal(t, epoch.Add(32*time.Millisecond), s.Snapshot().UpdatedAt)
}

func TestSampleUsesConfiguredTimeout(t *testing.T) {
	feed := &fakeFeed{steps: []step{frame(1, 1)}}
	s := connected(t, feed)

	s.Tick(epoch.Add(time.Second))
	assert.Equal(t, []time.Duration{16 * time.Millisecond}, feed.timeouts)
}

func TestSnapshotKeepsValuesOnGaps(t *testing.T) {
	feed := &fakeFeed{steps: []step{
		frame(33, 95.5),
		fail(telemetry.ErrTimeout),
		{frame: telemetry.Fields{}},
		{frame: telemetry.Fields{telemetry.FieldSpeed: 40}},
	}}
	s := connected(t, feed)

	now := epoch
	tick := func() {
		now = now.Add(16 * time.Millisecond)
		s.Tick(now)
	}

	tick()
	assert.InDelta(t, 33.0, s.Snapshot().Speed, 1e-9)

	tick()
	assert.InDelta(t, 33.0, s.Snapshot().Speed, 1e-9, "timeout keeps previous value")
	assert.InDelta(t, 95.5, s.Snapshot().LastLapTime, 1e-9)

	tick()
	assert.InDelta(t, 33.0, s.Snapshot().Speed, 1e-9, "absent field keeps previous value")
	assert.InDelta(t, 95.5, s.Snapshot().LastLapTime, 1e-9)

	tick()
	assert.InDelta(t, 40.0, s.Snapshot().Speed, 1e-9)
	assert.InDelta(t, 95.5, s.Snapshot().LastLapTime, 1e-9)
	assert.Equal(t, telemetry.Connected, s.State())
}

func TestConnectionLossDisconnectsAndRetries(t *testing.T) {
	feed := &fakeFeed{steps: []step{frame(50, 80), fail(telemetry.ErrConnectionLost), frame(60, 81)}}
	s := connected(t, feed)

	s.Tick(epoch.Add(16 * time.Millisecond))
	s.Tick(epoch.Add(32 * time.Millisecond))
	assert.Equal(t, telemetry.Disconnected, s.State())
	assert.False(t, s.Snapshot().Connected)
	assert.InDelta(t, 50.0, s.Snapshot().Speed, 1e-9, "values survive the disconnect")

	feed.openErr = true
	for i := 3; i < 10; i++ {
		s.Tick(epoch.Add(time.Duration(i) * 16 * time.Millisecond))
	}
	assert.Equal(t, telemetry.Disconnected, s.State())
	assert.Equal(t, 8, feed.opens, "every eligible tick retries without backoff")

	feed.openErr = false
	s.Tick(epoch.Add(10 * 16 * time.Millisecond))
	assert.Equal(t, telemetry.Connected, s.State())
	assert.True(t, s.Snapshot().Connected)

	s.Tick(epoch.Add(11 * 16 * time.Millisecond))
	assert.InDelta(t, 60.0, s.Snapshot().Speed, 1e-9)
}

func TestReconnectBackoffIsCapped(t *testing.T) {
	feed := &fakeFeed{openErr: true}
	cfg := telemetry.DefaultConfig()
	cfg.ReconnectBackoff = true
	s := newSampler(feed, cfg)

	// Tick every 16ms for 10 seconds.
	for now := epoch; now.Before(epoch.Add(10 * time.Second)); now = now.Add(16 * time.Millisecond) {
		s.Tick(now)
	}

	// 16ms doubling to 1s: 7 attempts to reach the cap, then about one per second.
	assert.Greater(t, feed.opens, 10)
	assert.Less(t, feed.opens, 25)

	opensBefore := feed.opens
	feed.openErr = false
	for now := epoch.Add(10 * time.Second); now.Before(epoch.Add(11 * time.Second)); now = now.Add(16 * time.Millisecond) {
		s.Tick(now)
	}
	assert.Equal(t, telemetry.Connected, s.State(), "reconnects within the backoff ceiling")
	assert.Equal(t, opensBefore+1, feed.opens)
}

func TestClose(t *testing.T) {
	feed := &fakeFeed{}
	s := connected(t, feed)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, feed.closed)
	assert.Equal(t, telemetry.Disconnected, s.State())
	assert.False(t, s.Snapshot().Connected)
}
