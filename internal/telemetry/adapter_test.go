package telemetry_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectFailure(t *testing.T) {
	a := telemetry.NewAdapter(&fakeFeed{openErr: true}, logger.Default())

	_, err := a.Connect()
	require.Error(t, err)
	assert.True(t, telemetry.IsConnectionError(err))
}

func TestSampleField(t *testing.T) {
	feed := &fakeFeed{steps: []step{
		frame(41.5, 92.1),
		{frame: telemetry.Fields{telemetry.FieldSpeed: 12}},
		fail(telemetry.ErrTimeout),
	}}
	a := telemetry.NewAdapter(feed, logger.Default())
	h, err := a.Connect()
	require.NoError(t, err)

	v, err := a.SampleField(h, telemetry.FieldSpeed, 16*time.Millisecond)
	require.NoError(t, err)
	assert.InDelta(t, 41.5, v, 1e-9)

	_, err = a.SampleField(h, telemetry.FieldLastLapTime, 16*time.Millisecond)
	assert.True(t, telemetry.IsNotPresent(err))
	assert.False(t, telemetry.IsTimeout(err))

	_, err = a.SampleField(h, telemetry.FieldSpeed, 16*time.Millisecond)
	assert.True(t, telemetry.IsTimeout(err))
	assert.False(t, telemetry.IsConnectionLost(err))

	assert.Equal(t, []time.Duration{16 * time.Millisecond, 16 * time.Millisecond, 16 * time.Millisecond}, feed.timeouts)
}

func TestSampleReconnectsSilently(t *testing.T) {
	feed := &fakeFeed{steps: []step{fail(telemetry.ErrConnectionLost), frame(5, 60)}}
	a := telemetry.NewAdapter(feed, logger.Default())
	h, err := a.Connect()
	require.NoError(t, err)

	_, err = a.Sample(h, time.Millisecond)
	assert.True(t, telemetry.IsTimeout(err), "lost connection is reported as a timeout")
	assert.True(t, telemetry.IsConnectionLost(err))
	assert.Equal(t, 1, feed.closed)

	feed.openErr = true
	_, err = a.Sample(h, time.Millisecond)
	assert.True(t, telemetry.IsTimeout(err), "timeouts until reconnection succeeds")
	assert.Equal(t, 2, feed.opens)

	feed.openErr = false
	f, err := a.Sample(h, time.Millisecond)
	require.NoError(t, err)
	v, ok := f.Float(telemetry.FieldSpeed)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-9)
	assert.Equal(t, 3, feed.opens)
}

func TestCloseNilHandle(t *testing.T) {
	a := telemetry.NewAdapter(&fakeFeed{}, logger.Default())
	assert.NoError(t, a.Close(nil))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, telemetry.DefaultConfig().Validate())

	cfg := telemetry.DefaultConfig()
	cfg.PollInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = telemetry.DefaultConfig()
	cfg.SampleTimeout = -time.Millisecond
	assert.Error(t, cfg.Validate())

	cfg = telemetry.DefaultConfig()
	cfg.ReconnectBackoff = true
	cfg.MaxBackoff = time.Millisecond
	assert.Error(t, cfg.Validate())
}
