package telemetry_test

import (
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
)

// step is one scripted result of Conn.Next.
type step struct {
	frame telemetry.Frame
	err   errors.ErrorCode
}

type fakeFeed struct {
	opens    int
	openErr  bool
	steps    []step
	nexts    int
	closed   int
	timeouts []time.Duration
}

func (f *fakeFeed) Open() (telemetry.Conn, error) {
	f.opens++
	if f.openErr {
		return nil, errors.New().New(telemetry.ErrConnection)
	}

	return &fakeConn{feed: f}, nil
}

type fakeConn struct {
	feed *fakeFeed
}

func (c *fakeConn) Next(timeout time.Duration) (telemetry.Frame, error) {
	f := c.feed
	f.nexts++
	f.timeouts = append(f.timeouts, timeout)
	if len(f.steps) == 0 {
		return nil, errors.New().New(telemetry.ErrTimeout)
	}

	s := f.steps[0]
	f.steps = f.steps[1:]
	if s.err != "" {
		return nil, errors.New().New(s.err)
	}

	return s.frame, nil
}

func (c *fakeConn) Close() error {
	c.feed.closed++
	return nil
}

func frame(speed, lap float64) step {
	return step{frame: telemetry.Fields{
		telemetry.FieldSpeed:       speed,
		telemetry.FieldLastLapTime: lap,
	}}
}

func fail(code errors.ErrorCode) step {
	return step{err: code}
}
