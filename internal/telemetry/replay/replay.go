// Package replay plays a recorded telemetry script as a live feed, for
// development away from the simulator.
package replay

import (
	"fmt"
	"os"
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
	"gopkg.in/yaml.v2"
)

const defaultRateHz = 60

// Script is a decoded replay file.
//
//	rate_hz: 60
//	loop: true
//	frames:
//	  - Speed: 41.2
//	    LapLastLapTime: 92.5
//	  - Speed: 41.9
type Script struct {
	RateHz float64              `yaml:"rate_hz"`
	Loop   bool                 `yaml:"loop"`
	Frames []map[string]float64 `yaml:"frames"`
}

// Clock is the time source of a replay.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// Load reads and validates a replay script.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if len(s.Frames) == 0 {
		return nil, fmt.Errorf("replay has no frames")
	}
	if s.RateHz <= 0 {
		s.RateHz = defaultRateHz
	}

	return &s, nil
}

// Feed serves a Script. Every Open restarts the script from its first frame.
type Feed struct {
	script *Script
	clock  Clock
}

func New(script *Script) *Feed {
	return NewWithClock(script, wallClock{})
}

func NewWithClock(script *Script, clock Clock) *Feed {
	return &Feed{script: script, clock: clock}
}

func (f *Feed) Open() (telemetry.Conn, error) {
	if f.script == nil || len(f.script.Frames) == 0 {
		return nil, errors.New().WithMessage(telemetry.ErrConnection, "replay has no frames")
	}

	return &conn{
		script: f.script,
		clock:  f.clock,
		start:  f.clock.Now(),
		period: time.Duration(float64(time.Second) / f.script.RateHz),
		served: -1,
	}, nil
}

type conn struct {
	script *Script
	clock  Clock
	start  time.Time
	period time.Duration
	served int
	closed bool
}

func (c *conn) Next(timeout time.Duration) (telemetry.Frame, error) {
	errFactory := errors.New()

	if c.closed {
		return nil, errFactory.New(telemetry.ErrConnectionLost)
	}

	// Skip frames that fell due while nobody was sampling.
	next := max(c.served+1, int(c.clock.Now().Sub(c.start)/c.period))
	wait := c.start.Add(time.Duration(next) * c.period).Sub(c.clock.Now())
	if wait > timeout {
		c.clock.Sleep(timeout)
		return nil, errFactory.New(telemetry.ErrTimeout)
	}
	if wait > 0 {
		c.clock.Sleep(wait)
	}

	n := len(c.script.Frames)
	if !c.script.Loop && next >= n {
		return nil, errFactory.WithMessage(telemetry.ErrConnectionLost, "replay finished")
	}
	c.served = next

	return telemetry.Fields(c.script.Frames[next%n]), nil
}

func (c *conn) Close() error {
	c.closed = true
	return nil
}
