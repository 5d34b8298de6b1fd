// Package telemetry samples a live race-telemetry feed at a fixed cadence
// and keeps the last known value of each tracked field.
package telemetry

import (
	"fmt"
	"time"
)

// Field names published by the feed.
const (
	FieldSpeed       = "Speed"
	FieldLastLapTime = "LapLastLapTime"
)

// Feed is the native telemetry binding.
type Feed interface {
	// Open connects to the running source. It fails with an ErrConnection
	// coded error when the source is not running.
	Open() (Conn, error)
}

// Conn is one open connection to a Feed.
type Conn interface {
	// Next blocks up to timeout for the next update cycle. It returns an
	// ErrTimeout coded error when no cycle arrived and an ErrConnectionLost
	// coded error once the source has gone away.
	Next(timeout time.Duration) (Frame, error)
	Close() error
}

// Frame is the data of a single update cycle.
type Frame interface {
	// Float returns a numeric field, or false when the cycle does not carry it.
	Float(name string) (float64, bool)
}

// Snapshot is the last known telemetry. Values stay at 0 until the first
// successful sample and are never reset by gaps in the feed.
type Snapshot struct {
	// Speed in meters per second.
	Speed float64
	// LastLapTime in seconds.
	LastLapTime float64
	Connected   bool
	UpdatedAt   time.Time
}

// State of a Sampler's connection.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fields is a simple Frame backed by a map, used by feeds that decode into
// memory.
type Fields map[string]float64

func (f Fields) Float(name string) (float64, bool) {
	v, ok := f[name]
	return v, ok
}
