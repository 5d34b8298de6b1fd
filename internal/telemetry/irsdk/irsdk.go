// Package irsdk reads the iRacing simulator's shared-memory telemetry.
package irsdk

import (
	"fmt"
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
)

// copyAttempts bounds retries when the sim rewrites a buffer mid-copy.
const copyAttempts = 2

// memory is the mapped telemetry region plus its data-valid event.
type memory interface {
	// Bytes returns the live mapped region.
	Bytes() []byte
	// Wait blocks up to timeout for the data-valid event and reports
	// whether it was signaled.
	Wait(timeout time.Duration) (bool, error)
	Close() error
}

// Feed opens connections to a running iRacing simulator.
type Feed struct {
	open func() (memory, error)
	log  logger.Logger
}

func New(log logger.Logger) *Feed {
	return &Feed{open: openMemory, log: log}
}

func (f *Feed) Open() (telemetry.Conn, error) {
	errFactory := errors.New()

	mem, err := f.open()
	if err != nil {
		return nil, errFactory.Wrap(telemetry.ErrConnection, err)
	}

	h, err := parseHeader(mem.Bytes())
	if err != nil || !h.connected() {
		mem.Close()
		if err == nil {
			err = fmt.Errorf("simulator not running")
		}
		return nil, errFactory.Wrap(telemetry.ErrConnection, err)
	}

	f.log.Debug().
		Int32("version", h.Version).
		Int32("tick_rate", h.TickRate).
		Int32("vars", h.NumVars).
		Msg("Opened iRacing shared memory")

	return &conn{mem: mem}, nil
}

type conn struct {
	mem     memory
	vars    map[string]variable
	varsFor header
}

func (c *conn) Next(timeout time.Duration) (telemetry.Frame, error) {
	errFactory := errors.New()

	signaled, err := c.mem.Wait(timeout)
	if err != nil {
		return nil, errFactory.Wrap(telemetry.ErrConnectionLost, err)
	}

	b := c.mem.Bytes()
	h, err := parseHeader(b)
	if err != nil {
		return nil, errFactory.Wrap(telemetry.ErrConnectionLost, err)
	}
	if !h.connected() {
		return nil, errFactory.New(telemetry.ErrConnectionLost)
	}
	if !signaled {
		return nil, errFactory.New(telemetry.ErrTimeout)
	}

	if c.vars == nil || h.NumVars != c.varsFor.NumVars || h.VarHeaderOffset != c.varsFor.VarHeaderOffset {
		vars, err := parseVars(b, h)
		if err != nil {
			return nil, errFactory.Wrap(telemetry.ErrTimeout, err)
		}
		c.vars = vars
		c.varsFor = h
	}

	for range copyAttempts {
		idx := h.latest()
		vb := h.VarBuf[idx]
		start, end := int(vb.BufOffset), int(vb.BufOffset)+int(h.BufLen)
		if start < 0 || end > len(b) {
			return nil, errFactory.WithData(telemetry.ErrTimeout, "variable buffer out of range")
		}
		data := make([]byte, h.BufLen)
		copy(data, b[start:end])

		after, err := parseHeader(b)
		if err == nil && after.VarBuf[idx].TickCount == vb.TickCount {
			return frame{vars: c.vars, data: data}, nil
		}
		if err == nil {
			h = after
		}
	}

	return nil, errFactory.WithData(telemetry.ErrTimeout, "buffer changed during copy")
}

func (c *conn) Close() error {
	return c.mem.Close()
}
