package telemetry

import (
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
)

// Adapter wraps a Feed with the sampling contract used by overlays: missing
// fields and timeouts are recoverable, and a lost connection is re-opened
// silently on the next sample.
type Adapter struct {
	feed Feed
	log  logger.Logger
}

// Handle is a connection obtained from Connect. A handle whose connection
// was lost reconnects in place on its next sample.
type Handle struct {
	conn Conn
}

func NewAdapter(feed Feed, log logger.Logger) *Adapter {
	return &Adapter{feed: feed, log: log}
}

// Connect opens the feed.
func (a *Adapter) Connect() (*Handle, error) {
	conn, err := a.feed.Open()
	if err != nil {
		return nil, errors.New().Wrap(ErrConnection, err)
	}

	return &Handle{conn: conn}, nil
}

// Sample waits up to timeout for one update cycle. A lost connection is
// reported as a timeout flagged with ErrConnectionLost; until the source
// is reachable again every call returns such a timeout.
func (a *Adapter) Sample(h *Handle, timeout time.Duration) (Frame, error) {
	errFactory := errors.New()

	if h.conn == nil {
		conn, err := a.feed.Open()
		if err != nil {
			return nil, errFactory.Wrap(ErrTimeout, errFactory.Wrap(ErrConnectionLost, err))
		}
		a.log.Info().Msg("Telemetry feed reconnected")
		h.conn = conn
	}

	frame, err := h.conn.Next(timeout)
	switch {
	case err == nil:
		return frame, nil
	case IsConnectionLost(err):
		a.drop(h)
		return nil, errFactory.Wrap(ErrTimeout, err)
	case IsTimeout(err):
		return nil, err
	default:
		// Unclassified feed errors are transient as far as callers care.
		return nil, errFactory.Wrap(ErrTimeout, err)
	}
}

// SampleField waits for one update cycle and returns the named field.
func (a *Adapter) SampleField(h *Handle, name string, timeout time.Duration) (float64, error) {
	frame, err := a.Sample(h, timeout)
	if err != nil {
		return 0, err
	}

	v, ok := frame.Float(name)
	if !ok {
		return 0, errors.New().WithData(ErrNotPresent, name)
	}

	return v, nil
}

// Close releases the handle's connection.
func (a *Adapter) Close(h *Handle) error {
	if h == nil || h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil

	return err
}

func (a *Adapter) drop(h *Handle) {
	if err := h.conn.Close(); err != nil {
		a.log.Debug().Err(err).Msg("Failed to close lost telemetry connection")
	}
	h.conn = nil
	a.log.Info().Msg("Telemetry feed connection lost")
}
