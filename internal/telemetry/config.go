package telemetry

import (
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
)

const (
	// The sim's physics update rate is 60 Hz.
	defaultPollInterval  = 16 * time.Millisecond
	defaultSampleTimeout = 16 * time.Millisecond
	defaultMaxBackoff    = time.Second
)

type Config struct {
	// PollInterval is the minimum time between two sample attempts.
	PollInterval time.Duration
	// SampleTimeout bounds how long one sample waits for an update cycle.
	SampleTimeout time.Duration
	// ReconnectBackoff spaces out reconnect attempts while disconnected,
	// doubling from PollInterval up to MaxBackoff.
	ReconnectBackoff bool
	MaxBackoff       time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval:  defaultPollInterval,
		SampleTimeout: defaultSampleTimeout,
		MaxBackoff:    defaultMaxBackoff,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()
	if c.PollInterval <= 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value time.Duration
		}{"poll_interval", c.PollInterval})
	}
	if c.SampleTimeout <= 0 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value time.Duration
		}{"sample_timeout", c.SampleTimeout})
	}
	if c.ReconnectBackoff && c.MaxBackoff < c.PollInterval {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value time.Duration
		}{"max_backoff", c.MaxBackoff})
	}

	return nil
}
