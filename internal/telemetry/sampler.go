package telemetry

import (
	"time"

	"codeberg.org/mutker/iroverlay/internal/logger"
)

type field struct {
	name string
	set  func(*Snapshot, float64)
}

var trackedFields = []field{
	{FieldSpeed, func(s *Snapshot, v float64) { s.Speed = v }},
	{FieldLastLapTime, func(s *Snapshot, v float64) { s.LastLapTime = v }},
}

// Sampler polls an Adapter from the host's update loop. Tick and Snapshot
// must be called from the same goroutine.
type Sampler struct {
	adapter *Adapter
	cfg     Config
	log     logger.Logger

	state    State
	handle   *Handle
	snapshot Snapshot

	lastAttempt time.Time
	attempted   bool

	connectFailures int
	backoff         time.Duration
	retryAt         time.Time
}

func NewSampler(adapter *Adapter, cfg Config, log logger.Logger) *Sampler {
	return &Sampler{
		adapter: adapter,
		cfg:     cfg,
		log:     log,
	}
}

// Tick runs one sampling step if at least PollInterval has passed since the
// previous attempt; earlier calls do nothing.
func (s *Sampler) Tick(now time.Time) {
	if s.attempted && now.Sub(s.lastAttempt) < s.cfg.PollInterval {
		return
	}

	switch s.state {
	case Disconnected:
		if s.cfg.ReconnectBackoff && now.Before(s.retryAt) {
			return
		}
		s.markAttempt(now)
		s.connect(now)
	case Connected:
		s.markAttempt(now)
		s.sample(now)
	}
}

// Snapshot returns the last known values.
func (s *Sampler) Snapshot() Snapshot {
	return s.snapshot
}

func (s *Sampler) State() State {
	return s.state
}

// Close releases the connection, if any.
func (s *Sampler) Close() error {
	err := s.adapter.Close(s.handle)
	s.handle = nil
	s.state = Disconnected
	s.snapshot.Connected = false

	return err
}

func (s *Sampler) markAttempt(now time.Time) {
	s.attempted = true
	s.lastAttempt = now
}

func (s *Sampler) connect(now time.Time) {
	handle, err := s.adapter.Connect()
	if err != nil {
		s.connectFailures++
		if s.connectFailures == 1 {
			s.log.Debug().Err(err).Msg("Telemetry feed unavailable, retrying")
		}
		if s.cfg.ReconnectBackoff {
			s.backoff = min(max(2*s.backoff, s.cfg.PollInterval), s.cfg.MaxBackoff)
			s.retryAt = now.Add(s.backoff)
		}
		return
	}

	s.log.Info().Int("failed_attempts", s.connectFailures).Msg("Connected to telemetry feed")
	s.handle = handle
	s.state = Connected
	s.snapshot.Connected = true
	s.connectFailures = 0
	s.backoff = 0
	s.retryAt = time.Time{}
}

func (s *Sampler) sample(now time.Time) {
	frame, err := s.adapter.Sample(s.handle, s.cfg.SampleTimeout)
	if err != nil {
		if IsConnectionLost(err) {
			s.disconnect()
		}
		return
	}

	updated := false
	for _, f := range trackedFields {
		if v, ok := frame.Float(f.name); ok {
			f.set(&s.snapshot, v)
			updated = true
		}
	}
	if updated {
		s.snapshot.UpdatedAt = now
	}
}

func (s *Sampler) disconnect() {
	if err := s.adapter.Close(s.handle); err != nil {
		s.log.Debug().Err(err).Msg("Failed to close telemetry handle")
	}
	s.handle = nil
	s.state = Disconnected
	s.snapshot.Connected = false
}
