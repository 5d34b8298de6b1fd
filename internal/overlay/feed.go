package overlay

import (
	"codeberg.org/mutker/iroverlay/internal/config"
	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
	"codeberg.org/mutker/iroverlay/internal/telemetry/irsdk"
	"codeberg.org/mutker/iroverlay/internal/telemetry/replay"
)

// NewFeed returns the telemetry feed selected by cfg.
func NewFeed(cfg *config.Config, log logger.Logger) (telemetry.Feed, error) {
	errFactory := errors.New()

	switch cfg.Telemetry.Source {
	case config.SourceIRSDK:
		return irsdk.New(log), nil
	case config.SourceReplay:
		script, err := replay.Load(cfg.Telemetry.ReplayFile)
		if err != nil {
			return nil, errFactory.Wrap(config.ErrInvalidTelemetrySource, err)
		}
		log.Info().
			Str("file", cfg.Telemetry.ReplayFile).
			Int("frames", len(script.Frames)).
			Msg("Using telemetry replay")
		return replay.New(script), nil
	default:
		return nil, errFactory.WithData(config.ErrInvalidTelemetrySource, cfg.Telemetry.Source)
	}
}
