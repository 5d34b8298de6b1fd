// Package host runs an overlay process: settings, logging, the shared
// record, a telemetry sampler and the window.
package host

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/iroverlay/internal/config"
	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/overlay"
	"codeberg.org/mutker/iroverlay/internal/overlay/window"
	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/telemetry"
)

// Main runs the overlay for kind and returns the process exit code.
// Overlays take no arguments; everything comes from the record and the
// settings file.
func Main(kind store.Kind, process string) int {
	cfg, err := config.Load(config.WithoutFlags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	level, _ := logger.ParseLevel(cfg.LogLevel.String())
	logger.Init(logger.Options{
		Level:   level,
		File:    cfg.LogPath(process),
		Console: !logger.IsService(),
		Process: process,
	})
	log := logger.Default().With("overlay")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, kind, cfg, log); err != nil {
		var coded errors.Error
		if errors.As(err, &coded) {
			log.ErrorWithCode(coded).Msg("Overlay failed")
		} else {
			log.Error().Err(err).Msg("Overlay failed")
		}
		return 1
	}

	log.Info().Str("kind", string(kind)).Msg("Overlay exiting")
	return 0
}

func run(ctx context.Context, kind store.Kind, cfg *config.Config, log logger.Logger) error {
	path, err := cfg.RecordPath()
	if err != nil {
		return err
	}
	st := store.New(path, log.With("store"))
	rec := st.Load()

	feed, err := overlay.NewFeed(cfg, log.With("telemetry"))
	if err != nil {
		return err
	}
	sampler := telemetry.NewSampler(telemetry.NewAdapter(feed, log.With("telemetry")), cfg.TelemetryConfig(), log.With("sampler"))
	defer sampler.Close()

	var reload <-chan store.Record
	if cfg.Overlays.LiveReload {
		reload = watch(ctx, st, log)
	}

	view := overlay.NewView(kind, rec, sampler, reload, log)
	log.Info().
		Str("kind", string(kind)).
		Str("record", path).
		Bool("live_reload", cfg.Overlays.LiveReload).
		Msg("Overlay started")

	return window.Run(ctx, view, log.With("window"))
}

// watch delivers the latest record written by the control app. Only the
// newest pending record is kept.
func watch(ctx context.Context, st *store.Store, log logger.Logger) <-chan store.Record {
	reload := make(chan store.Record, 1)

	err := st.Watch(ctx, func(rec store.Record) {
		select {
		case <-reload:
		default:
		}
		reload <- rec
	})
	if err != nil {
		log.Warn().Err(err).Msg("Live reload unavailable")
		return nil
	}

	return reload
}
