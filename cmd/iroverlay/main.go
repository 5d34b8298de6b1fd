package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"codeberg.org/mutker/iroverlay/internal/config"
	"codeberg.org/mutker/iroverlay/internal/control"
	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/journal"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/panel"
	"codeberg.org/mutker/iroverlay/internal/pid"
	"codeberg.org/mutker/iroverlay/internal/store"
	"codeberg.org/mutker/iroverlay/internal/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	// Raw mode owns the terminal, so console logging is only on when
	// there is no panel.
	term, termErr := panel.OpenTerminal(os.Stdin)

	level, _ := logger.ParseLevel(cfg.LogLevel.String())
	logger.Init(logger.Options{
		Level:   level,
		File:    cfg.LogPath(config.ControlProcess),
		Console: termErr != nil,
		Process: config.ControlProcess,
	})
	logger.Debug().Msg("Config loaded")

	if term != nil {
		defer term.Close()
	} else {
		logger.Info().Err(termErr).Msg("No terminal, running without control panel")
	}

	pidPath := pid.DefaultPath(stateDir())
	if err := pid.Write(pidPath); err != nil {
		if errors.CodeOf(err) == errors.ErrAlreadyRunning {
			logger.Error().Err(err).Msg("Control app is already running")
		} else {
			logger.Error().Err(err).Msg("Failed to write PID file")
		}
		return 1
	}
	defer func() {
		if err := pid.Remove(pidPath); err != nil {
			logger.Debug().Err(err).Msg("Failed to remove PID file")
		}
	}()

	recordPath, err := cfg.RecordPath()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to locate overlay configuration")
		return 1
	}
	st := store.New(recordPath, logger.Default().With("store"))

	j := openJournal(cfg)
	closeOrphans(j, cfg)

	childEnv, err := cfg.ChildEnv()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve overlay settings")
		return 1
	}
	launcher := supervisor.NewExecLauncher(cfg.OverlayPaths(), cfg.Supervisor.KillGrace,
		logger.Default().With("launcher"), supervisor.WithEnv(childEnv...))
	sup := supervisor.New(launcher, supervisor.WithJournal(j))
	ctl := control.New(st.Load(), st, sup, control.WithCloser(j))
	defer func() {
		if err := ctl.Close(); err != nil {
			logger.Debug().Err(err).Msg("Failed to close journal")
		}
		logger.Info().Msg("Exiting...")
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop(ctx, cfg.Control.Interval, ctl, term)

	return 0
}

func loop(ctx context.Context, interval time.Duration, ctl *control.Controller, term *panel.Terminal) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	model := panel.NewModel()
	var keys <-chan byte
	if term != nil {
		keys = term.Keys()
	}

	var pending []control.Action
	dirty := true
	step := func() {
		report := ctl.Step(pending)
		pending = nil
		if status := statusLine(report); status != "" {
			model.SetStatus(status)
			dirty = true
		}
		if report.Changed() {
			dirty = true
		}
		if dirty && term != nil {
			if err := model.Render(term.Output(), ctl.Record(), ctl.Running()); err != nil {
				logger.Debug().Err(err).Msg("Failed to render control panel")
			}
		}
		dirty = false
	}

	step()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Received termination signal.")
			return
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			actions, quit := model.HandleKey(key)
			if quit {
				return
			}
			pending = append(pending, actions...)
			model.SetStatus("")
			dirty = true
		case <-ticker.C:
			step()
		}
	}
}

func statusLine(report supervisor.Report) string {
	if len(report.Errors) > 0 {
		return report.Errors[len(report.Errors)-1].Error()
	}
	if len(report.Exited) > 0 {
		return report.Exited[len(report.Exited)-1].Title() + " overlay was closed"
	}

	return ""
}

func openJournal(cfg *config.Config) journal.Journal {
	log := logger.Default().With("journal")

	j, err := journal.New(cfg.JournalConfig(), log)
	if err != nil {
		log.Warn().Err(err).Msg("Lifecycle journal unavailable")
		j, _ = journal.New(journal.Config{}, log)
	}

	return j
}

// closeOrphans ends sessions a crashed run left open, terminating their
// processes first when they can be identified as the overlays it started.
func closeOrphans(j journal.Journal, cfg *config.Config) {
	sessions, err := j.Open()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read open overlay sessions")
		return
	}

	reaper := supervisor.NewReaper(supervisor.OSProcessTable(), cfg.Supervisor.ReapOrphans,
		cfg.Supervisor.KillGrace, logger.Default().With("reaper"))
	reaper.Reap(sessions)

	if _, err := j.CloseStale(journal.ReasonOrphaned); err != nil {
		logger.Warn().Err(err).Msg("Failed to close stale overlay sessions")
	}
}

func stateDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "iroverlay")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ""
	}

	return dir
}
