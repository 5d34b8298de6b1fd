package supervisor

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"codeberg.org/mutker/iroverlay/internal/proc"
	"codeberg.org/mutker/iroverlay/internal/store"
)

// ExecLauncher starts overlay executables without arguments; each overlay
// loads the shared record itself.
type ExecLauncher struct {
	paths map[store.Kind]string
	grace time.Duration
	env   []string
	log   logger.Logger
}

type LauncherOption func(*ExecLauncher)

// WithEnv adds env to the environment every overlay inherits. Later
// entries win over the control app's own environment.
func WithEnv(env ...string) LauncherOption {
	return func(l *ExecLauncher) {
		l.env = append(l.env, env...)
	}
}

// NewExecLauncher returns a launcher for the executables in paths. When
// grace is positive, an overlay still alive grace after termination was
// requested is killed.
func NewExecLauncher(paths map[store.Kind]string, grace time.Duration, log logger.Logger, opts ...LauncherOption) *ExecLauncher {
	l := &ExecLauncher{paths: paths, grace: grace, log: log}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *ExecLauncher) Launch(kind store.Kind) (Process, error) {
	errFactory := errors.New()

	path, ok := l.paths[kind]
	if !ok || path == "" {
		return nil, errFactory.WithData(ErrUnknownKind, kind)
	}

	// A relative path would be resolved against Dir, not the working
	// directory the setting was written for.
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, errFactory.Wrap(ErrLaunch, err)
	}

	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}
	if err := cmd.Start(); err != nil {
		return nil, errFactory.Wrap(ErrLaunch, err)
	}

	p := &execProcess{
		cmd:   cmd,
		done:  make(chan struct{}),
		grace: l.grace,
		log:   l.log,
	}
	go p.wait()

	return p, nil
}

type execProcess struct {
	cmd   *exec.Cmd
	done  chan struct{}
	grace time.Duration
	log   logger.Logger
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Done() <-chan struct{} {
	return p.done
}

func (p *execProcess) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := proc.Terminate(p.cmd.Process); err != nil {
		return errors.New().Wrap(ErrTermination, err)
	}

	if p.grace > 0 {
		go p.escalate()
	}

	return nil
}

func (p *execProcess) wait() {
	err := p.cmd.Wait()
	p.log.Debug().Err(err).Int("pid", p.cmd.Process.Pid).Msg("Overlay process reaped")
	close(p.done)
}

func (p *execProcess) escalate() {
	timer := time.NewTimer(p.grace)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		p.log.Warn().Int("pid", p.cmd.Process.Pid).Msg("Overlay ignored termination, killing")
		if err := p.cmd.Process.Kill(); err != nil {
			p.log.Debug().Err(err).Msg("Failed to kill overlay")
		}
	}
}
