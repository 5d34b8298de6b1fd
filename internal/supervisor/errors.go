package supervisor

import "codeberg.org/mutker/iroverlay/internal/errors"

const (
	ErrLaunch      = errors.ErrLaunch
	ErrTermination = errors.ErrTermination
	ErrUnknownKind = errors.ErrorCode("overlay_unknown_kind")
)

// LaunchError describes an overlay that could not be started.
type LaunchError struct {
	Kind string
	Err  error
}

func (e *LaunchError) Error() string {
	return "launch " + e.Kind + ": " + e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
