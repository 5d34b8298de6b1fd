//go:build !linux && !windows

package proc

import (
	"time"

	"codeberg.org/mutker/iroverlay/internal/errors"
)

// StartTime is not available on this platform.
func StartTime(int) (time.Time, error) {
	return time.Time{}, errors.New().WithMessage(errors.ErrUnavailable, "process start time not supported")
}
