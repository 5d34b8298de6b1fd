package telemetry

import "codeberg.org/mutker/iroverlay/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")

	// Connection Errors
	ErrConnection     = errors.ErrorCode("telemetry_connection_failed")
	ErrConnectionLost = errors.ErrorCode("telemetry_connection_lost")

	// Sample Errors
	ErrNotPresent = errors.ErrorCode("telemetry_field_not_present")
	ErrTimeout    = errors.ErrorCode("telemetry_sample_timeout")
)

var (
	connectionErr = errors.New().New(ErrConnection)
	lostErr       = errors.New().New(ErrConnectionLost)
	notPresentErr = errors.New().New(ErrNotPresent)
	timeoutErr    = errors.New().New(ErrTimeout)
)

// IsConnectionError reports whether err means the source could not be reached.
func IsConnectionError(err error) bool {
	return errors.Is(err, connectionErr)
}

// IsConnectionLost reports whether err carries a lost connection.
func IsConnectionLost(err error) bool {
	return errors.Is(err, lostErr)
}

// IsNotPresent reports whether a sampled field was missing from the cycle.
func IsNotPresent(err error) bool {
	return errors.Is(err, notPresentErr)
}

// IsTimeout reports whether no update cycle arrived in time.
func IsTimeout(err error) bool {
	return errors.Is(err, timeoutErr)
}
