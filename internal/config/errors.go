package config

import "codeberg.org/mutker/iroverlay/internal/errors"

const (
	ErrInvalidConfig          = errors.ErrInvalidConfig
	ErrBindFlags              = errors.ErrBindFlags
	ErrReadConfig             = errors.ErrReadConfig
	ErrInvalidInterval        = errors.ErrInvalidInterval
	ErrInvalidTelemetrySource = errors.ErrInvalidTelemetrySource
	ErrInvalidLogLevel        = errors.ErrInvalidLogLevel
)
