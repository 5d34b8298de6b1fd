package store

import "codeberg.org/mutker/iroverlay/internal/errors"

const (
	ErrConfigLoad          = errors.ErrConfigLoad
	ErrConfigSave          = errors.ErrConfigSave
	ErrIncompatibleVersion = errors.ErrorCode("config_incompatible_version")
	ErrWatch               = errors.ErrorCode("config_watch_failed")
)
