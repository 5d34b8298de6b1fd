// Package store persists the overlay configuration record shared by the
// control app and every overlay process.
package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/mutker/iroverlay/internal/errors"
	"codeberg.org/mutker/iroverlay/internal/logger"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	fileName        = "overlays.toml"
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// Store reads and writes one record file. Only the control process saves;
// overlay processes load once at startup.
type Store struct {
	path string
	log  logger.Logger
}

func New(path string, log logger.Logger) *Store {
	return &Store{path: path, log: log}
}

// DefaultPath returns the per-user location of the record for org and app.
func DefaultPath(org, app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.New().Wrap(ErrConfigLoad, err)
	}

	return filepath.Join(dir, org, app, fileName), nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted record, or Default when the file is missing,
// unreadable or written by an incompatible schema. It never fails.
func (s *Store) Load() Record {
	rec, err := Read(s.path)
	if err == nil {
		s.log.Debug().Str("path", s.path).Msg("Overlay configuration loaded")
		return rec
	}

	if errors.Is(err, fs.ErrNotExist) {
		s.log.Info().Str("path", s.path).Msg("No saved overlay configuration, using defaults")
	} else {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Overlay configuration unusable, using defaults")
	}

	return Default()
}

// Read decodes the record at path. Keys missing from an otherwise valid
// file take their default values.
func Read(path string) (Record, error) {
	errFactory := errors.New()

	if _, err := os.Stat(path); err != nil {
		return Record{}, errFactory.Wrap(ErrConfigLoad, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	for key, value := range flatten("", Default().toMap()) {
		if key != "version" {
			v.SetDefault(key, value)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return Record{}, errFactory.Wrap(ErrConfigLoad, err)
	}

	if version := v.GetInt("version"); version != Version {
		return Record{}, errFactory.WithData(ErrIncompatibleVersion, struct {
			Found    int
			Expected int
		}{
			Found:    version,
			Expected: Version,
		})
	}

	var rec Record
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&rec, hook); err != nil {
		return Record{}, errFactory.Wrap(ErrConfigLoad, err)
	}
	rec.normalize()

	return rec, nil
}

// Save atomically replaces the record file with rec. Readers observe either
// the previous or the new complete file.
func (s *Store) Save(rec Record) error {
	errFactory := errors.New()

	rec.Version = Version
	data, err := toml.Marshal(rec.toMap())
	if err != nil {
		return errFactory.Wrap(ErrConfigSave, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return errFactory.Wrap(ErrConfigSave, err)
	}

	tmp, err := os.CreateTemp(dir, ".overlays-*.tmp")
	if err != nil {
		return errFactory.Wrap(ErrConfigSave, err)
	}

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return errFactory.Wrap(ErrConfigSave, err)
	}
	if err := tmp.Sync(); err != nil {
		return errFactory.Wrap(ErrConfigSave, err)
	}
	if err := tmp.Chmod(defaultFilePerm); err != nil {
		s.log.Debug().Err(err).Msg("Failed to set overlay configuration permissions")
	}
	if err := tmp.Close(); err != nil {
		return errFactory.Wrap(ErrConfigSave, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errFactory.Wrap(ErrConfigSave, err)
	}
	committed = true

	s.log.Debug().Str("path", s.path).Msg("Overlay configuration saved")

	return nil
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range m {
		full := key
		if prefix != "" {
			full = strings.Join([]string{prefix, key}, ".")
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flatten(full, nested) {
				out[k] = v
			}
			continue
		}
		out[full] = value
	}

	return out
}
