package journal

import (
	"os"
	"path/filepath"

	"codeberg.org/mutker/iroverlay/internal/errors"
)

const (
	defaultDirPerm = 0o755
	defaultDBName  = "journal.db"
)

type Config struct {
	DBPath          string
	BackupOnMigrate bool
	Enabled         bool
}

// DefaultConfig places the journal in the user cache directory.
func DefaultConfig() Config {
	return Config{
		DBPath:          DefaultPath(),
		BackupOnMigrate: true,
		Enabled:         true,
	}
}

func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "iroverlay", defaultDBName)
}

func (c Config) Validate() error {
	// Only validate DBPath if the journal is enabled
	if c.Enabled && c.DBPath == "" {
		return errors.New().New(ErrInvalidDBPath)
	}
	return nil
}

func (c Config) backupDir() string {
	return filepath.Join(filepath.Dir(c.DBPath), "backups")
}
