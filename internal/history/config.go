package history

import (
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
)

const (
	// File system permissions and paths
	defaultDirPerm      = 0o755
	defaultBatchSize    = 10
	defaultBatchTimeout = 30 * time.Second
)

type Config struct {
	Enabled         bool
	DBPath          string
	BatchSize       int
	BatchTimeout    time.Duration
	BackupOnMigrate bool
}

func DefaultConfig() Config {
	return Config{
		Enabled:         false, // Disabled by default
		BatchSize:       defaultBatchSize,
		BatchTimeout:    defaultBatchTimeout,
		BackupOnMigrate: true,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate storage settings if history is enabled
	if !c.Enabled {
		return nil
	}
	if c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.BatchSize < 1 {
		return errFactory.WithMessage(ErrInvalidConfig, "history batch size must be positive")
	}
	if c.BatchTimeout <= 0 {
		return errFactory.WithMessage(ErrInvalidConfig, "history batch timeout must be positive")
	}

	return nil
}
