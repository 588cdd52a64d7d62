package config

import (
	"context"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/params"
	"github.com/spf13/pflag"
)

// Provider defines the interface for accessing configuration values
type Provider interface {
	// GetRyzenAdjPath returns the configured ryzenadj executable
	GetRyzenAdjPath() string

	// GetRefreshInterval returns the auto-refresh cadence
	GetRefreshInterval() time.Duration

	// GetTimeout returns the per-invocation limit for ryzenadj
	GetTimeout() time.Duration

	// GetLogLevel returns the configured logging level
	GetLogLevel() string

	// GetSlider returns the slider bound policy for the adjust page
	GetSlider() params.SliderConfig

	// IsHistoryEnabled returns whether snapshots are persisted
	IsHistoryEnabled() bool

	// GetHistoryDBPath returns the path to the history database
	GetHistoryDBPath() string
}

// Watcher enables live configuration updates
type Watcher interface {
	// Watch starts watching the config file until ctx is done. The
	// callback is called with the new configuration after every change
	// that loads and validates.
	Watch(ctx context.Context, callback func(*Config)) error
}

// Option defines a configuration option that can be passed to Load
type Option func(*options) error

// options holds internal configuration options
type options struct {
	configPath    string
	envPrefix     string
	flags         *pflag.FlagSet
	createMissing bool
	logger        logger.Logger
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configPath = path
		return nil
	}
}

// WithEnvPrefix specifies a custom environment variable prefix
// Default is "RYZENCTL"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) error {
		o.envPrefix = prefix
		return nil
	}
}

// WithFlags binds command-line flags so they override file and env values.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(o *options) error {
		o.flags = fs
		return nil
	}
}

// WithCreateMissing writes a file with default values when none exists.
func WithCreateMissing() Option {
	return func(o *options) error {
		o.createMissing = true
		return nil
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

// LogLevel represents valid logging levels
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warning"
	LogLevelError   LogLevel = "error"
)

// IsValid returns whether the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
		return true
	default:
		return false
	}
}

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}

// Languages and Themes list the choices offered on the settings page, in
// index order.
var (
	Languages = []string{"English", "中文"}
	Themes    = []string{"Dark", "Light", "System Default"}
)
