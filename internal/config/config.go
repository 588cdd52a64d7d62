package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/params"
)

const (
	AppName          = "ryzenctl"
	DefaultFileName  = AppName + ".toml"
	DefaultEnvPrefix = "RYZENCTL"

	DefaultLanguage        = 0
	DefaultTheme           = 2
	DefaultRefreshInterval = 5
	DefaultTimeout         = 10
	DefaultLogLevel        = "info"
	DefaultBatchSize       = 10
	DefaultBatchTimeout    = 30
	DefaultExporterListen  = ":9465"

	maxRefreshInterval = 3600
	maxTimeout         = 600
)

type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DBPath       string `mapstructure:"db_path"`
	BatchSize    int    `mapstructure:"batch_size"`
	BatchTimeout int    `mapstructure:"batch_timeout"`
}

type ExporterConfig struct {
	Listen string `mapstructure:"listen"`
}

type Config struct {
	StartWithSystem bool           `mapstructure:"start_with_system"`
	Language        int            `mapstructure:"language"`
	Theme           int            `mapstructure:"theme"`
	RyzenAdjPath    string         `mapstructure:"ra_path"`
	RefreshInterval int            `mapstructure:"refresh_interval"`
	Timeout         int            `mapstructure:"timeout"`
	LogLevel        string         `mapstructure:"log_level"`
	LogFile         string         `mapstructure:"log_file"`
	SliderPolicy    string         `mapstructure:"slider_policy"`
	SliderFactor    float64        `mapstructure:"slider_factor"`
	SliderMax       int            `mapstructure:"slider_max"`
	History         HistoryConfig  `mapstructure:"history"`
	Exporter        ExporterConfig `mapstructure:"exporter"`
	Debug           bool           `mapstructure:"debug"`
	Verbose         bool           `mapstructure:"verbose"`
}

// DefaultRyzenAdjPath is the executable name looked up when nothing is
// configured.
func DefaultRyzenAdjPath() string {
	if runtime.GOOS == "windows" {
		return "ryzenadj.exe"
	}
	return "ryzenadj"
}

// DefaultHistoryDBPath places the history database in the user cache dir.
func DefaultHistoryDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(dir, AppName, "history.db")
}

// DefaultConfigDir is where the settings file is created on first run.
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}

// Default returns a Config populated with default values.
func Default() *Config {
	slider := params.DefaultSliderConfig()

	return &Config{
		Language:        DefaultLanguage,
		Theme:           DefaultTheme,
		RyzenAdjPath:    DefaultRyzenAdjPath(),
		RefreshInterval: DefaultRefreshInterval,
		Timeout:         DefaultTimeout,
		LogLevel:        DefaultLogLevel,
		SliderPolicy:    string(slider.Policy),
		SliderFactor:    slider.Factor,
		SliderMax:       slider.Max,
		History: HistoryConfig{
			DBPath:       DefaultHistoryDBPath(),
			BatchSize:    DefaultBatchSize,
			BatchTimeout: DefaultBatchTimeout,
		},
		Exporter: ExporterConfig{Listen: DefaultExporterListen},
	}
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if strings.TrimSpace(c.RyzenAdjPath) == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "ra_path must not be empty")
	}
	if c.RefreshInterval < 1 || c.RefreshInterval > maxRefreshInterval {
		return errFactory.WithData(errors.ErrInvalidInterval, c.RefreshInterval)
	}
	if c.Timeout < 1 || c.Timeout > maxTimeout {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Timeout)
	}
	if !LogLevel(strings.ToLower(c.LogLevel)).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Language < 0 || c.Language >= len(Languages) {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "language index out of range")
	}
	if c.Theme < 0 || c.Theme >= len(Themes) {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "theme index out of range")
	}
	if err := c.GetSlider().Validate(); err != nil {
		return err
	}
	if c.History.Enabled {
		if c.History.DBPath == "" {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "history.db_path must not be empty")
		}
		if c.History.BatchSize < 1 || c.History.BatchTimeout < 1 {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "history batch size and timeout must be positive")
		}
	}

	return nil
}

func (c *Config) GetRyzenAdjPath() string {
	return c.RyzenAdjPath
}

func (c *Config) GetRefreshInterval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *Config) GetLogLevel() string {
	return c.LogLevel
}

func (c *Config) GetSlider() params.SliderConfig {
	return params.SliderConfig{
		Policy: params.SliderPolicy(c.SliderPolicy),
		Factor: c.SliderFactor,
		Max:    c.SliderMax,
	}
}

func (c *Config) IsHistoryEnabled() bool {
	return c.History.Enabled
}

func (c *Config) GetHistoryDBPath() string {
	return c.History.DBPath
}

func (c *Config) GetHistoryBatchTimeout() time.Duration {
	return time.Duration(c.History.BatchTimeout) * time.Second
}

// Clone returns a deep copy, so callers can edit settings without touching
// the loaded value.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
