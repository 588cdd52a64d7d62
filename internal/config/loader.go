package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"github.com/spf13/viper"
)

// flagBindings maps command-line flag names to config keys.
var flagBindings = map[string]string{
	"ra-path":   "ra_path",
	"interval":  "refresh_interval",
	"timeout":   "timeout",
	"log-level": "log_level",
	"log-file":  "log_file",
	"debug":     "debug",
	"verbose":   "verbose",
}

// Manager owns the viper instance behind a loaded configuration.
type Manager struct {
	mu     sync.RWMutex
	v      *viper.Viper
	cfg    *Config
	file   string
	logger logger.Logger
}

// Load reads defaults, the settings file, RYZENCTL_* environment variables
// and bound flags, in increasing precedence, and validates the result.
func Load(opts ...Option) (*Manager, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix, logger: logger.Nop()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := o.configPath
	if configPath == "" {
		configPath = os.Getenv(o.envPrefix + "_CONFIG")
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(AppName)
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if o.flags != nil {
		for name, key := range flagBindings {
			if f := o.flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
				}
			}
		}
	}

	m := &Manager{v: v, logger: o.logger}

	if err := m.readFile(configPath, o.createMissing); err != nil {
		return nil, err
	}

	cfg, err := m.decode()
	if err != nil {
		return nil, err
	}
	m.cfg = cfg

	return m, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("start_with_system", d.StartWithSystem)
	v.SetDefault("language", d.Language)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("ra_path", d.RyzenAdjPath)
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("slider_policy", d.SliderPolicy)
	v.SetDefault("slider_factor", d.SliderFactor)
	v.SetDefault("slider_max", d.SliderMax)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.db_path", d.History.DBPath)
	v.SetDefault("history.batch_size", d.History.BatchSize)
	v.SetDefault("history.batch_timeout", d.History.BatchTimeout)
	v.SetDefault("exporter.listen", d.Exporter.Listen)
	v.SetDefault("debug", false)
	v.SetDefault("verbose", false)
}

func (m *Manager) readFile(explicit string, createMissing bool) error {
	errFactory := errors.New()

	err := m.v.ReadInConfig()
	if err == nil {
		m.file = m.v.ConfigFileUsed()
		m.logger.Debug().Str("file", m.file).Msg("Loaded configuration file")
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	missing := stderrors.As(err, &notFound) || (explicit != "" && stderrors.Is(err, os.ErrNotExist))
	if !missing {
		return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
	}

	target := explicit
	if target == "" {
		target = filepath.Join(DefaultConfigDir(), DefaultFileName)
	}

	if !createMissing {
		m.logger.Debug().Str("file", target).Msg("No configuration file, using defaults")
		m.file = target
		return nil
	}

	if err := writeFile(target, Default()); err != nil {
		return err
	}
	m.logger.Info().Str("file", target).Msg("Created default configuration file")

	m.v.SetConfigFile(target)
	if err := m.v.ReadInConfig(); err != nil {
		return errFactory.WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
	}
	m.file = target

	return nil
}

func (m *Manager) decode() (*Config, error) {
	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		return nil, errors.New().WithMessage(errors.ErrReadConfig, "Failed to decode config: "+err.Error())
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg.Clone()
}

// File returns the path of the settings file, whether or not it exists yet.
func (m *Manager) File() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.file
}

// Reload re-reads the settings file. It returns the new configuration and
// true when anything changed.
func (m *Manager) Reload() (*Config, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.v.ReadInConfig(); err != nil {
		return nil, false, errors.New().WithMessage(errors.ErrReadConfig, "Failed to read config file: "+err.Error())
	}

	cfg, err := m.decode()
	if err != nil {
		return nil, false, err
	}

	if reflect.DeepEqual(cfg, m.cfg) {
		return m.cfg.Clone(), false, nil
	}
	m.cfg = cfg

	return cfg.Clone(), true, nil
}

// Save validates cfg and writes it to the settings file.
func (m *Manager) Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := writeFile(m.file, cfg); err != nil {
		return err
	}

	m.v.SetConfigFile(m.file)
	if err := m.v.ReadInConfig(); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to re-read saved configuration")
	}
	m.cfg = cfg.Clone()
	m.logger.Info().Str("file", m.file).Msg("Saved configuration")

	return nil
}

// writeFile serializes the persisted keys only; flags and environment
// overrides never end up in the file.
func writeFile(path string, cfg *Config) error {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errFactory.Wrap(errors.ErrWriteConfig, err)
	}

	out := viper.New()
	out.SetConfigType("toml")
	out.Set("start_with_system", cfg.StartWithSystem)
	out.Set("language", cfg.Language)
	out.Set("theme", cfg.Theme)
	out.Set("ra_path", cfg.RyzenAdjPath)
	out.Set("refresh_interval", cfg.RefreshInterval)
	out.Set("timeout", cfg.Timeout)
	out.Set("log_level", cfg.LogLevel)
	out.Set("log_file", cfg.LogFile)
	out.Set("slider_policy", cfg.SliderPolicy)
	out.Set("slider_factor", cfg.SliderFactor)
	out.Set("slider_max", cfg.SliderMax)
	out.Set("history.enabled", cfg.History.Enabled)
	out.Set("history.db_path", cfg.History.DBPath)
	out.Set("history.batch_size", cfg.History.BatchSize)
	out.Set("history.batch_timeout", cfg.History.BatchTimeout)
	out.Set("exporter.listen", cfg.Exporter.Listen)

	if err := out.WriteConfigAs(path); err != nil {
		return errFactory.Wrap(errors.ErrWriteConfig, err)
	}

	return nil
}
