package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/params"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
start_with_system = true
language = 1
theme = 0
ra_path = "/opt/ryzenadj/ryzenadj"
refresh_interval = 3
timeout = 15
log_level = "debug"
slider_policy = "fixed"
slider_max = 5000

[history]
enabled = true
db_path = "/tmp/ryzenctl-history.db"
batch_size = 20

[exporter]
listen = "127.0.0.1:9999"
`)

	m, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)

	cfg := m.Get()
	assert.True(t, cfg.StartWithSystem)
	assert.Equal(t, 1, cfg.Language)
	assert.Equal(t, 0, cfg.Theme)
	assert.Equal(t, "/opt/ryzenadj/ryzenadj", cfg.GetRyzenAdjPath())
	assert.Equal(t, 3*time.Second, cfg.GetRefreshInterval())
	assert.Equal(t, 15*time.Second, cfg.GetTimeout())
	assert.Equal(t, "debug", cfg.GetLogLevel())
	assert.Equal(t, params.SliderConfig{Policy: params.PolicyFixed, Factor: params.DefaultFactor, Max: 5000}, cfg.GetSlider())
	assert.True(t, cfg.IsHistoryEnabled())
	assert.Equal(t, "/tmp/ryzenctl-history.db", cfg.GetHistoryDBPath())
	assert.Equal(t, 20, cfg.History.BatchSize)
	assert.Equal(t, config.DefaultBatchTimeout, cfg.History.BatchTimeout)
	assert.Equal(t, "127.0.0.1:9999", cfg.Exporter.Listen)
	assert.Equal(t, path, m.File())
}

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.DefaultFileName)
	t.Setenv("RYZENCTL_CONFIG", path)

	m, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.Default(), m.Get())
	assert.Equal(t, path, m.File())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "defaults must not be written without WithCreateMissing")
}

func TestLoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", config.DefaultFileName)

	m, err := config.Load(config.WithConfigFile(path), config.WithCreateMissing())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), m.Get())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ra_path")
	assert.Contains(t, string(data), "refresh_interval")
	assert.NotContains(t, string(data), "debug")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	path := writeConfig(t, "This is not a valid TOML file\n")

	_, err := config.Load(config.WithConfigFile(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
	assert.True(t, errors.HasCode(err, errors.ErrReadConfig))
}

func TestInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level = "invalid"`)

	_, err := config.Load(config.WithConfigFile(path))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidLogLevel))
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "refresh_interval = 3\n")
	t.Setenv("RYZENCTL_REFRESH_INTERVAL", "7")
	t.Setenv("RYZENCTL_HISTORY_ENABLED", "true")

	m, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, 7, m.Get().RefreshInterval)
	assert.True(t, m.Get().History.Enabled)
}

func TestFlagsOverrideEnv(t *testing.T) {
	path := writeConfig(t, "refresh_interval = 3\n")
	t.Setenv("RYZENCTL_REFRESH_INTERVAL", "7")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("interval", config.DefaultRefreshInterval, "")
	fs.String("log-level", config.DefaultLogLevel, "")
	fs.String("ra-path", "", "")
	require.NoError(t, fs.Parse([]string{"--interval", "9", "--log-level", "ERROR"}))

	m, err := config.Load(config.WithConfigFile(path), config.WithFlags(fs))
	require.NoError(t, err)

	cfg := m.Get()
	assert.Equal(t, 9, cfg.RefreshInterval)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, config.DefaultRyzenAdjPath(), cfg.RyzenAdjPath, "unchanged flags must not override")
}

func TestSave(t *testing.T) {
	path := writeConfig(t, "theme = 1\n")

	m, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)

	cfg := m.Get()
	cfg.RefreshInterval = 12
	cfg.RyzenAdjPath = "/usr/local/bin/ryzenadj"
	cfg.StartWithSystem = true
	require.NoError(t, m.Save(cfg))
	assert.Equal(t, 12, m.Get().RefreshInterval)

	reloaded, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded.Get())
	assert.Equal(t, 1, reloaded.Get().Theme)
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "")

	m, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)

	cfg := m.Get()
	cfg.RefreshInterval = 0

	err = m.Save(cfg)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
	assert.Equal(t, config.DefaultRefreshInterval, m.Get().RefreshInterval)
}

func TestGetReturnsCopy(t *testing.T) {
	m, err := config.Load(config.WithConfigFile(writeConfig(t, "")))
	require.NoError(t, err)

	cfg := m.Get()
	cfg.Theme = 0
	assert.Equal(t, config.DefaultTheme, m.Get().Theme)
}

func TestReload(t *testing.T) {
	path := writeConfig(t, "refresh_interval = 3\n")

	m, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)

	_, changed, err := m.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("refresh_interval = 8\n"), 0o600))
	cfg, changed, err := m.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 8, cfg.RefreshInterval)

	require.NoError(t, os.WriteFile(path, []byte("refresh_interval = -1\n"), 0o600))
	_, _, err = m.Reload()
	require.Error(t, err)
	assert.Equal(t, 8, m.Get().RefreshInterval)
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, "refresh_interval = 3\n")

	m, err := config.Load(config.WithConfigFile(path))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *config.Config, 4)
	require.NoError(t, m.Watch(ctx, func(cfg *config.Config) { changes <- cfg }))

	require.NoError(t, os.WriteFile(path, []byte("refresh_interval = 11\n"), 0o600))

	// A truncating write can surface an intermediate empty file first.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			if cfg.RefreshInterval == 11 {
				return
			}
		case <-timeout:
			t.Fatal("no reload after config change")
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		code   errors.ErrorCode
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"empty path", func(c *config.Config) { c.RyzenAdjPath = " " }, errors.ErrInvalidConfig},
		{"zero interval", func(c *config.Config) { c.RefreshInterval = 0 }, errors.ErrInvalidInterval},
		{"huge interval", func(c *config.Config) { c.RefreshInterval = 100000 }, errors.ErrInvalidInterval},
		{"zero timeout", func(c *config.Config) { c.Timeout = 0 }, errors.ErrInvalidInterval},
		{"bad level", func(c *config.Config) { c.LogLevel = "loud" }, errors.ErrInvalidLogLevel},
		{"bad language", func(c *config.Config) { c.Language = 2 }, errors.ErrInvalidConfig},
		{"bad theme", func(c *config.Config) { c.Theme = -1 }, errors.ErrInvalidConfig},
		{"bad policy", func(c *config.Config) { c.SliderPolicy = "wild" }, errors.ErrInvalidConfig},
		{"history without path", func(c *config.Config) {
			c.History.Enabled = true
			c.History.DBPath = ""
		}, errors.ErrInvalidConfig},
		{"history disabled ignores path", func(c *config.Config) { c.History.DBPath = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}
