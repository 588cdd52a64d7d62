package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/errors"
)

type setting struct {
	key string
	get func(c *config.Config) string
	set func(c *config.Config, v string) error
}

var settings = []setting{
	{
		key: "start_with_system",
		get: func(c *config.Config) string { return strconv.FormatBool(c.StartWithSystem) },
		set: func(c *config.Config, v string) (err error) {
			c.StartWithSystem, err = strconv.ParseBool(v)
			return err
		},
	},
	{
		key: "language",
		get: func(c *config.Config) string { return choiceName(config.Languages, c.Language) },
		set: func(c *config.Config, v string) (err error) {
			c.Language, err = parseChoice(config.Languages, v)
			return err
		},
	},
	{
		key: "theme",
		get: func(c *config.Config) string { return choiceName(config.Themes, c.Theme) },
		set: func(c *config.Config, v string) (err error) {
			c.Theme, err = parseChoice(config.Themes, v)
			return err
		},
	},
	{
		key: "ra_path",
		get: func(c *config.Config) string { return c.RyzenAdjPath },
		set: func(c *config.Config, v string) error {
			c.RyzenAdjPath = v
			return nil
		},
	},
	{
		key: "refresh_interval",
		get: func(c *config.Config) string { return strconv.Itoa(c.RefreshInterval) },
		set: func(c *config.Config, v string) (err error) {
			c.RefreshInterval, err = strconv.Atoi(v)
			return err
		},
	},
	{
		key: "timeout",
		get: func(c *config.Config) string { return strconv.Itoa(c.Timeout) },
		set: func(c *config.Config, v string) (err error) {
			c.Timeout, err = strconv.Atoi(v)
			return err
		},
	},
	{
		key: "log_level",
		get: func(c *config.Config) string { return c.LogLevel },
		set: func(c *config.Config, v string) error {
			c.LogLevel = strings.ToLower(v)
			return nil
		},
	},
	{
		key: "log_file",
		get: func(c *config.Config) string { return c.LogFile },
		set: func(c *config.Config, v string) error {
			c.LogFile = v
			return nil
		},
	},
	{
		key: "slider_policy",
		get: func(c *config.Config) string { return c.SliderPolicy },
		set: func(c *config.Config, v string) error {
			c.SliderPolicy = strings.ToLower(v)
			return nil
		},
	},
	{
		key: "slider_factor",
		get: func(c *config.Config) string { return strconv.FormatFloat(c.SliderFactor, 'g', -1, 64) },
		set: func(c *config.Config, v string) (err error) {
			c.SliderFactor, err = strconv.ParseFloat(v, 64)
			return err
		},
	},
	{
		key: "slider_max",
		get: func(c *config.Config) string { return strconv.Itoa(c.SliderMax) },
		set: func(c *config.Config, v string) (err error) {
			c.SliderMax, err = strconv.Atoi(v)
			return err
		},
	},
	{
		key: "history.enabled",
		get: func(c *config.Config) string { return strconv.FormatBool(c.History.Enabled) },
		set: func(c *config.Config, v string) (err error) {
			c.History.Enabled, err = strconv.ParseBool(v)
			return err
		},
	},
	{
		key: "history.db_path",
		get: func(c *config.Config) string { return c.History.DBPath },
		set: func(c *config.Config, v string) error {
			c.History.DBPath = v
			return nil
		},
	},
	{
		key: "exporter.listen",
		get: func(c *config.Config) string { return c.Exporter.Listen },
		set: func(c *config.Config, v string) error {
			c.Exporter.Listen = v
			return nil
		},
	},
}

func lookupSetting(key string) (setting, bool) {
	for _, s := range settings {
		if s.key == key {
			return s, true
		}
	}

	return setting{}, false
}

func choiceName(choices []string, i int) string {
	if i < 0 || i >= len(choices) {
		return strconv.Itoa(i)
	}

	return choices[i]
}

// parseChoice accepts either an index or a case-insensitive name.
func parseChoice(choices []string, v string) (int, error) {
	if i, err := strconv.Atoi(v); err == nil {
		return i, nil
	}
	for i, c := range choices {
		if strings.EqualFold(c, v) {
			return i, nil
		}
	}

	return 0, fmt.Errorf("expected one of %s", strings.Join(choices, ", "))
}

func newSettingsCmd(rf *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, rf, appOptions{logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			cmd.Printf("# %s\n", a.Settings.File())
			for _, s := range settings {
				cmd.Printf("%s = %s\n", s.key, s.get(a.Config))
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save it",
		Long: `Change one setting and write the settings file. Running dashboards and
'serve' instances pick the change up.

Examples:
  ryzenctl settings set ra_path /usr/local/bin/ryzenadj
  ryzenctl settings set theme Light
  ryzenctl settings set history.enabled true`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			errFactory := errors.New()

			s, ok := lookupSetting(args[0])
			if !ok {
				return errFactory.WithData(errors.ErrInvalidArgument, "unknown setting "+args[0])
			}

			a, err := newApp(cmd, rf, appOptions{logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.Settings.Get()
			if err := s.set(cfg, strings.TrimSpace(args[1])); err != nil {
				return errFactory.WithData(errors.ErrInvalidArgument, fmt.Sprintf("%s: %v", s.key, err))
			}
			if err := a.Settings.Save(cfg); err != nil {
				return err
			}

			cmd.Printf("%s = %s\n", s.key, s.get(cfg))
			return nil
		},
	})

	return cmd
}
