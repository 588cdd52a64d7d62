package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/cpu"
	"codeberg.org/mutker/ryzenctl/internal/privilege"
	"codeberg.org/mutker/ryzenctl/internal/tui"
)

func newMonitorCmd(rf *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Open the interactive dashboard",
		Long: `Open the dashboard: adjust parameters, watch the metrics table and CPU
usage, and edit settings. Logs go to log_file, or nowhere when unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd, rf)
		},
	}
}

func runMonitor(cmd *cobra.Command, rf *rootFlags) error {
	a, err := newApp(cmd, rf, appOptions{logOutput: io.Discard})
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := a.NewController()
	defer ctrl.Close()

	mon := cpu.New(cpu.DefaultHistorySize, cpu.WithLogger(a.Logger))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mon.Prime(ctx)

	model := tui.New(ctx, ctrl, mon, a.Settings, tui.Options{
		Slider:    a.Config.GetSlider(),
		Theme:     a.Config.Theme,
		Language:  a.Config.Language,
		Elevation: privilege.Check(),
		Logger:    a.Logger,
	})

	if err := a.Settings.Watch(ctx, func(cfg *config.Config) {
		applySettings(ctrl, cfg)
	}); err != nil {
		a.Logger.Warn().Err(err).Msg("Settings will not reload on change")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ctrl.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return tui.Run(gctx, model)
	})

	return ignoreCanceled(g.Wait())
}

// applySettings pushes reloaded settings into a running controller.
func applySettings(ctrl *controller.Controller, cfg *config.Config) {
	ctrl.SetExecutablePath(cfg.GetRyzenAdjPath())
	ctrl.SetInterval(cfg.GetRefreshInterval())
}
