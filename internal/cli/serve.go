package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/pid"
	"codeberg.org/mutker/ryzenctl/internal/privilege"
	"codeberg.org/mutker/ryzenctl/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(rf *rootFlags) *cobra.Command {
	var (
		listen  string
		pidPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Poll ryzenadj headlessly and export metrics",
		Long: `Poll ryzenadj every refresh_interval seconds, store snapshots in the
history database when history.enabled is set, and serve Prometheus
metrics on /metrics, liveness on /healthz and the latest snapshot as JSON
on /snapshot. Only one instance runs per machine.

Examples:
  ryzenctl serve
  ryzenctl serve --listen 127.0.0.1:9465 --interval 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, rf, appOptions{logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			if listen == "" {
				listen = a.Config.Exporter.Listen
			}
			lock := pid.Default()
			if pidPath != "" {
				lock = pid.New(pidPath)
			}

			return serve(cmd.Context(), a, lock, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "exporter listen address (default: exporter.listen)")
	cmd.Flags().StringVar(&pidPath, "pid-file", "", "PID file guarding the single instance")

	return cmd
}

func serve(ctx context.Context, a *App, lock *pid.File, listen string) error {
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	if err := privilege.Check(); err != nil {
		a.Logger.Warn().Err(err).Msg("Not elevated, ryzenadj may fail")
	}

	store, err := a.HistoryStore()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close history")
		}
	}()

	exporter := telemetry.NewExporter(a.Logger)
	ctrl := a.NewController(
		controller.WithRecorder(store),
		controller.WithRecorder(exporter),
	)
	defer ctrl.Close()

	if err := exporter.RegisterHealth(ctrl); err != nil {
		return err
	}

	srv := telemetry.NewServer(listen, exporter, ctrl, ctrl, a.Logger)
	if err := srv.Start(); err != nil {
		return err
	}

	a.Logger.Info().
		Str("listen", srv.Addr()).
		Str("ra_path", a.Config.GetRyzenAdjPath()).
		Dur("interval", a.Config.GetRefreshInterval()).
		Bool("history", store.Enabled()).
		Msg("Serving")

	g, gctx := errgroup.WithContext(ctx)
	if err := a.Settings.Watch(gctx, func(cfg *config.Config) {
		a.Logger.Info().Msg("Settings changed, reloading")
		applySettings(ctrl, cfg)
	}); err != nil {
		a.Logger.Warn().Err(err).Msg("Settings will not reload on change")
	}

	g.Go(func() error {
		return ctrl.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(stopCtx)
	})

	err = ignoreCanceled(g.Wait())
	a.Logger.Info().Msg("Exiting...")

	return err
}

// ignoreCanceled treats shutdown by cancellation as a clean exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
