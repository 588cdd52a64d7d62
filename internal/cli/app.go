package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/history"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/ryzenadj"
)

// App holds the dependencies of one command invocation.
type App struct {
	Settings *config.Manager
	Config   *config.Config
	Runner   ryzenadj.Runner
	Logger   logger.Logger

	logFile *os.File
}

type appOptions struct {
	// logOutput replaces stderr as the log destination when no log file
	// is configured.
	logOutput io.Writer
}

// newApp loads settings and initializes logging.
func newApp(cmd *cobra.Command, rf *rootFlags, opts appOptions) (*App, error) {
	mgr, err := config.Load(
		config.WithConfigFile(rf.configFile),
		config.WithFlags(cmd.Flags()),
		config.WithCreateMissing(),
	)
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	a := &App{Settings: mgr, Config: cfg}

	out := opts.logOutput
	if cfg.LogFile != "" {
		f, err := openLogFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.logFile = f
		out = f
	}

	logger.Init(logger.Options{
		Debug:     cfg.Debug,
		Verbose:   cfg.Verbose,
		Level:     cfg.LogLevel,
		IsService: logger.IsService(),
		Output:    out,
	})
	a.Logger = logger.Default()
	a.Logger.Debug().Str("file", mgr.File()).Msg("Config loaded")

	a.Runner = ryzenadj.New(cfg.GetTimeout(), a.Logger)

	return a, nil
}

func openLogFile(path string) (*os.File, error) {
	errFactory := errors.New()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInitFailed, err)
	}

	return f, nil
}

// NewController builds the polling controller from the loaded settings.
func (a *App) NewController(opts ...controller.Option) *controller.Controller {
	opts = append([]controller.Option{controller.WithLogger(a.Logger)}, opts...)

	return controller.New(a.Runner, controller.Config{
		ExecutablePath: a.Config.GetRyzenAdjPath(),
		Interval:       a.Config.GetRefreshInterval(),
	}, opts...)
}

// HistoryStore opens the history database, or a no-op store when history
// is disabled.
func (a *App) HistoryStore() (history.Store, error) {
	return history.NewService(historyConfig(a.Config), a.Logger)
}

func historyConfig(cfg *config.Config) history.Config {
	hc := history.DefaultConfig()
	hc.Enabled = cfg.History.Enabled
	hc.DBPath = cfg.History.DBPath
	hc.BatchSize = cfg.History.BatchSize
	hc.BatchTimeout = cfg.GetHistoryBatchTimeout()

	return hc
}

func (a *App) Close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
