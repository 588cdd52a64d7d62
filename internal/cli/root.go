// Package cli wires ryzenctl's commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"codeberg.org/mutker/ryzenctl/internal/privilege"
	"codeberg.org/mutker/ryzenctl/internal/ryzenadj"
)

// rootFlags are the persistent flags shared by every command. Those that
// map to settings keys are bound into viper by config.Load.
type rootFlags struct {
	configFile string
	raPath     string
	interval   int
	timeout    int
	logLevel   string
	logFile    string
	debug      bool
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rf := &rootFlags{}

	root := &cobra.Command{
		Use:   "ryzenctl",
		Short: "Read and tune AMD Ryzen mobile power limits through ryzenadj",
		Long: `ryzenctl runs ryzenadj to read the SMU metrics table and to apply power,
current, clock and temperature limits.

Run without arguments, or with 'monitor', to open the dashboard. Use
'dump' and 'apply' for scripting and 'serve' for a headless exporter.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonitor(cmd, rf)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rf.configFile, "config", "", "settings file (default: <user config dir>/ryzenctl/ryzenctl.toml)")
	pf.StringVar(&rf.raPath, "ra-path", "", "path to the ryzenadj executable")
	pf.IntVar(&rf.interval, "interval", 0, "auto-refresh interval in seconds")
	pf.IntVar(&rf.timeout, "timeout", 0, "ryzenadj invocation timeout in seconds")
	pf.StringVar(&rf.logLevel, "log-level", "", "log level (debug, info, warning, error)")
	pf.StringVar(&rf.logFile, "log-file", "", "write logs to this file")
	pf.BoolVar(&rf.debug, "debug", false, "enable debug logging")
	pf.BoolVar(&rf.verbose, "verbose", false, "enable verbose logging")

	root.AddCommand(
		newParamsCmd(),
		newDumpCmd(rf),
		newApplyCmd(rf),
		newMonitorCmd(rf),
		newServeCmd(rf),
		newSettingsCmd(rf),
		newHistoryCmd(rf),
		newVersionCmd(),
	)

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if ryzenadj.NeedsElevation(err) {
			fmt.Fprintf(stderr, "Hint: %s\n", privilege.Hint())
		}
		return 1
	}

	return 0
}
