package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/params"
	"codeberg.org/mutker/ryzenctl/internal/privilege"
	"codeberg.org/mutker/ryzenctl/internal/ryzenadj"
)

func newApplyCmd(rf *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply [key=value ...]",
		Short: "Pass parameter values to ryzenadj",
		Long: `Apply power, current, clock and temperature limits in a single ryzenadj
run. Known parameters are flags; any key=value argument is passed through
as --key=value. Run 'ryzenctl params' for the catalog.

Examples:
  ryzenctl apply --stapm=45000 --fast=50000
  ryzenctl apply stapm=45000 tctl-temp=90
  ryzenctl apply --stapm=45000 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := collectEdits(cmd.Flags(), args)
			if err != nil {
				return err
			}

			a, err := newApp(cmd, rf, appOptions{logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.NewController(controller.WithoutApplyPoll())
			defer ctrl.Close()

			for _, e := range edits {
				if !params.Known(e.Key) {
					a.Logger.Warn().Str("key", e.Key).Msg("Passing unknown parameter through")
				}
				ctrl.SetEdit(e.Key, e.Value)
			}

			flags := ctrl.Flags()
			if dryRun {
				cmd.Println(strings.Join(append([]string{ctrl.ExecutablePath()}, ryzenadj.Args(flags)...), " "))
				return nil
			}

			if err := privilege.Check(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}

			if err := ctrl.Apply(cmd.Context()); err != nil {
				if errors.HasCode(err, controller.ErrNothingToApply) {
					return errors.New().WithMessage(errors.ErrInvalidArgument,
						"no parameters given; see 'ryzenctl params'")
				}
				return err
			}

			cmd.Printf("Applied %d parameter(s)\n", len(flags))
			return nil
		},
	}

	for _, key := range params.Keys() {
		p, _ := params.Lookup(key)
		cmd.Flags().String(key, "", p.Description)
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the ryzenadj command line without running it")

	return cmd
}

// collectEdits gathers parameter values from changed catalog flags, then
// from key=value arguments. A later value for the same key wins.
func collectEdits(fs *pflag.FlagSet, args []string) ([]ryzenadj.Flag, error) {
	var edits []ryzenadj.Flag

	for _, key := range params.Keys() {
		f := fs.Lookup(key)
		if f == nil || !f.Changed {
			continue
		}
		edits = append(edits, ryzenadj.Flag{Key: key, Value: strings.TrimSpace(f.Value.String())})
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.New().WithData(errors.ErrInvalidArgument, "expected key=value, got "+arg)
		}
		edits = append(edits, ryzenadj.Flag{Key: key, Value: strings.TrimSpace(value)})
	}

	return edits, nil
}
