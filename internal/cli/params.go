package cli

import (
	"github.com/spf13/cobra"

	"codeberg.org/mutker/ryzenctl/internal/params"
)

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "List the ryzenadj parameters ryzenctl can set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return params.Format(cmd.OutOrStdout())
		},
	}
}
