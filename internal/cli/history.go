package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/history"
)

const defaultHistoryLimit = 10

func newHistoryCmd(rf *rootFlags) *cobra.Command {
	var (
		limit  int
		metric string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored snapshots",
		Long: `Show snapshots recorded by 'serve' when history.enabled is set.

Examples:
  ryzenctl history
  ryzenctl history --limit 50 --metric stapm-value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return errors.New().WithData(errors.ErrInvalidArgument, "limit must be positive")
			}

			a, err := newApp(cmd, rf, appOptions{logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			store, err := a.HistoryStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if metric != "" {
				points, err := store.Series(cmd.Context(), metric, limit)
				if err != nil {
					return err
				}
				cmd.Println(renderSeries(points))
				return nil
			}

			polls, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(polls) == 0 {
				cmd.Println("No snapshots recorded")
				return nil
			}
			for _, p := range polls {
				cmd.Printf("%s  %s  %d metrics\n", p.CapturedAt.Format("2006-01-02 15:04:05"), p.ID, len(p.Records))
				cmd.Println(renderRecords(p.Records))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of snapshots or points")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "show the series of one metric")

	return cmd
}

func renderSeries(points []history.Point) string {
	if len(points) == 0 {
		return "No readings recorded"
	}

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		value := "NaN"
		if !math.IsNaN(p.Value) {
			value = strconv.FormatFloat(p.Value, 'f', 2, 64)
			if p.Unit != "" {
				value = fmt.Sprintf("%s %s", value, p.Unit)
			}
		}
		rows = append(rows, []string{p.CapturedAt.Format("2006-01-02 15:04:05"), p.PollID, value})
	}

	return ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers("Captured", "Poll", "Value").
		Rows(rows...).
		String()
}
