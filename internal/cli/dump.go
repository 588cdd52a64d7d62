package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/table"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// snapshotDoc is the serialized form of a snapshot.
type snapshotDoc struct {
	ID         string         `json:"id" yaml:"id"`
	CapturedAt time.Time      `json:"captured_at" yaml:"captured_at"`
	Records    []table.Record `json:"records" yaml:"records"`
}

func newDumpCmd(rf *rootFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Read the metrics table once and print it",
		Long: `Run 'ryzenadj --dump-table' once and print the parsed metrics.

Examples:
  ryzenctl dump
  ryzenctl dump -o json
  ryzenctl dump -o yaml --ra-path /usr/local/bin/ryzenadj`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}

			a, err := newApp(cmd, rf, appOptions{logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl := a.NewController()
			defer ctrl.Close()

			if err := ctrl.PollNow(cmd.Context()); err != nil {
				return err
			}

			return writeSnapshot(cmd.OutOrStdout(), ctrl.Snapshot(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "output format: table, json or yaml")

	return cmd
}

func validateFormat(f string) error {
	switch f {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return errors.New().WithData(errors.ErrInvalidArgument, "unknown output format "+f)
	}
}

func writeSnapshot(w io.Writer, snap *table.Snapshot, format string) error {
	doc := snapshotDoc{
		ID:         snap.ID(),
		CapturedAt: snap.CapturedAt(),
		Records:    snap.Records(),
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, renderRecords(doc.Records))
		return err
	}
}

// renderRecords lays records out as the monitor page table.
func renderRecords(records []table.Record) string {
	if len(records) == 0 {
		return "No metrics"
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, formatValue(r), r.Offset, r.RawHex})
	}

	return ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers("Parameter", "Value", "Offset", "Hex Data").
		Rows(rows...).
		String()
}

func formatValue(r table.Record) string {
	if !r.Valid() {
		return "NaN"
	}

	return strings.TrimSpace(fmt.Sprintf("%.2f %s", r.Value, r.Unit))
}
