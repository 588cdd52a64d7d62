package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	tbl "codeberg.org/mutker/ryzenctl/internal/table"
)

const (
	sparkWidth      = 100
	minTableHeight  = 5
	monitorOverhead = 14
)

type monitorPage struct {
	table table.Model
}

func newMonitorPage(s Styles) monitorPage {
	cols := []table.Column{
		{Title: "Parameter", Width: 16},
		{Title: "Value", Width: 14},
		{Title: "Offset", Width: 8},
		{Title: "Hex Data", Width: 12},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(minTableHeight*3),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.Palette.Border).
		BorderBottom(true).
		Bold(true).
		Foreground(s.Palette.Text)
	ts.Cell = ts.Cell.Foreground(s.Palette.Text)
	ts.Selected = ts.Selected.
		Foreground(s.Palette.Accent).
		Bold(false)
	t.SetStyles(ts)

	return monitorPage{table: t}
}

// formatValue renders a record value with its unit; unparsable values
// show as NaN like the raw dump.
func formatValue(r tbl.Record) string {
	if !r.Valid() {
		return "NaN"
	}

	return strings.TrimSpace(fmt.Sprintf("%.2f %s", r.Value, r.Unit))
}

func (p *monitorPage) setSnapshot(snap *tbl.Snapshot) {
	if snap == nil {
		p.table.SetRows(nil)
		return
	}

	records := snap.Records()
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{r.Name, formatValue(r), r.Offset, r.RawHex})
	}
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(0)
	}
}

func (p *monitorPage) resize(height int) {
	h := height - monitorOverhead
	if h < minTableHeight {
		h = minTableHeight
	}
	p.table.SetHeight(h)
}

func (m Model) updateMonitor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.monitor.table, cmd = m.monitor.table.Update(msg)

	return m, cmd
}

func (m Model) viewMonitor() string {
	var b strings.Builder

	var history []float64
	if m.cpu != nil {
		history = m.cpu.History()
	}
	current := 0.0
	if len(history) > 0 {
		current = history[len(history)-1]
	}

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("%s: %.1f%%", m.t("CPU Usage"), current)))
	b.WriteString("\n")

	width := sparkWidth
	if m.width > 8 && m.width-8 < width {
		width = m.width - 8
	}
	b.WriteString(m.styles.Label.Render(m.t("History") + " "))
	b.WriteString(m.styles.Graph.Render(sparkline(history, width, 0, 100)))
	b.WriteString("\n\n")

	if len(m.monitor.table.Rows()) == 0 {
		b.WriteString(m.styles.Muted.Render("No metrics yet"))
		return b.String()
	}
	b.WriteString(m.monitor.table.View())

	return b.String()
}
