package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/params"
)

const barWidth = 24

type adjustRow struct {
	group string
	param params.Param
}

type adjustPage struct {
	rows    []adjustRow
	cursor  int
	editing bool
	input   textinput.Model
}

func newAdjustPage() adjustPage {
	var rows []adjustRow
	for _, g := range params.Groups() {
		for _, p := range g.Params {
			rows = append(rows, adjustRow{group: g.Name, param: p})
		}
	}

	in := textinput.New()
	in.CharLimit = 10
	in.Width = 12
	in.Prompt = "= "

	return adjustPage{rows: rows, input: in}
}

func (p adjustPage) current() params.Param {
	return p.rows[p.cursor].param
}

// valueOf is the pending edit when it is an integer, else the bound default.
func valueOf(edits map[string]string, key string, b params.Bounds) int {
	if s, ok := edits[key]; ok {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}

	return b.Default
}

func stepFor(b params.Bounds) int {
	s := (b.Max - b.Min) / 100
	if s < 1 {
		return 1
	}

	return s
}

func (m Model) bounds(p params.Param) params.Bounds {
	return params.BoundsFor(p, m.ctrl.Snapshot(), m.slider)
}

func (m Model) updateAdjust(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adjust.editing {
		return m.updateAdjustInput(msg)
	}

	p := m.adjust.current()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.adjust.cursor > 0 {
			m.adjust.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.adjust.cursor < len(m.adjust.rows)-1 {
			m.adjust.cursor++
		}
	case key.Matches(msg, m.keys.Dec), key.Matches(msg, m.keys.Inc):
		b := m.bounds(p)
		v := valueOf(m.ctrl.Edits(), p.Key, b)
		if key.Matches(msg, m.keys.Dec) {
			v -= stepFor(b)
		} else {
			v += stepFor(b)
		}
		m.ctrl.SetEdit(p.Key, strconv.Itoa(b.Clamp(v)))
	case key.Matches(msg, m.keys.Edit):
		m.adjust.editing = true
		m.adjust.input.SetValue(m.ctrl.Edits()[p.Key])
		m.adjust.input.CursorEnd()
		cmd := m.adjust.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Clear):
		m.ctrl.SetEdit(p.Key, "")
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.ResetEdits()
		m.setStatus("Edits cleared", false)
	case key.Matches(msg, m.keys.Apply):
		m.setStatus("Applying...", false)
		return m, m.applyCmd()
	}

	return m, nil
}

// updateAdjustInput handles typed values. Typed values are not clamped
// to the slider range; ryzenadj decides what it accepts.
func (m Model) updateAdjustInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adjust.editing = false
		m.adjust.input.Blur()
		return m, nil
	case msg.Type == tea.KeyEnter:
		raw := strings.TrimSpace(m.adjust.input.Value())
		if raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				m.setStatus(fmt.Sprintf("%q is not a valid value", raw), true)
				return m, nil
			}
			raw = strconv.Itoa(v)
		}
		m.ctrl.SetEdit(m.adjust.current().Key, raw)
		m.adjust.editing = false
		m.adjust.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.adjust.input, cmd = m.adjust.input.Update(msg)

	return m, cmd
}

func (m Model) applyCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		return applyDoneMsg{err: ctrl.Apply(ctx)}
	}
}

func (m *Model) handleApplyDone(err error) {
	switch {
	case err == nil:
		m.setStatus("Parameters applied", false)
	case errors.HasCode(err, controller.ErrNothingToApply):
		m.setStatus("No pending changes", false)
	case errors.HasCode(err, errors.ErrResourceBusy):
		m.setStatus("Apply already in progress", false)
	default:
		m.logger.Warn().Err(err).Msg("Apply failed")
		m.setStatus("Apply failed", true)
	}
}

func (m Model) viewAdjust() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.t("Adjust RyzenAdj Parameters")))
	b.WriteString("\n")

	edits := m.ctrl.Edits()
	group := ""
	for i, row := range m.adjust.rows {
		if row.group != group {
			group = row.group
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(m.styles.Label.Render(group))
			b.WriteString("\n")
		}

		bd := m.bounds(row.param)
		v := valueOf(edits, row.param.Key, bd)

		cursor := "  "
		name := m.styles.Value.Render(fmt.Sprintf("%-15s", row.param.Key))
		if i == m.adjust.cursor {
			cursor = m.styles.Selected.Render("> ")
			name = m.styles.Selected.Render(fmt.Sprintf("%-15s", row.param.Key))
		}

		value := fmt.Sprintf("%7d", v)
		if s, ok := edits[row.param.Key]; ok && s != "" {
			value = m.styles.Pending.Render(fmt.Sprintf("%7s*", s))
		}
		if i == m.adjust.cursor && m.adjust.editing {
			value = m.adjust.input.View()
		}

		line := fmt.Sprintf("%s%s %s %s / %d",
			cursor, name,
			m.styles.Graph.Render(bar(bd.Clamp(v), bd.Min, bd.Max, barWidth)),
			value, bd.Max)
		if bd.Estimated {
			line += " " + m.styles.Estimated.Render("⚠")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	p := m.adjust.current()
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(p.Description))
	if m.bounds(p).Estimated {
		b.WriteString("\n")
		b.WriteString(m.styles.Estimated.Render("⚠ " + m.t("Estimated value — not available from RyzenAdj")))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("a: " + m.t("Apply RyzenAdj")))

	return b.String()
}
