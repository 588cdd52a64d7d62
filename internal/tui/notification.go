package tui

import (
	"strings"

	"codeberg.org/mutker/ryzenctl/internal/ryzenadj"
)

// viewNotification renders the last ryzenadj error until it is dismissed
// or a later success clears it.
func (m Model) viewNotification() string {
	err := m.ctrl.LastError()
	if err == nil {
		return ""
	}

	lines := []string{
		m.styles.ErrorTitle.Render(m.t("RyzenAdj Error:")),
		strings.TrimSpace(err.Error()),
	}
	if ryzenadj.NeedsElevation(err) {
		lines = append(lines, m.styles.Hint.Render(m.t("Try running with administrator privileges.")))
	}
	lines = append(lines, m.styles.Muted.Render("d: dismiss"))

	box := m.styles.ErrorBox
	if m.width > 4 && m.width-4 < 60 {
		box = box.Width(m.width - 4)
	}

	return box.Render(strings.Join(lines, "\n"))
}
