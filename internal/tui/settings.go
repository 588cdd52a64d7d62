package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/mutker/ryzenctl/internal/config"
)

const (
	fieldStartWithSystem = iota
	fieldLanguage
	fieldTheme
	fieldPath
	fieldCount
)

type settingsPage struct {
	cursor          int
	editing         bool
	startWithSystem bool
	language        int
	theme           int
	path            textinput.Model
}

func newSettingsPage(cfg *config.Config, theme, lang int) settingsPage {
	in := textinput.New()
	in.CharLimit = 256
	in.Width = 48
	in.Prompt = "> "
	in.Placeholder = config.DefaultRyzenAdjPath()

	p := settingsPage{theme: theme, language: lang, path: in}
	if cfg != nil {
		p.startWithSystem = cfg.StartWithSystem
		p.language = cfg.Language
		p.theme = cfg.Theme
		p.path.SetValue(cfg.RyzenAdjPath)
	}

	return p
}

func cycle(v, delta, n int) int {
	return ((v+delta)%n + n) % n
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.settings
	if s.editing {
		if msg.Type == tea.KeyEnter || key.Matches(msg, m.keys.Cancel) {
			s.editing = false
			s.path.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if s.cursor < fieldCount-1 {
			s.cursor++
		}
	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Edit):
		switch s.cursor {
		case fieldStartWithSystem:
			s.startWithSystem = !s.startWithSystem
		case fieldPath:
			s.editing = true
			s.path.CursorEnd()
			cmd := s.path.Focus()
			return m, cmd
		default:
			m.cycleSetting(1)
		}
	case key.Matches(msg, m.keys.Dec):
		m.cycleSetting(-1)
	case key.Matches(msg, m.keys.Inc):
		m.cycleSetting(1)
	}

	return m, nil
}

// cycleSetting steps the selected combo. Theme and language take effect
// immediately and persist on save.
func (m *Model) cycleSetting(delta int) {
	s := &m.settings
	switch s.cursor {
	case fieldLanguage:
		s.language = cycle(s.language, delta, len(config.Languages))
		m.lang = s.language
	case fieldTheme:
		s.theme = cycle(s.theme, delta, len(config.Themes))
		m.applyTheme(s.theme)
	}
}

func (m *Model) applyTheme(theme int) {
	m.styles = NewStyles(theme)
	m.spinner.Style = m.styles.Selected
	rows := m.monitor.table.Rows()
	m.monitor = newMonitorPage(m.styles)
	m.monitor.table.SetRows(rows)
	if m.height > 0 {
		m.monitor.resize(m.height)
	}
}

func (m Model) saveCmd() tea.Cmd {
	if m.store == nil {
		return func() tea.Msg {
			return savedMsg{err: fmt.Errorf("settings store unavailable")}
		}
	}

	store := m.store
	s := m.settings
	path := strings.TrimSpace(s.path.Value())

	return func() tea.Msg {
		cfg := store.Get()
		cfg.StartWithSystem = s.startWithSystem
		cfg.Language = s.language
		cfg.Theme = s.theme
		cfg.RyzenAdjPath = path
		if err := store.Save(cfg); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{cfg: cfg}
	}
}

func (m *Model) handleSaved(msg savedMsg) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("Failed to save settings")
		m.setStatus(msg.err.Error(), true)
		return
	}

	m.ctrl.SetExecutablePath(msg.cfg.RyzenAdjPath)
	m.setStatus(m.t("Settings saved"), false)
}

func (m Model) viewSettings() string {
	s := m.settings
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.t("Settings")))
	b.WriteString("\n")

	check := "[ ]"
	if s.startWithSystem {
		check = "[x]"
	}

	rows := []string{
		fmt.Sprintf("%s %s", check, m.t("Start with system")),
		fmt.Sprintf("%s: ‹ %s ›", m.t("Language"), config.Languages[cycle(s.language, 0, len(config.Languages))]),
		fmt.Sprintf("%s: ‹ %s ›", m.t("Theme"), config.Themes[cycle(s.theme, 0, len(config.Themes))]),
		m.t("RyzenAdj Executable Path:") + "\n    " + s.path.View(),
	}
	for i, row := range rows {
		if i == s.cursor {
			b.WriteString(m.styles.Selected.Render("> "))
			b.WriteString(m.styles.Selected.Render(row))
		} else {
			b.WriteString("  ")
			b.WriteString(m.styles.Value.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("s: " + m.t("Save")))

	return b.String()
}
