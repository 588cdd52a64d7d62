package tui

import "github.com/charmbracelet/lipgloss"

// Theme indexes match config.Themes.
const (
	ThemeDark = iota
	ThemeLight
	ThemeSystem
)

// Palette holds the colors of one theme.
type Palette struct {
	Text     lipgloss.TerminalColor
	Muted    lipgloss.TerminalColor
	Accent   lipgloss.TerminalColor
	Border   lipgloss.TerminalColor
	Healthy  lipgloss.TerminalColor
	Warning  lipgloss.TerminalColor
	Critical lipgloss.TerminalColor
	Graph    lipgloss.TerminalColor
}

var (
	darkPalette = Palette{
		Text:     lipgloss.Color("#E6E6E6"),
		Muted:    lipgloss.Color("#7A7A8C"),
		Accent:   lipgloss.Color("#FF6B35"),
		Border:   lipgloss.Color("#3A3A4A"),
		Healthy:  lipgloss.Color("#4CD964"),
		Warning:  lipgloss.Color("#FFAA00"),
		Critical: lipgloss.Color("#FF4F4F"),
		Graph:    lipgloss.Color("#00C8FF"),
	}

	lightPalette = Palette{
		Text:     lipgloss.Color("#141414"),
		Muted:    lipgloss.Color("#6E6E6E"),
		Accent:   lipgloss.Color("#C2410C"),
		Border:   lipgloss.Color("#C8C8C8"),
		Healthy:  lipgloss.Color("#15803D"),
		Warning:  lipgloss.Color("#B45309"),
		Critical: lipgloss.Color("#B91C1C"),
		Graph:    lipgloss.Color("#0369A1"),
	}

	systemPalette = Palette{
		Text:     lipgloss.AdaptiveColor{Light: "#141414", Dark: "#E6E6E6"},
		Muted:    lipgloss.AdaptiveColor{Light: "#6E6E6E", Dark: "#7A7A8C"},
		Accent:   lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FF6B35"},
		Border:   lipgloss.AdaptiveColor{Light: "#C8C8C8", Dark: "#3A3A4A"},
		Healthy:  lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4CD964"},
		Warning:  lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FFAA00"},
		Critical: lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FF4F4F"},
		Graph:    lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#00C8FF"},
	}
)

// Styles are the rendered styles derived from a palette.
type Styles struct {
	Palette Palette

	Header      lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	Title       lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Muted       lipgloss.Style
	Selected    lipgloss.Style
	Pending     lipgloss.Style
	Estimated   lipgloss.Style
	Graph       lipgloss.Style
	Status      lipgloss.Style
	StatusError lipgloss.Style
	ErrorBox    lipgloss.Style
	ErrorTitle  lipgloss.Style
	Hint        lipgloss.Style
	Content     lipgloss.Style
}

// NewStyles returns the styles for a theme index. Unknown indexes fall
// back to dark.
func NewStyles(theme int) Styles {
	p := darkPalette
	switch theme {
	case ThemeLight:
		p = lightPalette
	case ThemeSystem:
		p = systemPalette
	}

	return Styles{
		Palette: p,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border),
		Tab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		TabActive: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Foreground(p.Text).
			Bold(true).
			MarginBottom(1),
		Label: lipgloss.NewStyle().
			Foreground(p.Muted),
		Value: lipgloss.NewStyle().
			Foreground(p.Text),
		Muted: lipgloss.NewStyle().
			Foreground(p.Muted),
		Selected: lipgloss.NewStyle().
			Foreground(p.Accent).
			Bold(true),
		Pending: lipgloss.NewStyle().
			Foreground(p.Warning),
		Estimated: lipgloss.NewStyle().
			Foreground(p.Warning),
		Graph: lipgloss.NewStyle().
			Foreground(p.Graph),
		Status: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		StatusError: lipgloss.NewStyle().
			Foreground(p.Critical).
			Padding(0, 1),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Critical).
			Padding(0, 1).
			Width(60),
		ErrorTitle: lipgloss.NewStyle().
			Foreground(p.Critical).
			Bold(true),
		Hint: lipgloss.NewStyle().
			Foreground(p.Warning),
		Content: lipgloss.NewStyle().
			Padding(1, 2),
	}
}
