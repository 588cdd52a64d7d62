package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard keybindings.
type KeyMap struct {
	NextPage key.Binding
	PrevPage key.Binding
	Page1    key.Binding
	Page2    key.Binding
	Page3    key.Binding
	Page4    key.Binding
	Up       key.Binding
	Down     key.Binding
	Dec      key.Binding
	Inc      key.Binding
	Edit     key.Binding
	Clear    key.Binding
	Apply    key.Binding
	Reset    key.Binding
	Toggle   key.Binding
	Save     key.Binding
	Refresh  key.Binding
	Dismiss  key.Binding
	Cancel   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// ShortHelp returns keybindings to show in compact help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.Refresh, k.Apply, k.Help, k.Quit}
}

// FullHelp returns keybindings for expanded help.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPage, k.PrevPage, k.Page1, k.Page2, k.Page3, k.Page4},
		{k.Up, k.Down, k.Dec, k.Inc, k.Edit, k.Clear},
		{k.Apply, k.Reset, k.Toggle, k.Save},
		{k.Refresh, k.Dismiss, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPage: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev page")),
		Page1:    key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "welcome")),
		Page2:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "adjust")),
		Page3:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "monitor")),
		Page4:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "settings")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Dec:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "decrease")),
		Inc:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "increase")),
		Edit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Clear:    key.NewBinding(key.WithKeys("backspace", "delete"), key.WithHelp("del", "clear value")),
		Apply:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply")),
		Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset edits")),
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save settings")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Dismiss:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dismiss error")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
