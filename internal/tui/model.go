// Package tui is the interactive dashboard. It renders the controller's
// state and forwards user intent to it; all ryzenadj work happens in the
// controller.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/params"
)

// DefaultCPUEvery is how often the monitor samples CPU usage.
const DefaultCPUEvery = time.Second

// Page identifies a dashboard page.
type Page int

const (
	PageWelcome Page = iota
	PageAdjust
	PageMonitor
	PageSettings
	pageCount
)

func (p Page) String() string {
	switch p {
	case PageWelcome:
		return "welcome"
	case PageAdjust:
		return "adjust"
	case PageMonitor:
		return "monitor"
	case PageSettings:
		return "settings"
	default:
		return "unknown"
	}
}

func (p Page) title() string {
	switch p {
	case PageAdjust:
		return "Adjust"
	case PageMonitor:
		return "Monitor"
	case PageSettings:
		return "Settings"
	default:
		return "Welcome"
	}
}

// Options configures the dashboard.
type Options struct {
	Slider   params.SliderConfig
	Theme    int
	Language int
	CPUEvery time.Duration
	// Elevation is the result of privilege.Check, shown on the welcome
	// page when non-nil.
	Elevation error
	Logger    logger.Logger
}

type (
	updateMsg    struct{}
	cpuTickMsg   time.Time
	applyDoneMsg struct{ err error }
	savedMsg     struct {
		cfg *config.Config
		err error
	}
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx    context.Context
	ctrl   Controller
	cpu    CPUSampler
	store  SettingsStore
	logger logger.Logger

	slider    params.SliderConfig
	elevation error
	cpuEvery  time.Duration

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
	lang    int

	page      Page
	width     int
	height    int
	status    string
	statusErr bool

	adjust   adjustPage
	monitor  monitorPage
	settings settingsPage
}

// New builds the dashboard. store may be nil, in which case settings
// cannot be saved.
func New(ctx context.Context, ctrl Controller, cpu CPUSampler, store SettingsStore, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.CPUEvery <= 0 {
		opts.CPUEvery = DefaultCPUEvery
	}
	if opts.Slider.Policy == "" {
		opts.Slider = params.DefaultSliderConfig()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	styles := NewStyles(opts.Theme)
	sp.Style = styles.Selected

	m := Model{
		ctx:       ctx,
		ctrl:      ctrl,
		cpu:       cpu,
		store:     store,
		logger:    opts.Logger,
		slider:    opts.Slider,
		elevation: opts.Elevation,
		cpuEvery:  opts.CPUEvery,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		styles:    styles,
		lang:      opts.Language,
		page:      PageWelcome,
		adjust:    newAdjustPage(),
		monitor:   newMonitorPage(styles),
	}

	var cfg *config.Config
	if store != nil {
		cfg = store.Get()
	}
	m.settings = newSettingsPage(cfg, opts.Theme, opts.Language)
	m.monitor.setSnapshot(ctrl.Snapshot())

	return m
}

// Page returns the page on display.
func (m Model) Page() Page {
	return m.page
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdate(m.ctrl.Updates()),
		m.spinner.Tick,
		m.sampleCPU(),
	)
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}

		return updateMsg{}
	}
}

func (m Model) sampleCPU() tea.Cmd {
	if m.cpu == nil {
		return nil
	}

	return tea.Tick(m.cpuEvery, func(t time.Time) tea.Msg {
		return cpuTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.monitor.resize(msg.Height)

		return m, nil

	case updateMsg:
		m.monitor.setSnapshot(m.ctrl.Snapshot())

		return m, waitForUpdate(m.ctrl.Updates())

	case cpuTickMsg:
		if _, err := m.cpu.Sample(m.ctx); err != nil {
			m.logger.Debug().Err(err).Msg("CPU sample failed")
		}

		return m, m.sampleCPU()

	case applyDoneMsg:
		m.handleApplyDone(msg.err)

		return m, nil

	case savedMsg:
		m.handleSaved(msg)

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) editing() bool {
	return (m.page == PageAdjust && m.adjust.editing) ||
		(m.page == PageSettings && m.settings.editing)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.editing() {
		return m.handlePageKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.Cancel):
		if m.ctrl.LastError() != nil {
			m.ctrl.DismissError()
			return m, nil
		}
	case key.Matches(msg, m.keys.Refresh):
		if !m.ctrl.Refresh() {
			m.setStatus("Refresh already in progress", false)
		}
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		return m.navigate((m.page + 1) % pageCount), nil
	case key.Matches(msg, m.keys.PrevPage):
		return m.navigate((m.page + pageCount - 1) % pageCount), nil
	case key.Matches(msg, m.keys.Page1):
		return m.navigate(PageWelcome), nil
	case key.Matches(msg, m.keys.Page2):
		return m.navigate(PageAdjust), nil
	case key.Matches(msg, m.keys.Page3):
		return m.navigate(PageMonitor), nil
	case key.Matches(msg, m.keys.Page4):
		return m.navigate(PageSettings), nil
	}

	return m.handlePageKey(msg)
}

func (m Model) handlePageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.page {
	case PageAdjust:
		return m.updateAdjust(msg)
	case PageMonitor:
		return m.updateMonitor(msg)
	case PageSettings:
		return m.updateSettings(msg)
	default:
		return m, nil
	}
}

// navigate switches pages; every switch requests a fresh snapshot.
func (m Model) navigate(p Page) Model {
	m.page = p
	m.ctrl.Navigate(p.String())
	m.status = ""
	m.statusErr = false

	return m
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) t(s string) string {
	return translate(m.lang, s)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n")

	var content string
	switch m.page {
	case PageAdjust:
		content = m.viewAdjust()
	case PageMonitor:
		content = m.viewMonitor()
	case PageSettings:
		content = m.viewSettings()
	default:
		content = m.viewWelcome()
	}
	b.WriteString(m.styles.Content.Render(content))
	b.WriteString("\n")

	if n := m.viewNotification(); n != "" {
		b.WriteString(n)
		b.WriteString("\n")
	}

	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) viewHeader() string {
	tabs := make([]string, 0, pageCount)
	for p := PageWelcome; p < pageCount; p++ {
		label := m.t(p.title())
		if p == m.page {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.Tab.Render(label))
		}
	}

	return m.styles.Header.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) viewStatus() string {
	st := m.ctrl.Status()

	parts := []string{}
	if st.State == controller.StatePolling || st.Applying {
		parts = append(parts, m.spinner.View())
	}
	parts = append(parts, st.State.String())
	if st.Applying {
		parts = append(parts, "applying")
	}
	if !st.LastPoll.IsZero() {
		parts = append(parts, "last poll "+st.LastPoll.Format("15:04:05"))
	}
	line := m.styles.Status.Render(strings.Join(parts, " · "))

	if m.status != "" {
		style := m.styles.Status
		if m.statusErr {
			style = m.styles.StatusError
		}
		line += style.Render(m.status)
	}

	return line
}

func (m Model) viewWelcome() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.t("Welcome to ryzenctl")))
	b.WriteString("\n")
	b.WriteString(m.t("Use Adjust to configure parameters and Monitor to view metrics."))
	if m.elevation != nil {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Hint.Render("⚠ " + m.elevation.Error()))
	}

	return b.String()
}
