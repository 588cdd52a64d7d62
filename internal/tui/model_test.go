package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/ryzenadj"
	"codeberg.org/mutker/ryzenctl/internal/table"
)

const sampleDump = `RyzenAdj dump
Table Version: 0x370005
| Offset | Data | Value |
| 0x0144 | 0x1c2 | 450 |
| 0x0018 | 0x20 | 25.5 |
| 0x02a4 | 0x4b | 61.25 |
`

type fakeController struct {
	snap      *table.Snapshot
	lastErr   error
	edits     map[string]string
	navigated []string
	refreshes int
	applies   int
	applyErr  error
	exe       string
	updates   chan struct{}
}

func newFakeController() *fakeController {
	return &fakeController{
		snap:    table.Parse(sampleDump),
		edits:   map[string]string{},
		updates: make(chan struct{}, 1),
	}
}

func (f *fakeController) Snapshot() *table.Snapshot { return f.snap }
func (f *fakeController) Status() controller.Status {
	st := controller.StateIdle
	if f.lastErr != nil {
		st = controller.StateError
	}
	return controller.Status{State: st}
}
func (f *fakeController) LastError() error { return f.lastErr }
func (f *fakeController) DismissError()    { f.lastErr = nil }
func (f *fakeController) Refresh() bool {
	f.refreshes++
	return true
}
func (f *fakeController) Navigate(page string) bool {
	f.navigated = append(f.navigated, page)
	return true
}
func (f *fakeController) SetEdit(key, value string) {
	if value == "" {
		delete(f.edits, key)
		return
	}
	f.edits[key] = value
}
func (f *fakeController) Edits() map[string]string {
	out := make(map[string]string, len(f.edits))
	for k, v := range f.edits {
		out[k] = v
	}
	return out
}
func (f *fakeController) ResetEdits() { f.edits = map[string]string{} }
func (f *fakeController) Apply(context.Context) error {
	f.applies++
	return f.applyErr
}
func (f *fakeController) SetExecutablePath(path string) { f.exe = path }
func (f *fakeController) Updates() <-chan struct{}      { return f.updates }

type fakeCPU struct {
	history []float64
}

func (c *fakeCPU) Sample(context.Context) (float64, error) {
	c.history = append(c.history, 50)
	return 50, nil
}
func (c *fakeCPU) History() []float64 { return c.history }

type fakeStore struct {
	cfg     *config.Config
	saved   *config.Config
	saveErr error
}

func (s *fakeStore) Get() *config.Config { return s.cfg.Clone() }
func (s *fakeStore) Save(cfg *config.Config) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = cfg
	s.cfg = cfg.Clone()
	return nil
}

func newModel(t *testing.T) (Model, *fakeController, *fakeStore) {
	t.Helper()
	fc := newFakeController()
	cfg := config.Default()
	cfg.RyzenAdjPath = "/opt/ryzenadj"
	store := &fakeStore{cfg: cfg}
	m := New(context.Background(), fc, &fakeCPU{history: []float64{10, 20}}, store, Options{Theme: ThemeDark})
	return m, fc, store
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m, cmd
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestNavigateRequestsPoll(t *testing.T) {
	m, fc, _ := newModel(t)
	assert.Equal(t, PageWelcome, m.Page())

	m, _ = press(t, m, "2")
	assert.Equal(t, PageAdjust, m.Page())

	m, _ = press(t, m, "tab", "tab")
	assert.Equal(t, PageSettings, m.Page())

	m, _ = press(t, m, "tab")
	assert.Equal(t, PageWelcome, m.Page())
	assert.Equal(t, []string{"adjust", "monitor", "settings", "welcome"}, fc.navigated)
}

func TestRefreshKey(t *testing.T) {
	m, fc, _ := newModel(t)
	press(t, m, "r")
	assert.Equal(t, 1, fc.refreshes)
}

func TestWelcomeShowsElevationWarning(t *testing.T) {
	fc := newFakeController()
	m := New(context.Background(), fc, nil, nil, Options{
		Elevation: errors.New().WithMessage(errors.ErrInvalidArgument, "re-run with sudo"),
	})

	view := m.View()
	assert.Contains(t, view, "Welcome to ryzenctl")
	assert.Contains(t, view, "re-run with sudo")
}

func TestAdjustStepsWithinBounds(t *testing.T) {
	m, fc, _ := newModel(t)

	// stapm reads 45 W, so the slider starts at 45.
	m, _ = press(t, m, "2", "right")
	assert.Equal(t, "46", fc.edits["stapm"])

	m, _ = press(t, m, "left", "left")
	assert.Equal(t, "44", fc.edits["stapm"])

	view := m.View()
	assert.Contains(t, view, "stapm")
	assert.Contains(t, view, "44*")
}

func TestAdjustStepClampsAtZero(t *testing.T) {
	m, fc, _ := newModel(t)

	// fast has no reading: estimated bounds start at 0.
	m, _ = press(t, m, "2", "down", "left")
	assert.Equal(t, "0", fc.edits["fast"])
	assert.Contains(t, m.View(), "Estimated value")
}

func TestAdjustTypedValueIsNotClamped(t *testing.T) {
	m, fc, _ := newModel(t)

	m, _ = press(t, m, "2", "enter", "1", "2", "3", "4", "5", "enter")
	assert.Equal(t, "12345", fc.edits["stapm"])
	assert.False(t, m.adjust.editing)
}

func TestAdjustTypedNegativeValueRejected(t *testing.T) {
	m, fc, _ := newModel(t)

	m, _ = press(t, m, "2", "enter", "-", "5", "enter")
	assert.NotContains(t, fc.edits, "stapm")
	assert.True(t, m.adjust.editing)
	assert.True(t, m.statusErr)

	m, _ = press(t, m, "esc")
	assert.False(t, m.adjust.editing)
}

func TestAdjustEditingSwallowsGlobalKeys(t *testing.T) {
	m, fc, _ := newModel(t)

	m, _ = press(t, m, "2", "enter", "q", "3")
	assert.Equal(t, PageAdjust, m.Page())
	assert.Equal(t, []string{"adjust"}, fc.navigated)
}

func TestAdjustClearAndReset(t *testing.T) {
	m, fc, _ := newModel(t)

	m, _ = press(t, m, "2", "right", "down", "right")
	assert.Len(t, fc.edits, 2)

	m, _ = press(t, m, "delete")
	assert.Len(t, fc.edits, 1)

	press(t, m, "x")
	assert.Empty(t, fc.edits)
}

func TestApplyKey(t *testing.T) {
	m, fc, _ := newModel(t)

	m, cmd := press(t, m, "2", "right", "a")
	require.NotNil(t, cmd)

	m, _ = send(t, m, cmd())
	assert.Equal(t, 1, fc.applies)
	assert.Equal(t, "Parameters applied", m.status)
	assert.False(t, m.statusErr)
}

func TestApplyOutcomes(t *testing.T) {
	factory := errors.New()
	tests := []struct {
		name    string
		err     error
		status  string
		isError bool
	}{
		{"nothing", factory.New(controller.ErrNothingToApply), "No pending changes", false},
		{"busy", factory.New(errors.ErrResourceBusy), "Apply already in progress", false},
		{"failed", factory.WithMessage(ryzenadj.ErrToolFailed, "boom"), "Apply failed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := newModel(t)
			m, _ = send(t, m, applyDoneMsg{err: tt.err})
			assert.Equal(t, tt.status, m.status)
			assert.Equal(t, tt.isError, m.statusErr)
		})
	}
}

func TestNotificationWithElevationHint(t *testing.T) {
	m, fc, _ := newModel(t)
	fc.lastErr = errors.New().WithMessage(ryzenadj.ErrToolFailed, "Permission denied: cannot map SMU")

	view := m.View()
	assert.Contains(t, view, "RyzenAdj Error:")
	assert.Contains(t, view, "Permission denied: cannot map SMU")
	assert.Contains(t, view, "Try running with administrator privileges.")

	m, _ = press(t, m, "d")
	assert.NoError(t, fc.LastError())
	assert.NotContains(t, m.View(), "RyzenAdj Error:")
}

func TestNotificationWithoutHint(t *testing.T) {
	m, fc, _ := newModel(t)
	fc.lastErr = errors.New().WithMessage(errors.ErrInvalidConfig, "Invalid RyzenAdj path: /nope")

	view := m.View()
	assert.Contains(t, view, "Invalid RyzenAdj path: /nope")
	assert.NotContains(t, view, "administrator")
}

func TestMonitorShowsSnapshotAndCPU(t *testing.T) {
	m, _, _ := newModel(t)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = press(t, m, "3")

	view := m.View()
	assert.Contains(t, view, "CPU Usage: 20.0%")
	assert.Contains(t, view, "stapm-value")
	assert.Contains(t, view, "45.00 W")
	assert.Contains(t, view, "0x0144")
	assert.Contains(t, view, "0x1c2")
}

func TestUpdateMsgRefreshesTable(t *testing.T) {
	m, fc, _ := newModel(t)
	fc.snap = table.Empty()

	m, cmd := send(t, m, updateMsg{})
	assert.NotNil(t, cmd, "must keep listening for updates")
	assert.Empty(t, m.monitor.table.Rows())

	m, _ = press(t, m, "3")
	assert.Contains(t, m.View(), "No metrics yet")
}

func TestCPUTickSamples(t *testing.T) {
	m, _, _ := newModel(t)
	cpu, ok := m.cpu.(*fakeCPU)
	require.True(t, ok)

	_, cmd := send(t, m, cpuTickMsg{})
	assert.NotNil(t, cmd)
	assert.Len(t, cpu.history, 3)
}

func TestSettingsSave(t *testing.T) {
	m, fc, store := newModel(t)

	m, _ = press(t, m, "4")
	m, _ = press(t, m, "space")
	m, _ = press(t, m, "down", "right")
	m, _ = press(t, m, "down", "right")
	m, _ = press(t, m, "down", "enter", "2", "enter")

	m, cmd := press(t, m, "s")
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	require.NotNil(t, store.saved)
	assert.True(t, store.saved.StartWithSystem)
	assert.Equal(t, 1, store.saved.Language)
	assert.Equal(t, 0, store.saved.Theme)
	assert.Equal(t, "/opt/ryzenadj2", store.saved.RyzenAdjPath)
	assert.Equal(t, "/opt/ryzenadj2", fc.exe)
	assert.False(t, m.statusErr)
	assert.Equal(t, "设置已保存", m.status)
}

func TestSettingsSaveError(t *testing.T) {
	m, fc, store := newModel(t)
	store.saveErr = errors.New().WithMessage(errors.ErrInvalidConfig, "ra_path must not be empty")

	m, cmd := press(t, m, "4", "s")
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "ra_path")
	assert.Empty(t, fc.exe)
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t)
	_, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "▁█", sparkline([]float64{0, 100}, 10, 0, 100))
	assert.Equal(t, "▁▁", sparkline([]float64{5, 5}, 10, 5, 5))
	assert.Equal(t, "█", sparkline([]float64{0, 100}, 1, 0, 100))
	assert.Empty(t, sparkline(nil, 10, 0, 100))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "██░░", bar(50, 0, 100, 4))
	assert.Equal(t, "████", bar(200, 0, 100, 4))
	assert.Equal(t, strings.Repeat("░", 4), bar(0, 0, 0, 4))
}
