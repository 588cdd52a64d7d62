package tui

import (
	"context"

	"codeberg.org/mutker/ryzenctl/internal/config"
	"codeberg.org/mutker/ryzenctl/internal/controller"
	"codeberg.org/mutker/ryzenctl/internal/table"
)

// Controller is the part of controller.Controller the dashboard drives.
type Controller interface {
	Snapshot() *table.Snapshot
	Status() controller.Status
	LastError() error
	DismissError()
	Refresh() bool
	Navigate(page string) bool
	SetEdit(key, value string)
	Edits() map[string]string
	ResetEdits()
	Apply(ctx context.Context) error
	SetExecutablePath(path string)
	Updates() <-chan struct{}
}

// SettingsStore persists the settings page.
type SettingsStore interface {
	Get() *config.Config
	Save(cfg *config.Config) error
}

// CPUSampler feeds the monitor page.
type CPUSampler interface {
	Sample(ctx context.Context) (float64, error)
	History() []float64
}
