package telemetry

import "codeberg.org/mutker/ryzenctl/internal/table"

// SnapshotProvider returns the latest polled snapshot.
type SnapshotProvider interface {
	Snapshot() *table.Snapshot
}

// HealthSource reports the outcome of the most recent poll or apply.
type HealthSource interface {
	LastError() error
}
