package history

import (
	"context"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/table"
)

// Store persists polled snapshots and answers queries over them.
type Store interface {
	Record(ctx context.Context, snap *table.Snapshot) error
	Recent(ctx context.Context, limit int) ([]Poll, error)
	Series(ctx context.Context, name string, limit int) ([]Point, error)
	Close() error
	Enabled() bool
}

// Repository defines the interface for history data storage
type Repository interface {
	Record(snap *table.Snapshot) error
	Recent(ctx context.Context, limit int) ([]Poll, error)
	Series(ctx context.Context, name string, limit int) ([]Point, error)
	Close() error
}

// Poll is one stored snapshot.
type Poll struct {
	ID         string
	CapturedAt time.Time
	Records    []table.Record
}

// Point is one stored reading of a single metric.
type Point struct {
	PollID     string
	CapturedAt time.Time
	Value      float64
	Unit       string
}
