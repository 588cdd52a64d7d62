// Package cpu samples overall CPU utilization for the monitor page and
// keeps a short rolling history of it.
package cpu

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	gopsutil "github.com/shirou/gopsutil/v3/cpu"
)

// DefaultHistorySize is the number of samples kept for the usage graph.
const DefaultHistorySize = 100

// PercentFunc reports utilization percentages. It has the shape of
// gopsutil's cpu.PercentWithContext.
type PercentFunc func(ctx context.Context, interval time.Duration, perCPU bool) ([]float64, error)

// Monitor samples CPU usage and records every sample in a ring buffer.
type Monitor struct {
	mu      sync.RWMutex
	history *ringBuffer
	percent PercentFunc
	logger  logger.Logger
}

type Option func(*Monitor)

// WithPercentFunc replaces the gopsutil source, for tests.
func WithPercentFunc(f PercentFunc) Option {
	return func(m *Monitor) { m.percent = f }
}

func WithLogger(l logger.Logger) Option {
	return func(m *Monitor) { m.logger = l.With("cpu") }
}

func New(size int, opts ...Option) *Monitor {
	if size <= 0 {
		size = DefaultHistorySize
	}

	m := &Monitor{
		history: newRingBuffer(size),
		percent: gopsutil.PercentWithContext,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Prime takes a throwaway reading so the first real Sample measures
// usage since now rather than since boot.
func (m *Monitor) Prime(ctx context.Context) {
	if _, err := m.percent(ctx, 0, false); err != nil {
		m.logger.Debug().Err(err).Msg("Failed to prime CPU usage counter")
	}
}

// Sample reads usage since the previous call without blocking and appends
// it to the history.
func (m *Monitor) Sample(ctx context.Context) (float64, error) {
	values, err := m.percent(ctx, 0, false)
	if err != nil {
		return 0, errors.New().Wrap(ErrSampleFailed, err)
	}
	if len(values) == 0 {
		return 0, errors.New().New(ErrNoSample)
	}

	usage := values[0]

	m.mu.Lock()
	m.history.push(usage)
	m.mu.Unlock()

	return usage, nil
}

// Run samples every interval until ctx is done. Failed samples are logged
// and skipped.
func (m *Monitor) Run(ctx context.Context, every time.Duration) {
	m.Prime(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Sample(ctx); err != nil {
				m.logger.Debug().Err(err).Msg("CPU sample skipped")
			}
		}
	}
}

// History returns the recorded samples, oldest first.
func (m *Monitor) History() []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.history.last(m.history.count)
}

// Latest returns the newest sample, if any.
func (m *Monitor) Latest() (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	last := m.history.last(1)
	if len(last) == 0 {
		return 0, false
	}

	return last[0], true
}

// Average returns the mean of the recorded samples.
func (m *Monitor) Average() float64 {
	samples := m.History()
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s
	}

	return sum / float64(len(samples))
}
