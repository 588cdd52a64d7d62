// Package controller owns the application state: the latest metrics
// snapshot, the poll state machine, the user's pending parameter edits and
// the last error. It is created once at startup and shared by whatever
// front end drives it.
//
// Polls are single-flight: a poll starts only through a compare-and-swap
// from Idle or Error to Polling, and any trigger that loses the race is
// dropped. Polls and applies are not ordered against each other; if both
// finish close together, the later one writes the error field.
package controller

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
	"codeberg.org/mutker/ryzenctl/internal/params"
	"codeberg.org/mutker/ryzenctl/internal/ryzenadj"
	"codeberg.org/mutker/ryzenctl/internal/table"
	"github.com/google/uuid"
)

const (
	DefaultInterval   = 5 * time.Second
	DefaultCheckEvery = time.Second
)

// Recorder receives every successfully polled snapshot.
type Recorder interface {
	Record(ctx context.Context, snap *table.Snapshot) error
}

// Config holds the runtime-adjustable settings of the controller.
type Config struct {
	ExecutablePath string
	// Interval is the auto-refresh cadence. Zero or negative disables
	// auto-refresh.
	Interval time.Duration
	// CheckEvery is how often Run checks whether a refresh is due.
	CheckEvery time.Duration
}

type Controller struct {
	runner    ryzenadj.Runner
	parser    *table.Parser
	logger    logger.Logger
	recorders []Recorder
	now       func() time.Time
	newID     func() string

	applyPoll bool

	state    atomic.Int32
	applying atomic.Bool
	snapshot atomic.Pointer[table.Snapshot]

	mu          sync.RWMutex
	exe         string
	interval    time.Duration
	checkEvery  time.Duration
	lastPoll    time.Time
	lastAttempt time.Time
	lastErr     error
	pending     map[string]string
	page        string

	updates chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed atomic.Bool
}

type Option func(*Controller)

func WithParser(p *table.Parser) Option {
	return func(c *Controller) { c.parser = p }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.logger = l.With("controller") }
}

// WithRecorder adds a sink for successful snapshots.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) { c.recorders = append(c.recorders, r) }
}

// WithoutApplyPoll stops Apply from starting a background poll after a
// successful run. One-shot callers that close the controller right after
// Apply use it.
func WithoutApplyPoll() Option {
	return func(c *Controller) { c.applyPoll = false }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDGenerator replaces the poll id source, for tests.
func WithIDGenerator(f func() string) Option {
	return func(c *Controller) { c.newID = f }
}

func New(runner ryzenadj.Runner, cfg Config, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		runner:     runner,
		parser:     table.NewParser(),
		logger:     logger.Nop(),
		now:        time.Now,
		newID:      uuid.NewString,
		exe:        cfg.ExecutablePath,
		interval:   cfg.Interval,
		checkEvery: cfg.CheckEvery,
		applyPoll:  true,
		pending:    make(map[string]string),
		updates:    make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
	}
	if c.checkEvery <= 0 {
		c.checkEvery = DefaultCheckEvery
	}
	for _, opt := range opts {
		opt(c)
	}

	c.snapshot.Store(table.Empty())

	return c
}

// Close stops accepting triggers, cancels in-flight child processes and
// waits for background polls to return.
func (c *Controller) Close() {
	c.mu.Lock()
	wasClosed := c.closed.Swap(true)
	c.mu.Unlock()
	if wasClosed {
		return
	}
	c.cancel()
	c.wg.Wait()
}

// Updates delivers a signal whenever observable state changes. Signals
// coalesce: a slow reader sees at most one pending signal.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest successfully polled snapshot. It is never
// nil.
func (c *Controller) Snapshot() *table.Snapshot {
	return c.snapshot.Load()
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Status{
		State:     c.State(),
		Applying:  c.applying.Load(),
		LastPoll:  c.lastPoll,
		LastError: c.lastErr,
		Page:      c.page,
		Interval:  c.interval,
		Path:      c.exe,
	}
}

func (c *Controller) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// DismissError clears the last error.
func (c *Controller) DismissError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()

	c.state.CompareAndSwap(int32(StateError), int32(StateIdle))
	c.notify()
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) ExecutablePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.exe
}

func (c *Controller) SetExecutablePath(path string) {
	c.mu.Lock()
	c.exe = path
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) Interval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.interval
}

func (c *Controller) SetInterval(d time.Duration) {
	c.mu.Lock()
	c.interval = d
	c.mu.Unlock()
}

// SetEdit records a pending value for a parameter. An empty value is kept
// but omitted when applying.
func (c *Controller) SetEdit(key, value string) {
	c.mu.Lock()
	c.pending[key] = value
	c.mu.Unlock()
	c.notify()
}

// Edits returns a copy of the pending edits.
func (c *Controller) Edits() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.pending))
	for k, v := range c.pending {
		out[k] = v
	}

	return out
}

// ResetEdits discards every pending edit.
func (c *Controller) ResetEdits() {
	c.mu.Lock()
	c.pending = make(map[string]string)
	c.mu.Unlock()
	c.notify()
}

// Flags returns the non-empty pending edits as ryzenadj flags, catalog
// parameters first in catalog order, then unknown keys sorted by name.
func (c *Controller) Flags() []ryzenadj.Flag {
	edits := c.Edits()

	keys := make([]string, 0, len(edits))
	for k, v := range edits {
		if k == "" || v == "" {
			continue
		}
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		pi, pj := params.Position(keys[i]), params.Position(keys[j])
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	flags := make([]ryzenadj.Flag, len(keys))
	for i, k := range keys {
		flags[i] = ryzenadj.Flag{Key: k, Value: edits[k]}
	}

	return flags
}

// ValidateExecutable checks that path names an existing regular file,
// either directly or, for a bare name, on PATH.
func ValidateExecutable(path string) error {
	errFactory := errors.New()
	invalid := errFactory.WithMessage(errors.ErrInvalidConfig, "Invalid RyzenAdj path: "+path)

	if path == "" {
		return invalid
	}

	info, err := os.Stat(path)
	if err == nil {
		if !info.Mode().IsRegular() {
			return invalid
		}
		return nil
	}

	if filepath.Base(path) == path {
		if _, lookErr := exec.LookPath(path); lookErr == nil {
			return nil
		}
	}

	return invalid
}
