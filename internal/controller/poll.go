package controller

import (
	"context"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
)

// Refresh starts a background poll. It reports false when a poll is
// already in flight or the controller is closed.
func (c *Controller) Refresh() bool {
	return c.startPoll("manual")
}

// Navigate records the page the user switched to and starts a background
// poll.
func (c *Controller) Navigate(page string) bool {
	c.mu.Lock()
	c.page = page
	c.mu.Unlock()

	return c.startPoll("navigate")
}

// PollNow runs a poll on the calling goroutine. It fails with
// ErrResourceBusy when another poll holds the state.
func (c *Controller) PollNow(ctx context.Context) error {
	if !c.beginPoll() {
		return errors.New().WithMessage(errors.ErrResourceBusy, "poll already in progress")
	}

	return c.poll(ctx, "sync")
}

// Due reports whether the auto-refresh interval has elapsed since the last
// poll attempt.
func (c *Controller) Due(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.interval <= 0 {
		return false
	}
	if c.lastAttempt.IsZero() {
		return true
	}

	return now.Sub(c.lastAttempt) >= c.interval
}

// Run polls once immediately and then whenever Due reports true, until ctx
// is done.
func (c *Controller) Run(ctx context.Context) error {
	c.startPoll("startup")

	ticker := time.NewTicker(c.checkEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.ctx.Done():
			return nil
		case <-ticker.C:
			if c.Due(c.now()) {
				c.startPoll("auto")
			}
		}
	}
}

func (c *Controller) beginPoll() bool {
	return c.state.CompareAndSwap(int32(StateIdle), int32(StatePolling)) ||
		c.state.CompareAndSwap(int32(StateError), int32(StatePolling))
}

func (c *Controller) startPoll(trigger string) bool {
	// Add must not race the Wait in Close.
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		return false
	}
	if !c.beginPoll() {
		c.mu.Unlock()
		c.logger.Debug().Str("trigger", trigger).Msg("Poll already in flight, dropping trigger")
		return false
	}
	c.wg.Add(1)
	c.mu.Unlock()

	c.notify()

	go func() {
		defer c.wg.Done()
		_ = c.poll(c.ctx, trigger)
	}()

	return true
}

// poll must only be called after beginPoll succeeded.
func (c *Controller) poll(ctx context.Context, trigger string) error {
	started := c.now()

	c.mu.Lock()
	c.lastAttempt = started
	exe := c.exe
	c.mu.Unlock()

	raw, err := c.runner.DumpTable(ctx, exe)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		c.state.Store(int32(StateError))
		c.notify()

		c.logger.Warn().Err(err).Str("trigger", trigger).Msg("Poll failed")

		return err
	}

	snap := c.parser.Parse(raw).Stamp(c.newID(), c.now())
	c.snapshot.Store(snap)

	c.mu.Lock()
	c.lastPoll = snap.CapturedAt()
	c.lastErr = nil
	c.mu.Unlock()
	c.state.Store(int32(StateIdle))
	c.notify()

	c.logger.Debug().
		Str("trigger", trigger).
		Str("poll_id", snap.ID()).
		Int("records", snap.Len()).
		Dur("took", c.now().Sub(started)).
		Msg("Poll completed")

	for _, r := range c.recorders {
		if err := r.Record(ctx, snap); err != nil {
			c.logger.Warn().Err(err).Str("poll_id", snap.ID()).Msg("Failed to record snapshot")
		}
	}

	return nil
}
