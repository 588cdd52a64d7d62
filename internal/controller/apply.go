package controller

import (
	"context"

	"codeberg.org/mutker/ryzenctl/internal/errors"
)

// Apply sends the pending edits to ryzenadj. The executable path is checked
// first and nothing is spawned when it is invalid. A second Apply while one
// is running fails with ErrResourceBusy. On success a fresh poll is
// started unless WithoutApplyPoll was given. On failure the pending edits
// and the snapshot are left as they were.
func (c *Controller) Apply(ctx context.Context) error {
	exe := c.ExecutablePath()
	if err := ValidateExecutable(exe); err != nil {
		c.setError(err)
		return err
	}

	if !c.applying.CompareAndSwap(false, true) {
		return errors.New().WithMessage(errors.ErrResourceBusy, "apply already in progress")
	}
	defer c.applying.Store(false)

	flags := c.Flags()
	if len(flags) == 0 {
		c.logger.Debug().Msg("No pending edits to apply")
		return errors.New().New(ErrNothingToApply)
	}

	c.notify()

	if err := c.runner.ApplyParameters(ctx, exe, flags); err != nil {
		c.setError(err)
		c.logger.Warn().Err(err).Int("flags", len(flags)).Msg("Apply failed")
		return err
	}

	c.logger.Info().Int("flags", len(flags)).Msg("Applied parameters")
	if c.applyPoll {
		c.startPoll("apply")
	}

	return nil
}
