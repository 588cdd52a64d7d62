package ryzenadj

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"codeberg.org/mutker/ryzenctl/internal/logger"
)

const (
	// DumpTableFlag makes ryzenadj print every readable register as a
	// flat text table.
	DumpTableFlag = "--dump-table"

	DefaultTimeout = 10 * time.Second

	// waitDelay bounds how long Wait may block on the child's pipes after
	// the process has been killed.
	waitDelay = 2 * time.Second
)

// elevationHints are lowercase fragments of OS or ryzenadj messages that
// mean the tool lacked the privileges to reach the SMU.
var elevationHints = []string{
	"permission",
	"access is denied",
	"access denied",
	"not permitted",
}

// Adapter is the Runner that shells out to the real executable.
type Adapter struct {
	timeout time.Duration
	logger  logger.Logger
}

// New returns an Adapter whose invocations are killed after timeout. A
// zero timeout uses DefaultTimeout; a negative one disables the bound.
func New(timeout time.Duration, log logger.Logger) *Adapter {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Adapter{timeout: timeout, logger: log.With("ryzenadj")}
}

func (a *Adapter) DumpTable(ctx context.Context, exe string) (string, error) {
	return a.run(ctx, exe, []string{DumpTableFlag})
}

func (a *Adapter) ApplyParameters(ctx context.Context, exe string, flags []Flag) error {
	args := Args(flags)
	_, err := a.run(ctx, exe, args)

	return err
}

func (a *Adapter) run(ctx context.Context, exe string, args []string) (string, error) {
	errFactory := errors.New()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	a.logger.Debug().Str("exe", exe).Strs("args", args).Msg("Running ryzenadj")
	started := time.Now()

	if err := cmd.Start(); err != nil {
		if ctxErr := a.contextError(ctx); ctxErr != nil {
			return "", ctxErr
		}
		return "", errFactory.Wrap(ErrLaunchFailed, err)
	}

	err := cmd.Wait()
	elapsed := time.Since(started)

	if err == nil {
		a.logger.Debug().
			Dur("elapsed", elapsed).
			Int("stdout_bytes", stdout.Len()).
			Msg("ryzenadj finished")
		return stdout.String(), nil
	}

	if ctxErr := a.contextError(ctx); ctxErr != nil {
		return "", ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("ryzenadj exited with status %d", exitErr.ExitCode())
		}
		a.logger.Debug().
			Int("exit_code", exitErr.ExitCode()).
			Dur("elapsed", elapsed).
			Msg("ryzenadj returned an error")

		return "", errFactory.WithMessage(ErrToolFailed, msg)
	}

	return "", errFactory.Wrap(ErrLaunchFailed, err)
}

// contextError maps an expired or cancelled ctx to Timeout or
// OperationFailed, and returns nil while ctx is live.
func (a *Adapter) contextError(ctx context.Context) error {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return errors.New().WithData(ErrTimeout, a.timeout.String())
	case context.Canceled:
		return errors.New().Wrap(errors.ErrOperationFailed, ctx.Err())
	}

	return nil
}

// NeedsElevation reports whether err looks like a privilege problem, in
// which case the user should re-run elevated.
func NeedsElevation(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range elevationHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}

	return false
}
