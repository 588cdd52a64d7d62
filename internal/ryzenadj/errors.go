package ryzenadj

import "codeberg.org/mutker/ryzenctl/internal/errors"

const (
	// ErrLaunchFailed means the executable could not be started at all:
	// missing file, not executable, or denied by the OS.
	ErrLaunchFailed = errors.ErrorCode("ryzenadj_launch_failed")
	// ErrToolFailed means ryzenadj ran and exited non-zero.
	ErrToolFailed = errors.ErrorCode("ryzenadj_tool_failed")
	// ErrTimeout means ryzenadj did not exit within the configured timeout
	// and was killed.
	ErrTimeout = errors.ErrorCode("ryzenadj_timeout")
)

func init() {
	errors.RegisterMessage(ErrLaunchFailed, "Cannot launch ryzenadj")
	errors.RegisterMessage(ErrToolFailed, "ryzenadj failed")
	errors.RegisterMessage(ErrTimeout, "ryzenadj timed out")
}
