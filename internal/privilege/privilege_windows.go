//go:build windows

package privilege

import (
	"codeberg.org/mutker/ryzenctl/internal/errors"
	"golang.org/x/sys/windows"
)

// IsElevated reports whether the process token is elevated.
func IsElevated() (bool, error) {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token); err != nil {
		return false, errors.New().Wrap(errors.ErrOperationFailed, err)
	}
	defer token.Close()

	return token.IsElevated(), nil
}

// Hint tells the user how to re-run elevated.
func Hint() string {
	return "ryzenadj needs Administrator rights; right-click the terminal and choose 'Run as administrator'"
}
