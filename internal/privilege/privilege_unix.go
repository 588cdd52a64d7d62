//go:build !windows

package privilege

import "golang.org/x/sys/unix"

// IsElevated reports whether the effective user is root.
func IsElevated() (bool, error) {
	return unix.Geteuid() == 0, nil
}

// Hint tells the user how to re-run elevated.
func Hint() string {
	return "ryzenadj needs root to access the SMU; re-run with sudo"
}
