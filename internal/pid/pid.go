// Package pid keeps a single headless instance running per machine.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/mutker/ryzenctl/internal/errors"
)

const (
	pidFile = "ryzenctl.pid"
)

// File is a PID file guarding one running instance.
type File struct {
	path string
}

// New returns a PID file at path.
func New(path string) *File {
	return &File{path: path}
}

// Default returns the PID file in the system temp directory.
func Default() *File {
	return New(filepath.Join(os.TempDir(), pidFile))
}

func (f *File) Path() string {
	return f.path
}

// Acquire writes the current process ID to the PID file. It fails with
// ErrAlreadyRunning when the file names a live process other than this
// one. Unreadable or stale files are overwritten.
func (f *File) Acquire() error {
	errFactory := errors.New()

	if owner, ok := f.owner(); ok && owner != os.Getpid() && processAlive(owner) {
		return errFactory.WithData(errors.ErrAlreadyRunning, owner)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Release removes the PID file if this process owns it.
func (f *File) Release() error {
	owner, ok := f.owner()
	if !ok || owner != os.Getpid() {
		return nil
	}

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func (f *File) owner() (int, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	return pid, true
}
