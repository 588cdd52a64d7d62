// Package privilege reports whether the process runs with the rights
// ryzenadj needs to reach the SMU.
package privilege

import "codeberg.org/mutker/ryzenctl/internal/errors"

const ErrNotElevated = errors.ErrorCode("privilege_not_elevated")

func init() {
	errors.RegisterMessage(ErrNotElevated, "ryzenadj needs elevated privileges")
}

// Check returns ErrNotElevated, carrying a platform hint, when the process
// is not elevated. A failure to determine elevation is returned as is.
func Check() error {
	elevated, err := IsElevated()
	if err != nil {
		return err
	}
	if !elevated {
		return errors.New().WithMessage(ErrNotElevated, Hint())
	}

	return nil
}
