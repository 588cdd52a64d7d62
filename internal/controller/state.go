package controller

import (
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
)

// State is the poll state of the metrics snapshot.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is a point-in-time copy of the controller's observable state.
type Status struct {
	State     State
	Applying  bool
	LastPoll  time.Time
	LastError error
	Page      string
	Interval  time.Duration
	Path      string
}

const (
	// ErrNothingToApply is returned by Apply when no pending edit has a
	// value.
	ErrNothingToApply = errors.ErrorCode("controller_nothing_to_apply")
)

func init() {
	errors.RegisterMessage(ErrNothingToApply, "No pending parameter changes")
}
