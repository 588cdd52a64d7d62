package logger

import "codeberg.org/mutker/ryzenctl/internal/errors"

// Logger is what components receive instead of the package-level
// functions, so tests can capture or drop output.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	ErrorWithCode(err errors.Error) *LogEvent
	// With returns a Logger that tags every event with component.
	With(component string) Logger
}
