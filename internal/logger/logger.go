package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/ryzenctl/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// Options controls where and how much the process logs.
type Options struct {
	Debug     bool
	Verbose   bool
	Level     string
	IsService bool
	// Output overrides stderr. The TUI points this at a file so log lines
	// do not tear the alternate screen.
	Output io.Writer
}

// Init initializes the logger based on the given configuration
func Init(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    opts.Output != nil,
	}

	if opts.IsService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(WarnLevel)

	if level, err := ParseLevel(opts.Level); err == nil && opts.Level != "" {
		SetLogLevel(level)
	}

	if opts.Debug {
		SetLogLevel(DebugLevel)
	} else if opts.Verbose {
		SetLogLevel(InfoLevel)
	}
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// ParseLevel maps a configured level name to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, name)
	}
}

// IsService checks if the application is running without a terminal,
// e.g. under systemd or the Windows task scheduler.
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}

	return os.Getppid() == 1 && syscall.Getpid() != 1
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{log.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// Default returns a Logger backed by the package-level logger set up by
// Init.
func Default() Logger {
	return globalLogger{}
}

type globalLogger struct{}

func (globalLogger) Debug() *LogEvent { return Debug() }
func (globalLogger) Info() *LogEvent  { return Info() }
func (globalLogger) Warn() *LogEvent  { return Warn() }
func (globalLogger) Error() *LogEvent { return Error() }

func (globalLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return ErrorWithCode(err)
}

// With binds to the logger configured by the most recent Init.
func (globalLogger) With(component string) Logger {
	return &writerLogger{zl: log.With().Str("component", component).Logger()}
}

// New returns a standalone Logger writing JSON lines to w. Tests use it to
// capture output.
func New(w io.Writer) Logger {
	return &writerLogger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &writerLogger{zl: zerolog.Nop()}
}

type writerLogger struct {
	zl zerolog.Logger
}

func (l *writerLogger) Debug() *LogEvent { return &LogEvent{l.zl.Debug()} }
func (l *writerLogger) Info() *LogEvent  { return &LogEvent{l.zl.Info()} }
func (l *writerLogger) Warn() *LogEvent  { return &LogEvent{l.zl.Warn()} }
func (l *writerLogger) Error() *LogEvent { return &LogEvent{l.zl.Error()} }

func (l *writerLogger) With(component string) Logger {
	return &writerLogger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *writerLogger) ErrorWithCode(err errors.Error) *LogEvent {
	return &LogEvent{l.zl.Error().
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}
