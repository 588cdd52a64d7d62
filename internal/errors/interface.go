package errors

// ErrorCode identifies a class of failure. Codes are stable strings so they
// can be logged and matched without depending on message text.
type ErrorCode string

// Error is a coded failure. Two Errors match under Is when their codes are
// equal, whatever their message or data.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
	Is(target error) bool
}

// Factory builds Errors. Each package keeps one as a package-level var.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
