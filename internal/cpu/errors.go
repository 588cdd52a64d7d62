package cpu

import "codeberg.org/mutker/ryzenctl/internal/errors"

const (
	ErrSampleFailed = errors.ErrorCode("cpu_sample_failed")
	ErrNoSample     = errors.ErrorCode("cpu_no_sample")
)

func init() {
	errors.RegisterMessage(ErrSampleFailed, "Failed to read CPU usage")
	errors.RegisterMessage(ErrNoSample, "CPU usage source returned no value")
}
