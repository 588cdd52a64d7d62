package telemetry

import "codeberg.org/mutker/ryzenctl/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrorCode("telemetry_invalid_config")

	// Collection Errors
	ErrInvalidSnapshot = errors.ErrorCode("telemetry_invalid_snapshot")

	// Server Errors
	ErrListenFailed    = errors.ErrorCode("telemetry_listen_failed")
	ErrServiceShutdown = errors.ErrorCode("telemetry_service_shutdown_failed")
)

func init() {
	errors.RegisterMessage(ErrInvalidConfig, "Invalid exporter configuration")
	errors.RegisterMessage(ErrInvalidSnapshot, "Snapshot is nil")
	errors.RegisterMessage(ErrListenFailed, "Exporter failed to listen")
	errors.RegisterMessage(ErrServiceShutdown, "Exporter failed to shut down")
}
