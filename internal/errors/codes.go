package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrUnavailable     ErrorCode = "service_unavailable"

	// Configuration errors
	ErrInvalidConfig          ErrorCode = "invalid_configuration"
	ErrBindFlags              ErrorCode = "bind_flags_failed"
	ErrReadConfig             ErrorCode = "read_config_failed"
	ErrInvalidInterval        ErrorCode = "invalid_interval"
	ErrInvalidTelemetrySource ErrorCode = "invalid_telemetry_source"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Overlay record errors
	ErrConfigLoad ErrorCode = "config_load_failed"
	ErrConfigSave ErrorCode = "config_save_failed"

	// Process errors
	ErrLaunch      ErrorCode = "overlay_launch_failed"
	ErrTermination ErrorCode = "overlay_termination_failed"

	// Operation errors
	ErrOperationFailed ErrorCode = "operation_failed"
	ErrTimeout         ErrorCode = "operation_timeout"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:               "Internal error occurred",
	ErrInvalidArgument:        "Invalid argument provided",
	ErrUnavailable:            "Service unavailable",
	ErrInvalidConfig:          "Invalid configuration",
	ErrBindFlags:              "Failed to bind flags",
	ErrReadConfig:             "Failed to read config file",
	ErrInvalidInterval:        "Invalid interval value",
	ErrInvalidTelemetrySource: "Invalid telemetry source",
	ErrInvalidLogLevel:        "Invalid log level",
	ErrInitFailed:             "Initialization failed",
	ErrShutdownFailed:         "Shutdown failed",
	ErrAlreadyRunning:         "Another instance is already running",
	ErrConfigLoad:             "Failed to load overlay configuration",
	ErrConfigSave:             "Failed to save overlay configuration",
	ErrLaunch:                 "Failed to launch overlay",
	ErrTermination:            "Failed to terminate overlay",
	ErrOperationFailed:        "Operation failed",
	ErrTimeout:                "Operation timed out",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
