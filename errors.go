package serial

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid serial configuration")
	ErrPortClosed       = errors.New("serial port is closed")

	// Port resolution errors
	ErrPortNotFound    = errors.New("no matching serial port found")
	ErrPortUnavailable = errors.New("serial port not available")

	// Session errors
	ErrOpenFailure    = errors.New("connection not established")
	ErrConnectionLost = errors.New("connection lost")
	ErrSessionNotOpen = errors.New("session is not open")
	ErrSessionUsed    = errors.New("session already used")
)
