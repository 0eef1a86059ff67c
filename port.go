package serial

import "io"

// Port represents an open serial port.
//
// Read and Write may be called from different goroutines. Close unblocks a
// pending Read, which then returns ErrPortClosed.
type Port interface {
	io.ReadWriteCloser

	// Name returns the device path the port was opened with
	Name() string
	// Config returns the line settings applied at open
	Config() Config

	Drain() error
	FlushInput() error
	FlushOutput() error
}

// OpenFunc opens a device with a complete configuration. Probe and Session
// take one so tests can substitute fake devices.
type OpenFunc func(device string, cfg Config) (Port, error)

// Open opens a serial port with the given device path and options
func Open(device string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	return openPort(device, config)
}

// OpenConfig opens a serial port with cfg. It satisfies OpenFunc.
func OpenConfig(device string, cfg Config) (Port, error) {
	return Open(device, WithConfig(cfg))
}
