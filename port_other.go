//go:build !linux

package serial

import (
	"errors"
	"fmt"
	"sync"

	bugst "go.bug.st/serial"
)

// port wraps a go.bug.st/serial port on platforms without the termios backend
type port struct {
	mu     sync.RWMutex
	name   string
	sp     bugst.Port
	config Config
	closed bool
}

var _ Port = (*port)(nil)

func openPort(device string, config Config) (Port, error) {
	mode, err := toMode(config)
	if err != nil {
		return nil, err
	}

	sp, err := bugst.Open(device, mode)
	if err != nil {
		return nil, openError(device, err)
	}

	return &port{
		name:   device,
		sp:     sp,
		config: config,
	}, nil
}

func toMode(config Config) (*bugst.Mode, error) {
	if config.BaudRate <= 0 {
		return nil, ErrInvalidBaudRate
	}
	if config.DataBits < 5 || config.DataBits > 8 {
		return nil, fmt.Errorf("%w: %d data bits", ErrInvalidConfig, config.DataBits)
	}

	mode := &bugst.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
	}

	switch config.Parity {
	case ParityNone:
		mode.Parity = bugst.NoParity
	case ParityOdd:
		mode.Parity = bugst.OddParity
	case ParityEven:
		mode.Parity = bugst.EvenParity
	case ParityMark:
		mode.Parity = bugst.MarkParity
	case ParitySpace:
		mode.Parity = bugst.SpaceParity
	default:
		return nil, fmt.Errorf("%w: parity %s", ErrInvalidConfig, config.Parity)
	}

	switch config.StopBits {
	case StopBitsOne:
		mode.StopBits = bugst.OneStopBit
	case StopBitsOnePointFive:
		mode.StopBits = bugst.OnePointFiveStopBits
	case StopBitsTwo:
		mode.StopBits = bugst.TwoStopBits
	default:
		return nil, fmt.Errorf("%w: stop bits %s", ErrInvalidConfig, config.StopBits)
	}

	return mode, nil
}

// openError maps go.bug.st/serial error codes onto the package sentinels
func openError(device string, err error) error {
	code, ok := portErrorCode(err)
	if !ok {
		return fmt.Errorf("failed to open %s: %w", device, err)
	}

	var sentinel error
	switch code {
	case bugst.PortNotFound:
		sentinel = ErrDeviceNotFound
	case bugst.PermissionDenied:
		sentinel = ErrPermissionDenied
	case bugst.PortBusy:
		sentinel = ErrDeviceInUse
	case bugst.InvalidSpeed:
		sentinel = ErrInvalidBaudRate
	case bugst.InvalidDataBits, bugst.InvalidParity, bugst.InvalidStopBits:
		sentinel = ErrInvalidConfig
	default:
		return fmt.Errorf("failed to open %s: %w", device, err)
	}
	return fmt.Errorf("failed to open %s: %w (%v)", device, sentinel, err)
}

func portErrorCode(err error) (bugst.PortErrorCode, bool) {
	var ptr *bugst.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code(), true
	}
	var val bugst.PortError
	if errors.As(err, &val) {
		return val.Code(), true
	}
	return 0, false
}

func (p *port) Name() string {
	return p.name
}

func (p *port) Config() Config {
	return p.config
}

// Close closes the serial port; the backend unblocks a pending Read
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}
	p.closed = true
	return p.sp.Close()
}

func (p *port) isClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Read reads data from the serial port
func (p *port) Read(buf []byte) (int, error) {
	if p.isClosed() {
		return 0, ErrPortClosed
	}

	n, err := p.sp.Read(buf)
	if err != nil && p.isClosed() {
		return 0, ErrPortClosed
	}
	return n, err
}

// Write writes data to the serial port
func (p *port) Write(data []byte) (int, error) {
	if p.isClosed() {
		return 0, ErrPortClosed
	}
	return p.sp.Write(data)
}

// Drain waits until all output written to the port has been transmitted
func (p *port) Drain() error {
	if p.isClosed() {
		return ErrPortClosed
	}
	return p.sp.Drain()
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	if p.isClosed() {
		return ErrPortClosed
	}
	return p.sp.ResetInputBuffer()
}

// FlushOutput discards any unwritten output data
func (p *port) FlushOutput() error {
	if p.isClosed() {
		return ErrPortClosed
	}
	return p.sp.ResetOutputBuffer()
}
