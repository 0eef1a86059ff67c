//go:build linux

package serial

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sys/unix"
)

// port is the termios implementation of the Port interface
type port struct {
	mu     sync.RWMutex
	name   string
	fd     int
	config Config
	closed bool

	// self-pipe used to wake a Read blocked in poll(2) when the port closes
	pipeR     int
	pipeW     int
	closeOnce sync.Once
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

var standardBaudRates = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

func openPort(device string, config Config) (Port, error) {
	// O_NONBLOCK keeps open from waiting on carrier detect; cleared below
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, openError(device, err)
	}

	if err := unix.IoctlSetInt(fd, unix.TIOCEXCL, 0); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to lock %s: %w", device, err)
	}

	if err := configurePort(fd, config); err != nil {
		releaseExclusive(fd)
		unix.Close(fd)
		return nil, err
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		releaseExclusive(fd)
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set blocking mode: %v", err)
	}

	pipeFds := make([]int, 2)
	if err := unix.Pipe2(pipeFds, unix.O_CLOEXEC); err != nil {
		releaseExclusive(fd)
		unix.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &port{
		name:   device,
		fd:     fd,
		config: config,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
	}, nil
}

// openError maps errno values from open(2) onto the package sentinels
func openError(device string, err error) error {
	var sentinel error
	switch {
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENXIO), errors.Is(err, unix.ENODEV):
		sentinel = ErrDeviceNotFound
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		sentinel = ErrPermissionDenied
	case errors.Is(err, unix.EBUSY):
		sentinel = ErrDeviceInUse
	default:
		return fmt.Errorf("failed to open %s: %w", device, err)
	}
	return fmt.Errorf("failed to open %s: %w (%v)", device, sentinel, err)
}

func releaseExclusive(fd int) {
	_ = unix.IoctlSetInt(fd, unix.TIOCNXCL, 0)
}

// configurePort puts the line in raw mode with the requested framing.
// termios2 is used so rates without a Bxxx constant can be set via BOTHER.
func configurePort(fd int, config Config) error {
	if config.BaudRate <= 0 {
		return ErrInvalidBaudRate
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
	if err != nil {
		return fmt.Errorf("failed to get termios: %v", err)
	}

	termios.Iflag = 0
	termios.Oflag = 0
	termios.Lflag = 0
	termios.Cflag = unix.CREAD | unix.CLOCAL

	// Block until at least one byte arrives; Close wakes the reader instead
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if rate, ok := standardBaudRates[config.BaudRate]; ok {
		termios.Cflag |= rate
	} else {
		termios.Cflag |= unix.BOTHER
	}
	termios.Ispeed = uint32(config.BaudRate)
	termios.Ospeed = uint32(config.BaudRate)

	switch config.DataBits {
	case 5:
		termios.Cflag |= unix.CS5
	case 6:
		termios.Cflag |= unix.CS6
	case 7:
		termios.Cflag |= unix.CS7
	case 8:
		termios.Cflag |= unix.CS8
	default:
		return fmt.Errorf("%w: %d data bits", ErrInvalidConfig, config.DataBits)
	}

	// POSIX has no 1.5 stop bits; with CSTOPB and 5 data bits UARTs send 1.5
	switch config.StopBits {
	case StopBitsOne:
	case StopBitsOnePointFive, StopBitsTwo:
		termios.Cflag |= unix.CSTOPB
	default:
		return fmt.Errorf("%w: stop bits %s", ErrInvalidConfig, config.StopBits)
	}

	switch config.Parity {
	case ParityNone:
	case ParityOdd:
		termios.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		termios.Cflag |= unix.PARENB
	case ParityMark:
		termios.Cflag |= unix.PARENB | unix.CMSPAR | unix.PARODD
	case ParitySpace:
		termios.Cflag |= unix.PARENB | unix.CMSPAR
	default:
		return fmt.Errorf("%w: parity %s", ErrInvalidConfig, config.Parity)
	}

	if err := unix.IoctlSetTermios(fd, unix.TCSETS2, termios); err != nil {
		return fmt.Errorf("failed to set termios: %v", err)
	}
	return nil
}

func (p *port) Name() string {
	return p.name
}

func (p *port) Config() Config {
	return p.config
}

// Close closes the serial port and wakes any pending Read
func (p *port) Close() error {
	err := ErrPortClosed
	p.closeOnce.Do(func() {
		// Wake the reader before taking the write lock it is holding
		unix.Write(p.pipeW, []byte{1})

		p.mu.Lock()
		defer p.mu.Unlock()

		releaseExclusive(p.fd)
		err = unix.Close(p.fd)
		unix.Close(p.pipeR)
		unix.Close(p.pipeW)
		p.closed = true
	})
	return err
}

// Read blocks until data is available, the device hangs up or the port is closed
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for {
		if p.closed {
			return 0, ErrPortClosed
		}

		fds := []unix.PollFd{
			{Fd: int32(p.fd), Events: unix.POLLIN},
			{Fd: int32(p.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return 0, err
		}

		if fds[1].Revents != 0 {
			return 0, ErrPortClosed
		}
		if fds[0].Revents&unix.POLLNVAL != 0 {
			return 0, ErrPortClosed
		}
		if fds[0].Revents == 0 {
			continue
		}

		n, err := unix.Read(p.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return 0, err
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write writes data to the serial port
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPortClosed
	}

	written := 0
	for written < len(data) {
		n, err := unix.Write(p.fd, data[written:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return written, err
		}
		written += n
	}
	return written, nil
}

// Drain waits until all output written to the port has been transmitted
func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
}

// FlushInput discards any unread input data
func (p *port) FlushInput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCIFLUSH)
}

// FlushOutput discards any unwritten output data
func (p *port) FlushOutput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	return unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCOFLUSH)
}
