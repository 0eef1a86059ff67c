package serial

import (
	"fmt"
	"slices"
	"strings"
)

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

var parityNames = map[Parity]string{
	ParityNone:  "none",
	ParityOdd:   "odd",
	ParityEven:  "even",
	ParityMark:  "mark",
	ParitySpace: "space",
}

func (p Parity) String() string {
	if name, ok := parityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Parity(%d)", int(p))
}

// StopBits represents the number of stop bits
type StopBits int

const (
	StopBitsNone StopBits = iota
	StopBitsOne
	StopBitsOnePointFive
	StopBitsTwo
)

var stopBitsNames = map[StopBits]string{
	StopBitsNone:         "none",
	StopBitsOne:          "one",
	StopBitsOnePointFive: "onepointfive",
	StopBitsTwo:          "two",
}

func (s StopBits) String() string {
	if name, ok := stopBitsNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StopBits(%d)", int(s))
}

// Supported values for the terminal. Anything outside these sets is replaced
// by the matching DefaultConfig value in Sanitize.
var (
	SupportedBaudRates = []int{
		110, 300, 600, 1200, 2400, 4800, 9600, 14400, 19200, 28800, 38400,
		56000, 57600, 115200, 128000, 153600, 230400, 256000, 460800, 921600,
	}
	SupportedDataBits = []int{5, 7, 8}
)

// Config holds the configuration for a serial port
type Config struct {
	BaudRate int
	DataBits int
	StopBits StopBits
	Parity   Parity
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns 115200 8N1, the settings a Bus Pirate expects.
func DefaultConfig() Config {
	return Config{
		BaudRate: 115200,
		DataBits: 8,
		StopBits: StopBitsOne,
		Parity:   ParityNone,
	}
}

// Sanitize returns a copy of c with every unsupported value replaced by its
// default. It never fails.
func (c Config) Sanitize() Config {
	def := DefaultConfig()
	if !slices.Contains(SupportedBaudRates, c.BaudRate) {
		c.BaudRate = def.BaudRate
	}
	if !slices.Contains(SupportedDataBits, c.DataBits) {
		c.DataBits = def.DataBits
	}
	if _, ok := parityNames[c.Parity]; !ok {
		c.Parity = def.Parity
	}
	if _, ok := stopBitsNames[c.StopBits]; !ok {
		c.StopBits = def.StopBits
	}
	return c
}

// String formats the config as "115200 8N1".
func (c Config) String() string {
	parity := strings.ToUpper(c.Parity.String()[:1])
	stop := map[StopBits]string{
		StopBitsNone:         "0",
		StopBitsOne:          "1",
		StopBitsOnePointFive: "1.5",
		StopBitsTwo:          "2",
	}[c.StopBits]
	return fmt.Sprintf("%d %d%s%s", c.BaudRate, c.DataBits, parity, stop)
}

// ParseParity maps a parity name to its value, falling back to ParityNone
// for unknown names.
func ParseParity(name string) Parity {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range parityNames {
		if n == name {
			return p
		}
	}
	return DefaultConfig().Parity
}

// ParseStopBits maps a stop bits name ("one", "1.5", "2", ...) to its value,
// falling back to StopBitsOne for unknown names.
func ParseStopBits(name string) StopBits {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "0":
		return StopBitsNone
	case "one", "1":
		return StopBitsOne
	case "onepointfive", "1.5":
		return StopBitsOnePointFive
	case "two", "2":
		return StopBitsTwo
	default:
		return DefaultConfig().StopBits
	}
}

// WithConfig replaces the whole configuration
func WithConfig(cfg Config) Option {
	return func(c *Config) error {
		*c = cfg
		return nil
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		if _, ok := stopBitsNames[bits]; !ok {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if _, ok := parityNames[parity]; !ok {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}
