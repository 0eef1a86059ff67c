// Package serial provides serial port access and a line oriented terminal
// session on top of it.
//
// The package is the library half of the serialterm command. It covers
// four concerns:
//
//   - Port: open a device with a complete line configuration (baud rate,
//     data bits, parity, stop bits) in raw mode.
//   - Catalog: enumerate the serial devices of the host, with USB metadata
//     where the platform exposes it.
//   - Probe and Resolver: pick a port by name, by 1-based index, by
//     pattern or by scanning a numbered range, skipping ports that cannot
//     be opened.
//   - Session: relay lines between a console and a device until the user
//     types the quit command, the console ends or the context is cancelled.
//
// # Basic Usage
//
// Open a serial port with the default configuration (115200 8N1):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("m\n"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer)
//
// Closing the port unblocks a pending Read, which returns ErrPortClosed.
//
// # Configuration Options
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(9600),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithStopBits(serial.StopBitsTwo),
//	)
//
// Config.Sanitize replaces values outside SupportedBaudRates and
// SupportedDataBits with their defaults instead of failing.
//
// # Resolving a Port
//
//	resolver := serial.NewResolver(serial.SystemCatalog, serial.NewProbe(), serial.DefaultConfig())
//	name, err := resolver.Resolve(serial.PortRequest{Patterns: serial.DefaultPatterns})
//
// Patterns are case-insensitive regular expressions matched against the
// device path, its base name and its description. The catalog order wins
// over the pattern order.
//
// # Sessions
//
//	session := serial.NewSession(name, cfg, console)
//	if err := session.Open(); err != nil {
//	    return err
//	}
//	err = session.Run(ctx, os.Stdin)
//
// Console receives every user visible event. Interactive front-ends use
// Start, Lines, Send and Close instead of Run.
//
// # Error Handling
//
// Failures wrap package sentinels and are checked with errors.Is:
//
//	if errors.Is(err, serial.ErrPortNotFound) {
//	    // no candidate port could be opened
//	}
//
// # Platform Support
//
// Linux uses termios2 directly, which also allows non-standard baud rates.
// Other platforms use go.bug.st/serial.
package serial
