package serial

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// State is the lifecycle state of a Session
type State int

const (
	StateClosed State = iota
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Console receives everything a session shows to the user. Implementations
// must be safe for use from two goroutines.
type Console interface {
	Connected(port string, cfg Config)
	ConnectionFailed(port string, err error)
	Prompt()
	Line(text string)
	WriteError(err error)
	ConnectionLost(port string, err error)
}

const (
	DefaultLineEnding  = "\n"
	DefaultQuitCommand = "quit"

	lineBuffer = 64
)

// Session owns one serial connection and relays lines between it and a
// console. A Session is single use: Closed, Open, Closing, Closed.
type Session struct {
	name    string
	config  Config
	console Console
	open    OpenFunc
	logger  *slog.Logger
	eol     string
	quit    string

	mu      sync.Mutex
	port    Port
	state   State
	used    bool
	started bool
	readErr error

	lines   chan string
	done    chan struct{}
	closing chan struct{}
}

// SessionOption configures a Session
type SessionOption func(*Session)

// WithOpener replaces the function used to open the device
func WithOpener(open OpenFunc) SessionOption {
	return func(s *Session) {
		s.open = open
	}
}

// WithLogger sets the logger for lifecycle events
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLineEnding sets the terminator appended to every line sent
func WithLineEnding(eol string) SessionOption {
	return func(s *Session) {
		s.eol = eol
	}
}

// WithQuitCommand sets the console command that ends Run
func WithQuitCommand(cmd string) SessionOption {
	return func(s *Session) {
		s.quit = cmd
	}
}

// NewSession prepares a session for port name. Nothing is opened until Open.
func NewSession(name string, cfg Config, console Console, opts ...SessionOption) *Session {
	s := &Session{
		name:    name,
		config:  cfg,
		console: console,
		open:    OpenConfig,
		logger:  discardLogger(),
		eol:     DefaultLineEnding,
		quit:    DefaultQuitCommand,
		lines:   make(chan string, lineBuffer),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the port name the session was created for
func (s *Session) Name() string {
	return s.name
}

// Config returns the line settings the session opens the port with
func (s *Session) Config() Config {
	return s.config
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open opens the port with the session's exact configuration. A failure is
// reported to the console and returned wrapped in ErrOpenFailure; the session
// then stays closed for good.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.used {
		return ErrSessionUsed
	}
	s.used = true

	port, err := s.open(s.name, s.config)
	if err != nil {
		s.logger.Warn("open failed", "port", s.name, "config", s.config.String(), "error", err)
		s.console.ConnectionFailed(s.name, err)
		return fmt.Errorf("%w: %s: %w", ErrOpenFailure, s.name, err)
	}

	s.port = port
	s.state = StateOpen
	s.logger.Debug("session open", "port", s.name, "config", s.config.String())
	s.console.Connected(s.name, s.config)
	return nil
}

// Start launches the inbound task. Received lines are delivered on Lines
// until the port closes or fails; Done is closed when the task exits.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return ErrSessionNotOpen
	}
	if s.started {
		return nil
	}
	s.started = true

	go s.readLoop(s.port)
	return nil
}

// Lines returns the channel of lines received from the device
func (s *Session) Lines() <-chan string {
	return s.lines
}

// Done is closed once the inbound task has exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the connection loss that ended the inbound task, if any. It
// is nil when the task ended because the session was closed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readErr
}

func (s *Session) readLoop(port Port) {
	defer close(s.done)
	defer close(s.lines)

	r := bufio.NewReader(port)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			select {
			case s.lines <- strings.TrimRight(line, "\r\n"):
			case <-s.closing:
				return
			}
		}
		if err != nil {
			s.mu.Lock()
			if s.state == StateOpen {
				s.readErr = fmt.Errorf("%w: %w", ErrConnectionLost, err)
				s.logger.Warn("connection lost", "port", s.name, "error", err)
			}
			s.mu.Unlock()
			return
		}
	}
}

// Send writes text followed by the line ending to the device
func (s *Session) Send(text string) error {
	_, err := s.Write([]byte(text + s.eol))
	return err
}

// Write sends raw bytes to the device without a line ending
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	port, state := s.port, s.state
	s.mu.Unlock()

	if state != StateOpen {
		return 0, ErrSessionNotOpen
	}
	n, err := port.Write(data)
	if err != nil {
		return n, fmt.Errorf("write to %s: %w", s.name, err)
	}
	return n, nil
}

// Close closes the port, waits for the inbound task and leaves the session
// closed. Only the first call closes the port; later calls return nil.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state != StateOpen {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosing
	port, started := s.port, s.started
	s.mu.Unlock()

	s.logger.Debug("session closing", "port", s.name)
	close(s.closing)
	err := port.Close()
	if started {
		<-s.done
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()

	s.logger.Debug("session closed", "port", s.name)
	return err
}

type consoleInput struct {
	text string
	err  error
}

// Run relays console lines from in to the device and device lines to the
// console until the quit command, EOF on in, or ctx is done. The port is
// closed on every exit path. A connection loss is reported but does not end
// the loop; the user still quits explicitly.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	if err := s.Start(); err != nil {
		return err
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for line := range s.lines {
			s.console.Line(line)
		}
		if err := s.Err(); err != nil {
			s.console.ConnectionLost(s.name, err)
		}
	}()

	stop := make(chan struct{})
	inputs := make(chan consoleInput)
	go scanConsole(in, inputs, stop)

	err := s.relay(ctx, inputs)
	close(stop)

	if cerr := s.Close(); cerr != nil {
		s.logger.Warn("close failed", "port", s.name, "error", cerr)
	}
	<-writerDone
	return err
}

func (s *Session) relay(ctx context.Context, inputs <-chan consoleInput) error {
	for {
		s.console.Prompt()

		var in consoleInput
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in = <-inputs:
		}

		if in.err != nil {
			if in.err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading console: %w", in.err)
		}

		if strings.EqualFold(strings.TrimSpace(in.text), s.quit) {
			s.logger.Debug("quit requested", "port", s.name)
			return nil
		}

		if err := s.Send(in.text); err != nil {
			s.logger.Warn("write failed", "port", s.name, "error", err)
			s.console.WriteError(err)
		}
	}
}

// scanConsole feeds console lines to out, ending with io.EOF or the read
// error. It gives up as soon as stop is closed.
func scanConsole(in io.Reader, out chan<- consoleInput, stop <-chan struct{}) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case out <- consoleInput{text: scanner.Text()}:
		case <-stop:
			return
		}
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}
	select {
	case out <- consoleInput{err: err}:
	case <-stop:
	}
}
