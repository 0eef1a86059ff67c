package serial

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

var errUnplugged = errors.New("device unplugged")

// fakePort is an in-memory device. The test plays the device through
// deviceOut (what the host reads) and Written (what the host sent).
type fakePort struct {
	name   string
	config Config

	in        *io.PipeReader
	deviceOut *io.PipeWriter

	mu       sync.Mutex
	written  bytes.Buffer
	writeErr error

	closes atomic.Int32
}

func newFakePort(name string, cfg Config) *fakePort {
	r, w := io.Pipe()
	return &fakePort{name: name, config: cfg, in: r, deviceOut: w}
}

func (p *fakePort) Read(buf []byte) (int, error) { return p.in.Read(buf) }

func (p *fakePort) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(data)
}

func (p *fakePort) Close() error {
	if p.closes.Add(1) > 1 {
		return ErrPortClosed
	}
	return p.in.CloseWithError(ErrPortClosed)
}

func (p *fakePort) Name() string       { return p.name }
func (p *fakePort) Config() Config     { return p.config }
func (p *fakePort) Drain() error       { return nil }
func (p *fakePort) FlushInput() error  { return nil }
func (p *fakePort) FlushOutput() error { return nil }

func (p *fakePort) Written() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.String()
}

func (p *fakePort) failWrites(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeErr = err
}

// fakeOpener hands out one fakePort per device name and records every call
type fakeOpener struct {
	mu      sync.Mutex
	ports   map[string]*fakePort
	failing map[string]error
	calls   []string
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{ports: map[string]*fakePort{}, failing: map[string]error{}}
}

func (o *fakeOpener) fail(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failing[name] = err
}

func (o *fakeOpener) Open(name string, cfg Config) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, name)
	if err, ok := o.failing[name]; ok {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	p := newFakePort(name, cfg)
	o.ports[name] = p
	return p, nil
}

func (o *fakeOpener) port(name string) *fakePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ports[name]
}

func (o *fakeOpener) Calls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.calls...)
}

// recordingConsole keeps every console event as a short tagged string
type recordingConsole struct {
	mu     sync.Mutex
	events []string
}

func (c *recordingConsole) add(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, fmt.Sprintf(format, args...))
}

func (c *recordingConsole) Connected(port string, cfg Config) {
	c.add("connected %s %s", port, cfg)
}

func (c *recordingConsole) ConnectionFailed(port string, err error) {
	c.add("failed %s", port)
}

func (c *recordingConsole) Prompt() {}

func (c *recordingConsole) Line(text string) {
	c.add("line %s", text)
}

func (c *recordingConsole) WriteError(err error) {
	c.add("write error")
}

func (c *recordingConsole) ConnectionLost(port string, err error) {
	c.add("lost %s", port)
}

func (c *recordingConsole) Events() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.events...)
}

func (c *recordingConsole) Has(event string) bool {
	for _, e := range c.Events() {
		if e == event {
			return true
		}
	}
	return false
}
