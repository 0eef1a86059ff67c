package serial

import "log/slog"

// Probe checks whether a device can be opened with a given configuration.
// Every check uses its own short-lived handle which is released before
// IsAvailable returns.
type Probe struct {
	open   OpenFunc
	logger *slog.Logger
}

// ProbeOption configures a Probe
type ProbeOption func(*Probe)

// WithProbeOpener replaces the function used to open devices
func WithProbeOpener(open OpenFunc) ProbeOption {
	return func(p *Probe) {
		p.open = open
	}
}

// WithProbeLogger sets the logger for probe outcomes
func WithProbeLogger(logger *slog.Logger) ProbeOption {
	return func(p *Probe) {
		p.logger = logger
	}
}

// NewProbe returns a probe that opens real devices unless overridden
func NewProbe(opts ...ProbeOption) *Probe {
	p := &Probe{
		open:   OpenConfig,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsAvailable opens name with cfg and closes it again. Any failure,
// whatever its cause, yields false.
func (p *Probe) IsAvailable(name string, cfg Config) bool {
	port, err := p.open(name, cfg)
	if err != nil {
		p.logger.Debug("probe failed", "port", name, "config", cfg.String(), "error", err)
		return false
	}
	defer func() {
		if err := port.Close(); err != nil {
			p.logger.Warn("probe close failed", "port", name, "error", err)
		}
	}()

	p.logger.Debug("probe succeeded", "port", name, "config", cfg.String())
	return true
}

// IsAvailable probes name with the host's device opener
func IsAvailable(name string, cfg Config) bool {
	return NewProbe().IsAvailable(name, cfg)
}
