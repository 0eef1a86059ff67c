package serial

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPatterns select the first USB serial adapter or numbered COM port
var DefaultPatterns = []string{"usbserial", `COM\d`}

// PortRequest is a loosely specified port selection. The first populated
// field in the order Name, Index, Patterns, RangePrefix decides the method.
type PortRequest struct {
	Name        string
	Index       int
	Patterns    []string
	RangePrefix string
	RangeStart  int
	RangeEnd    int
}

// Prober reports whether a device can currently be opened with cfg
type Prober interface {
	IsAvailable(name string, cfg Config) bool
}

// Resolver turns a PortRequest into a concrete device name
type Resolver struct {
	catalog  Catalog
	probe    Prober
	config   Config
	// describer is called once per pattern search
	describer func() PortDescriber
	logger    *slog.Logger

	onMatch       func(port, pattern string)
	onUnavailable func(port string)

	// VerifyIndex makes ResolveByIndex probe the selected port
	VerifyIndex bool
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger for resolution steps
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithVerifyIndex enables probing of index selections
func WithVerifyIndex(verify bool) ResolverOption {
	return func(r *Resolver) {
		r.VerifyIndex = verify
	}
}

// WithMatchHandler is called when a pattern selects a port
func WithMatchHandler(fn func(port, pattern string)) ResolverOption {
	return func(r *Resolver) {
		r.onMatch = fn
	}
}

// WithUnavailableHandler is called for every candidate that fails its probe
func WithUnavailableHandler(fn func(port string)) ResolverOption {
	return func(r *Resolver) {
		r.onUnavailable = fn
	}
}

// NewResolver returns a resolver probing candidates with cfg
func NewResolver(catalog Catalog, probe Prober, cfg Config, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog:       catalog,
		probe:         probe,
		config:        cfg,
		describer:     newPortDescriber,
		logger:        discardLogger(),
		onMatch:       func(string, string) {},
		onUnavailable: func(string) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve picks a port: an explicit name (probed), else a 1-based catalog
// index (any non-zero Index), else the first pattern match, else a range scan. A failed pattern
// search falls back to the range scan when a prefix is set.
func (r *Resolver) Resolve(req PortRequest) (string, error) {
	switch {
	case req.Name != "":
		if !r.available(req.Name) {
			return "", fmt.Errorf("%w: %s", ErrPortUnavailable, req.Name)
		}
		return req.Name, nil
	case req.Index != 0:
		return r.ResolveByIndex(req.Index)
	}

	if len(req.Patterns) > 0 {
		name, err := r.ResolveByPattern(req.Patterns)
		if err == nil || req.RangePrefix == "" {
			return name, err
		}
		r.logger.Debug("pattern search failed, scanning range", "prefix", req.RangePrefix)
	}

	if req.RangePrefix != "" {
		return r.ResolveByRangeScan(req.RangePrefix, req.RangeStart, req.RangeEnd)
	}
	return "", ErrPortNotFound
}

// ResolveByIndex returns the port at the 1-based position in the catalog
func (r *Resolver) ResolveByIndex(index int) (string, error) {
	ports, err := r.catalog.ListPorts()
	if err != nil {
		return "", fmt.Errorf("listing ports: %w", err)
	}
	if index < 1 || index > len(ports) {
		return "", fmt.Errorf("%w: index %d of %d ports", ErrPortNotFound, index, len(ports))
	}

	name := ports[index-1]
	r.logger.Debug("resolved port by index", "index", index, "port", name)
	if r.VerifyIndex && !r.available(name) {
		return "", fmt.Errorf("%w: %s", ErrPortUnavailable, name)
	}
	return name, nil
}

// ResolveByPattern returns the first catalog entry matching any pattern that
// also passes the probe. Catalog order wins over pattern order.
func (r *Resolver) ResolveByPattern(patterns []string) (string, error) {
	ports, err := r.catalog.ListPorts()
	if err != nil {
		return "", fmt.Errorf("listing ports: %w", err)
	}

	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = compilePattern(p)
	}

	describe := r.describer()
	for _, name := range ports {
		keys := describePort(describe, name).MatchKeys()
		for i, re := range compiled {
			if !matchAny(re, keys) {
				continue
			}
			if !r.available(name) {
				// a busy match does not stop the search
				break
			}
			r.logger.Debug("resolved port by pattern", "pattern", patterns[i], "port", name)
			r.onMatch(name, patterns[i])
			return name, nil
		}
	}

	return "", fmt.Errorf("%w: patterns %s", ErrPortNotFound, strings.Join(patterns, ", "))
}

// ResolveByRangeScan probes prefix+start .. prefix+end in ascending order
func (r *Resolver) ResolveByRangeScan(prefix string, start, end int) (string, error) {
	for n := start; n <= end; n++ {
		name := prefix + strconv.Itoa(n)
		if r.available(name) {
			r.logger.Debug("resolved port by range scan", "port", name)
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s%d-%s%d", ErrPortNotFound, prefix, start, prefix, end)
}

func (r *Resolver) available(name string) bool {
	if r.probe.IsAvailable(name, r.config) {
		return true
	}
	r.logger.Debug("port unavailable", "port", name)
	r.onUnavailable(name)
	return false
}

// compilePattern builds a case-insensitive matcher; text that is not a valid
// expression is matched literally.
func compilePattern(pattern string) *regexp.Regexp {
	if re, err := regexp.Compile("(?i)" + pattern); err == nil {
		return re
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
}

func matchAny(re *regexp.Regexp, keys []string) bool {
	for _, k := range keys {
		if re.MatchString(k) {
			return true
		}
	}
	return false
}
