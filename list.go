package serial

import (
	"path/filepath"
	"strings"
)

// PortInfo describes a serial port and, for USB adapters, the device behind it
type PortInfo struct {
	Name        string
	Path        string
	Description string

	// USB metadata, empty for on-board UARTs
	VendorID        string
	ProductID       string
	SerialNumber    string
	Manufacturer    string
	Product         string
	InterfaceNumber string
}

// IsUSB reports whether USB metadata was found for the port
func (p *PortInfo) IsUSB() bool {
	return p.VendorID != "" || p.ProductID != ""
}

// MatchKeys returns the strings a port pattern is matched against: the
// device path, its base name and the description with whitespace removed.
func (p *PortInfo) MatchKeys() []string {
	keys := []string{p.Path}
	if p.Name != "" && p.Name != p.Path {
		keys = append(keys, p.Name)
	}
	for _, s := range []string{p.Description, p.Product} {
		if s == "" {
			continue
		}
		keys = append(keys, strings.ToLower(strings.Join(strings.Fields(s), "")))
	}
	return keys
}

// Catalog enumerates the serial devices currently exposed by the host
type Catalog interface {
	ListPorts() ([]string, error)
}

// CatalogFunc adapts a plain function to the Catalog interface
type CatalogFunc func() ([]string, error)

func (f CatalogFunc) ListPorts() ([]string, error) {
	return f()
}

// SystemCatalog lists the host's serial devices
var SystemCatalog Catalog = CatalogFunc(ListPorts)

// PortDescriber looks up the details of one port. Describers built by
// newPortDescriber reuse a single platform enumeration for every lookup.
type PortDescriber func(name string) (*PortInfo, error)

// basicPortInfo is what is known about a port without platform metadata
func basicPortInfo(name string) *PortInfo {
	return &PortInfo{
		Name:        filepath.Base(name),
		Path:        name,
		Description: getPortDescription(name),
	}
}

// describePort never fails: a port whose lookup fails keeps its bare name
func describePort(describe PortDescriber, name string) *PortInfo {
	info, err := describe(name)
	if err != nil {
		return basicPortInfo(name)
	}
	return info
}

// ListPortInfo returns details for every catalog entry in catalog order, so
// the position of an entry is the index ResolveByIndex accepts. Entries
// whose lookup fails are kept with their bare name.
func ListPortInfo(c Catalog) ([]PortInfo, error) {
	ports, err := c.ListPorts()
	if err != nil {
		return nil, err
	}

	describe := newPortDescriber()
	infos := make([]PortInfo, 0, len(ports))
	for _, p := range ports {
		infos = append(infos, *describePort(describe, p))
	}
	return infos, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	name = filepath.Base(name)
	switch {
	case strings.HasPrefix(name, "ttyUSB"), strings.HasPrefix(name, "tty.usbserial"), strings.HasPrefix(name, "cu.usbserial"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"), strings.HasPrefix(name, "tty.usbmodem"), strings.HasPrefix(name, "cu.usbmodem"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(strings.ToUpper(name), "COM"):
		return "Communications Port"
	default:
		return "Serial Port"
	}
}
