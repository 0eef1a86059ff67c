//go:build linux

package serial

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Overridden in tests
var (
	devDir    = "/dev"
	sysfsRoot = "/sys"
)

var (
	serialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
		regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
		regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
		regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
		regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
		regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
		regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
		regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
	}

	excludePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^tty\d+$`), // Virtual terminals
		regexp.MustCompile(`^console$`),
		regexp.MustCompile(`^ptmx$`),
		regexp.MustCompile(`^pty.*$`),
		regexp.MustCompile(`^pts/.*$`),
	}
)

// ListPorts returns the serial-capable character devices under /dev, sorted.
// Virtual terminals and pseudo-terminals are excluded.
func ListPorts() ([]string, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		if !isSerialName(name) {
			continue
		}

		fullPath := filepath.Join(devDir, name)
		if isCharacterDevice(fullPath) {
			ports = append(ports, fullPath)
		}
	}

	sort.Strings(ports)
	return ports, nil
}

// isSerialName reports whether a /dev entry name looks like a serial port
func isSerialName(name string) bool {
	for _, p := range excludePatterns {
		if p.MatchString(name) {
			return false
		}
	}
	for _, p := range serialPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// sysfs lookups are per port, so there is nothing to share between them
func newPortDescriber() PortDescriber {
	return GetPortInfo
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: getPortDescription(name),
	}

	if strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM") {
		enrichUSBInfo(info)
	}

	return info, nil
}

// enrichUSBInfo fills the USB fields from sysfs. /sys/class/tty/<name>/device
// points at the tty node (ttyUSB) or at the USB interface itself (ttyACM);
// the interface holds bInterfaceNumber and its parent the idVendor files.
func enrichUSBInfo(info *PortInfo) {
	link := filepath.Join(sysfsRoot, "class", "tty", info.Name, "device")
	dir, err := filepath.EvalSymlinks(link)
	if err != nil {
		return
	}

	iface := findSysfsDir(dir, "bInterfaceNumber")
	if iface == "" {
		return
	}
	info.InterfaceNumber = readSysfsFile(filepath.Join(iface, "bInterfaceNumber"))

	usbDev := findSysfsDir(filepath.Dir(iface), "idVendor")
	if usbDev == "" {
		return
	}
	info.VendorID = readSysfsFile(filepath.Join(usbDev, "idVendor"))
	info.ProductID = readSysfsFile(filepath.Join(usbDev, "idProduct"))
	info.SerialNumber = readSysfsFile(filepath.Join(usbDev, "serial"))
	info.Manufacturer = readSysfsFile(filepath.Join(usbDev, "manufacturer"))
	info.Product = readSysfsFile(filepath.Join(usbDev, "product"))
}

// findSysfsDir walks up from dir, at most three levels, to the first
// directory containing file.
func findSysfsDir(dir, file string) string {
	for range 3 {
		if _, err := os.Stat(filepath.Join(dir, file)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// readSysfsFile returns the trimmed content of a sysfs attribute, or "" if unreadable
func readSysfsFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
