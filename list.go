package serial

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// serialDevicePattern matches device names that are plausibly serial
// ports: USB adapters, CDC/ACM devices, SoC UARTs and legacy ports.
var serialDevicePattern = regexp.MustCompile(
	`^tty(USB|ACM|AMA|mxc|O|SAC|THS|S)\d+$`,
)

// virtualTerminalPattern excludes virtual consoles and pseudo-terminals.
var virtualTerminalPattern = regexp.MustCompile(
	`^(tty\d+|console|ptmx|pty.*|pts/.*)$`,
)

// ListPorts returns the available serial ports on the system, sorted
// lexicographically. Virtual terminals and pseudo-terminals are
// excluded.
func ListPorts() ([]string, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	var ports []string
	for _, entry := range entries {
		name := entry.Name()
		if virtualTerminalPattern.MatchString(name) {
			continue
		}
		if !serialDevicePattern.MatchString(name) {
			continue
		}
		path := filepath.Join("/dev", name)
		if isCharacterDevice(path) {
			ports = append(ports, path)
		}
	}
	sort.Strings(ports)

	return ports, nil
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// PortInfo describes a discovered serial port. The USB fields are only
// populated for USB-backed devices with readable sysfs metadata.
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	VendorID     string
	ProductID    string
	SerialNumber string
	BusNumber    string
	DeviceNumber string
}

// GetPortInfo returns metadata for a specific port.
func GetPortInfo(portPath string) (*PortInfo, error) {
	if !isCharacterDevice(portPath) {
		return nil, ErrDeviceNotFound
	}

	name := filepath.Base(portPath)
	info := &PortInfo{
		Name:        name,
		Path:        portPath,
		Description: portDescription(name),
	}

	if strings.HasPrefix(name, "ttyUSB") || strings.HasPrefix(name, "ttyACM") {
		enrichUSBInfo(info)
	}

	return info, nil
}

func portDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
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
	default:
		return "Serial Port"
	}
}

// enrichUSBInfo reads USB metadata from sysfs. The tty device node links
// into the USB interface directory; the device descriptor attributes
// (idVendor, idProduct, serial, busnum, devnum) live one or two levels
// up depending on driver layout.
func enrichUSBInfo(info *PortInfo) {
	base, err := filepath.EvalSymlinks(filepath.Join("/sys/class/tty", info.Name, "device"))
	if err != nil {
		return
	}

	// Walk up until a directory carrying a device descriptor is found.
	dir := base
	for i := 0; i < 4; i++ {
		if _, err := os.Stat(filepath.Join(dir, "idVendor")); err == nil {
			info.VendorID = readSysfsAttr(dir, "idVendor")
			info.ProductID = readSysfsAttr(dir, "idProduct")
			info.SerialNumber = readSysfsAttr(dir, "serial")
			info.BusNumber = readSysfsAttr(dir, "busnum")
			info.DeviceNumber = readSysfsAttr(dir, "devnum")
			if product := readSysfsAttr(dir, "product"); product != "" {
				info.Description = product
			}
			return
		}
		dir = filepath.Dir(dir)
	}
}

func readSysfsAttr(dir, attr string) string {
	data, err := os.ReadFile(filepath.Join(dir, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
