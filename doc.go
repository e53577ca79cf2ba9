// Package serial provides a managed serial port abstraction for POSIX
// systems that configures the line discipline by shelling out to the
// stty utility instead of making termios/ioctl calls.
//
// The package is aimed at environments where native kernel interop is
// unavailable or undesirable (containers, restricted runtimes, quick
// tooling): all baud rate, framing, parity, handshake, raw mode and
// read timeout configuration is delegated to one external stty
// invocation per change, and the device file itself is exposed as a
// plain byte stream.
//
// # Basic Usage
//
// Create a port, declare parameters, open, and read/write raw bytes:
//
//	port, err := serial.New("/dev/ttyUSB0",
//	    serial.WithBaudRate(9600),
//	    serial.WithDataBits(8),
//	    serial.WithParity(serial.ParityNone),
//	    serial.WithStopBits(serial.StopBitsOne),
//	    serial.WithRawMode(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Dispose()
//
//	if err := port.Open(); err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := port.Write([]byte("AT\r\n"))
//	buf := make([]byte, 256)
//	n, err = port.Read(buf)
//
// # Wildcard Device Paths
//
// The device path may contain a wildcard in its final segment. At Open
// time the pattern is matched against the containing directory and the
// lexicographically smallest match is selected, so a USB adapter can be
// addressed without knowing its enumeration number:
//
//	port, err := serial.New("/dev/ttyUSB*")
//
// Zero matches fail with ErrDeviceNotFound. The resolved path is fixed
// for the lifetime of one open session and reported by PortName; a
// later Open after Close re-resolves.
//
// # Declared vs Applied Parameters
//
// Every parameter is tri-state: unassigned values are never sent to
// stty, so the device keeps whatever line settings it already had.
// Setters called before Open only store the value. Open applies all
// assigned parameters as a single batched stty invocation, always
// prefixed by a sane reset. Setters called while open apply that one
// parameter immediately; the stored value updates only if stty
// succeeds.
//
// Raw mode is special: stty's raw token is a composite command that can
// silently reset other settings, so enabling or disabling it while open
// applies the raw tokens first and then re-applies the whole stored
// configuration.
//
// # Lifecycle
//
// A port moves between constructed, open, closed and disposed states.
// Close releases the device stream and may be followed by another Open.
// Dispose is terminal and idempotent; every other operation afterwards
// fails with ErrPortDisposed.
//
// # Buffer Discards
//
// DiscardInput drains buffered input by reading until the device has
// nothing left; DiscardOutput flushes the stream. Both have
// context-taking variants for cooperative cancellation:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	err = port.DiscardInputContext(ctx)
//
// # Error Handling
//
// Failures are surfaced synchronously as typed errors; nothing is
// retried or logged internally. Sentinels cover the usual cases
// (ErrDeviceNotFound, ErrPortClosed, ErrPortDisposed, ...) and stty
// failures carry the utility's stderr text in an *ExecError:
//
//	var execErr *serial.ExecError
//	if errors.As(err, &execErr) {
//	    log.Printf("stty said: %s", execErr.Stderr)
//	}
//
// # Port Discovery
//
// ListPorts enumerates communication-capable devices under /dev and
// GetPortInfo reports per-port metadata including USB vendor, product
// and serial number read from sysfs.
//
// # Platform Support
//
// POSIX systems with an stty binary. Constructing a port fails with
// ErrUnsupportedPlatform when stty is absent. No ioctl or termios calls
// are made by this package.
package serial
