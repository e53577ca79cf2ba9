package serial

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined error types for robust error handling
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnsupportedPlatform = errors.New("stty utility not available on this platform")
	ErrInvalidDataBits     = errors.New("data bits out of range (must be 5-8)")
	ErrInvalidConfig       = errors.New("serial configuration has no stty representation")
	ErrDeviceNotFound      = errors.New("serial device not found")
	ErrPortClosed          = errors.New("serial port is not open")
	ErrPortDisposed        = errors.New("serial port has been disposed")
)

// ExecError reports that stty wrote to stderr. Any stderr output is
// treated as failure, regardless of the process exit code.
type ExecError struct {
	Args   []string // arguments stty was invoked with
	Stderr string   // stderr text, trimmed
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("stty %s: %s", strings.Join(e.Args, " "), e.Stderr)
}
