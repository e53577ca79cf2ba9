package serial

import "strconv"

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	case ParityMark:
		return "mark"
	case ParitySpace:
		return "space"
	default:
		return "unknown"
	}
}

// StopBits represents the number of stop bits
type StopBits int

const (
	StopBitsNone StopBits = iota
	StopBitsOne
	StopBitsOnePointFive
	StopBitsTwo
)

func (s StopBits) String() string {
	switch s {
	case StopBitsNone:
		return "none"
	case StopBitsOne:
		return "1"
	case StopBitsOnePointFive:
		return "1.5"
	case StopBitsTwo:
		return "2"
	default:
		return "unknown"
	}
}

// Handshake represents the flow control mode
type Handshake int

const (
	HandshakeNone Handshake = iota
	HandshakeRequestToSend
	HandshakeXOnXOff
	HandshakeRequestToSendXOnXOff
)

func (h Handshake) String() string {
	switch h {
	case HandshakeNone:
		return "none"
	case HandshakeRequestToSend:
		return "rtscts"
	case HandshakeXOnXOff:
		return "xonxoff"
	case HandshakeRequestToSendXOnXOff:
		return "rtscts+xonxoff"
	default:
		return "unknown"
	}
}

// sane resets the line discipline to a known baseline. Always issued
// first in a full re-application so that later tokens apply on top of
// known defaults.
const saneToken = "sane"

// baudTokens emits the rate literally. No validation: stty rejects rates
// the hardware cannot do, and the set of valid rates differs per device.
func baudTokens(rate int) []string {
	return []string{strconv.Itoa(rate)}
}

// dataBitsTokens maps the character size to a csN token.
func dataBitsTokens(bits int) ([]string, error) {
	if bits < 5 || bits > 8 {
		return nil, ErrInvalidDataBits
	}
	return []string{"cs" + strconv.Itoa(bits)}, nil
}

// stopBitsTokens maps the stop bit count to the cstopb toggle. stty has
// no representation for zero or one-and-a-half stop bits.
func stopBitsTokens(bits StopBits) ([]string, error) {
	switch bits {
	case StopBitsOne:
		return []string{"-cstopb"}, nil
	case StopBitsTwo:
		return []string{"cstopb"}, nil
	default:
		return nil, ErrInvalidConfig
	}
}

// parityTokens maps each parity mode to its combination of parenb
// (parity enable), cmspar (mark/space parity) and parodd tokens.
func parityTokens(parity Parity) ([]string, error) {
	switch parity {
	case ParityNone:
		return []string{"-parenb"}, nil
	case ParityOdd:
		return []string{"parenb", "-cmspar", "parodd"}, nil
	case ParityEven:
		return []string{"parenb", "-cmspar", "-parodd"}, nil
	case ParityMark:
		return []string{"parenb", "cmspar", "parodd"}, nil
	case ParitySpace:
		return []string{"parenb", "cmspar", "-parodd"}, nil
	default:
		return nil, ErrInvalidConfig
	}
}

// handshakeTokens maps the flow control mode to the crtscts (hardware)
// and ixon/ixoff (software) toggles. Both are independently switched so
// that enabling one form explicitly disables the other unless combined.
func handshakeTokens(handshake Handshake) ([]string, error) {
	switch handshake {
	case HandshakeNone:
		return []string{"-crtscts", "-ixon", "-ixoff"}, nil
	case HandshakeRequestToSend:
		return []string{"crtscts", "-ixon", "-ixoff"}, nil
	case HandshakeXOnXOff:
		return []string{"-crtscts", "ixon", "ixoff"}, nil
	case HandshakeRequestToSendXOnXOff:
		return []string{"crtscts", "ixon", "ixoff"}, nil
	default:
		return nil, ErrInvalidConfig
	}
}

// rawModeTokens emits the composite raw token plus the override battery
// that raw alone does not cover: hangup-on-close, modem control lines,
// extended input processing and every echo variant must be switched off
// individually to get a binary-transparent channel.
func rawModeTokens(enabled bool) []string {
	if !enabled {
		return []string{"-raw"}
	}
	return []string{
		"raw",
		"-hupcl",
		"clocal",
		"-iexten",
		"-echo",
		"-echoe",
		"-echok",
		"-echonl",
		"-echoprt",
		"-echoctl",
		"-echoke",
	}
}

// minBytesTokens maps the minimum-bytes-to-read value to stty's min N.
func minBytesTokens(n int) []string {
	return []string{"min", strconv.Itoa(n)}
}

// readTimeoutTokens converts a millisecond timeout to stty's time token,
// which counts tenths of a second. Rounds to nearest, ties up.
func readTimeoutTokens(ms int) []string {
	return []string{"time", strconv.Itoa(millisToDeciseconds(ms))}
}

func millisToDeciseconds(ms int) int {
	return (ms + 50) / 100
}

// drainTokens toggles whether stty waits for pending output before
// applying settings. Disabling avoids indefinite blocking when flow
// control is holding back transmission.
func drainTokens(enabled bool) []string {
	if enabled {
		return []string{"drain"}
	}
	return []string{"-drain"}
}
