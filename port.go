package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sys/unix"
)

// sessionState tracks the port lifecycle
type sessionState int

const (
	stateConstructed sessionState = iota
	stateOpen
	stateClosed
	stateDisposed
)

// Port is a serial port session whose line discipline is configured
// entirely through the external stty utility. Declared parameters are
// stored until Open, applied as one batched stty invocation at Open, and
// applied individually when changed while open.
//
// A Port has a single logical owner: configuration setters are not safe
// for concurrent use. One in-flight Read and one in-flight Write may
// proceed concurrently.
type Port struct {
	mu       sync.RWMutex
	invoker  Invoker
	path     string // requested path, may contain one wildcard segment
	resolved string
	file     *os.File
	state    sessionState
	config   Config
}

// New creates a port session for the given device path. The path may
// contain a wildcard in its final segment (e.g. /dev/ttyUSB*), resolved
// at Open time. Fails with ErrUnsupportedPlatform when the stty binary
// is not present.
func New(path string, opts ...Option) (*Port, error) {
	if !IsSttyAvailable() {
		return nil, ErrUnsupportedPlatform
	}
	return NewWithInvoker(path, newSttyInvoker(), opts...)
}

// NewWithInvoker creates a port session using a caller-supplied Invoker.
// Intended for tests and for consumers that need to intercept stty
// invocations; no binary-presence probe is performed.
func NewWithInvoker(path string, invoker Invoker, opts ...Option) (*Port, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty device path", ErrInvalidArgument)
	}
	if invoker == nil {
		return nil, fmt.Errorf("%w: nil invoker", ErrInvalidArgument)
	}

	p := &Port{
		invoker: invoker,
		path:    path,
		state:   stateConstructed,
	}
	for _, opt := range opts {
		if err := opt(&p.config); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// resolveDevicePath splits the requested path into directory and
// filename pattern, matches the pattern against the directory entries
// and picks the lexicographically smallest match. Deterministic: the
// lowest-sorting match wins, not filesystem enumeration order.
func (p *Port) resolveDevicePath() (string, error) {
	dir, pattern := filepath.Split(p.path)
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrDeviceNotFound, p.path)
	}

	var matches []string
	for _, entry := range entries {
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return "", fmt.Errorf("%w: bad path pattern %q", ErrInvalidArgument, pattern)
		}
		if ok && !entry.IsDir() {
			matches = append(matches, entry.Name())
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrDeviceNotFound, p.path)
	}
	sort.Strings(matches)

	return filepath.Join(dir, matches[0]), nil
}

// Open resolves the device path, opens the device file and applies every
// assigned parameter as a single stty invocation. Opening an already
// open session is a no-op. A session closed with Close may be reopened;
// the path is re-resolved and may pick a different device if the
// filesystem changed.
func (p *Port) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateDisposed:
		return ErrPortDisposed
	case stateOpen:
		return nil
	}

	resolved, err := p.resolveDevicePath()
	if err != nil {
		return err
	}

	// Read+write, non-exclusive, no truncation. O_NOCTTY keeps the
	// device from becoming the controlling terminal.
	file, err := os.OpenFile(resolved, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", resolved, err)
	}

	tokens, err := p.config.reapplyTokens()
	if err != nil {
		file.Close()
		return err
	}
	if _, err := p.invoker.Run(append([]string{"-F", resolved}, tokens...)); err != nil {
		file.Close()
		return err
	}

	p.resolved = resolved
	p.file = file
	p.state = stateOpen
	return nil
}

// apply issues one stty invocation for the given tokens against the
// resolved device. Callers must hold the lock and be in the open state.
func (p *Port) apply(tokens []string) error {
	_, err := p.invoker.Run(append([]string{"-F", p.resolved}, tokens...))
	return err
}

// SetBaudRate declares the baud rate, applying it immediately when open.
func (p *Port) SetBaudRate(rate int) error {
	if rate <= 0 {
		return fmt.Errorf("%w: baud rate %d", ErrInvalidArgument, rate)
	}
	return p.set(baudTokens(rate), func(c *Config) { c.BaudRate = &rate })
}

// BaudRate returns the declared baud rate, or 9600 when unassigned.
func (p *Port) BaudRate() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.BaudRate == nil {
		return 9600
	}
	return *p.config.BaudRate
}

// SetDataBits declares the number of data bits (5-8). Values outside the
// range fail with ErrInvalidDataBits before any stty call is made.
func (p *Port) SetDataBits(bits int) error {
	tokens, err := dataBitsTokens(bits)
	if err != nil {
		return err
	}
	return p.set(tokens, func(c *Config) { c.DataBits = &bits })
}

// DataBits returns the declared data bits, or 8 when unassigned.
func (p *Port) DataBits() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.DataBits == nil {
		return 8
	}
	return *p.config.DataBits
}

// SetStopBits declares the stop bit count. None and OnePointFive fail
// with ErrInvalidConfig: stty cannot express them.
func (p *Port) SetStopBits(bits StopBits) error {
	tokens, err := stopBitsTokens(bits)
	if err != nil {
		return err
	}
	return p.set(tokens, func(c *Config) { c.StopBits = &bits })
}

// StopBits returns the declared stop bits, or StopBitsOne when
// unassigned.
func (p *Port) StopBits() StopBits {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.StopBits == nil {
		return StopBitsOne
	}
	return *p.config.StopBits
}

// SetParity declares the parity mode.
func (p *Port) SetParity(parity Parity) error {
	tokens, err := parityTokens(parity)
	if err != nil {
		return err
	}
	return p.set(tokens, func(c *Config) { c.Parity = &parity })
}

// Parity returns the declared parity, or ParityNone when unassigned.
func (p *Port) Parity() Parity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.Parity == nil {
		return ParityNone
	}
	return *p.config.Parity
}

// SetHandshake declares the flow control mode.
func (p *Port) SetHandshake(handshake Handshake) error {
	tokens, err := handshakeTokens(handshake)
	if err != nil {
		return err
	}
	return p.set(tokens, func(c *Config) { c.Handshake = &handshake })
}

// Handshake returns the declared handshake, or HandshakeNone when
// unassigned.
func (p *Port) Handshake() Handshake {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.Handshake == nil {
		return HandshakeNone
	}
	return *p.config.Handshake
}

// SetMinimumBytesToRead declares the minimum bytes a read blocks for
// (stty min).
func (p *Port) SetMinimumBytesToRead(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: minimum bytes %d", ErrInvalidArgument, n)
	}
	return p.set(minBytesTokens(n), func(c *Config) { c.MinBytesToRead = &n })
}

// MinimumBytesToRead returns the declared minimum, or 0 when unassigned.
func (p *Port) MinimumBytesToRead() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.MinBytesToRead == nil {
		return 0
	}
	return *p.config.MinBytesToRead
}

// SetReadTimeout declares the read timeout in milliseconds, converted to
// stty's tenths-of-a-second unit (rounded to nearest, ties up).
func (p *Port) SetReadTimeout(ms int) error {
	if ms < 0 {
		return fmt.Errorf("%w: read timeout %dms", ErrInvalidArgument, ms)
	}
	return p.set(readTimeoutTokens(ms), func(c *Config) { c.ReadTimeoutMs = &ms })
}

// ReadTimeout returns the declared timeout in milliseconds, or 0 when
// unassigned.
func (p *Port) ReadTimeout() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.ReadTimeoutMs == nil {
		return 0
	}
	return *p.config.ReadTimeoutMs
}

// SetDrain declares whether stty waits for pending output before
// applying settings.
func (p *Port) SetDrain(enabled bool) error {
	return p.set(drainTokens(enabled), func(c *Config) { c.Drain = &enabled })
}

// Drain returns the declared drain flag and whether it has been
// assigned at all.
func (p *Port) Drain() (enabled, assigned bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.Drain == nil {
		return false, false
	}
	return *p.config.Drain, true
}

// set implements the common setter protocol: when the session is open,
// the tokens are applied as one standalone invocation and the stored
// value only updates after the call succeeds. When not open, the value
// is stored locally with no external call.
func (p *Port) set(tokens []string, store func(*Config)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisposed {
		return ErrPortDisposed
	}
	if p.state == stateOpen {
		if err := p.apply(tokens); err != nil {
			return err
		}
	}
	store(&p.config)
	return nil
}

// SetRawMode declares raw (binary-transparent) mode. While open this is
// a two-step operation: raw is a composite stty command that can
// silently reset other line settings, so after applying the raw tokens
// alone, every stored parameter is re-applied in full to restore
// whatever raw clobbered. The backing value commits after the first
// step: a failure in the re-application leaves raw mode recorded as set.
func (p *Port) SetRawMode(enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisposed {
		return ErrPortDisposed
	}
	if p.state != stateOpen {
		p.config.RawMode = &enabled
		return nil
	}

	if err := p.apply(rawModeTokens(enabled)); err != nil {
		return err
	}
	p.config.RawMode = &enabled

	tokens, err := p.config.reapplyTokens()
	if err != nil {
		return err
	}
	return p.apply(tokens)
}

// RawMode returns the declared raw mode flag. Unassigned defaults to
// true: a transparent binary channel is the usual reason to use this
// package. The default is only a getter fallback; an unassigned flag is
// never sent to stty.
func (p *Port) RawMode() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.RawMode == nil {
		return true
	}
	return *p.config.RawMode
}

// PortName returns the resolved device path once the port has been
// opened, and the originally requested path before that.
func (p *Port) PortName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.resolved != "" {
		return p.resolved
	}
	return p.path
}

// IsOpen reports whether the session currently owns an open device
// stream.
func (p *Port) IsOpen() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == stateOpen
}

// BaseStream returns the raw device file while open, nil otherwise.
// The caller must not close it; ownership stays with the port.
func (p *Port) BaseStream() *os.File {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state != stateOpen {
		return nil
	}
	return p.file
}

// Read reads raw bytes from the device stream.
func (p *Port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	file, err := p.streamLocked()
	p.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	return file.Read(buf)
}

// Write writes raw bytes to the device stream.
func (p *Port) Write(data []byte) (int, error) {
	p.mu.RLock()
	file, err := p.streamLocked()
	p.mu.RUnlock()
	if err != nil {
		return 0, err
	}
	return file.Write(data)
}

func (p *Port) streamLocked() (*os.File, error) {
	switch p.state {
	case stateDisposed:
		return nil, ErrPortDisposed
	case stateOpen:
		return p.file, nil
	default:
		return nil, ErrPortClosed
	}
}

// DiscardInput reads and throws away buffered input in fixed-size
// chunks until a read returns zero bytes or EOF, signalling no more
// buffered data.
func (p *Port) DiscardInput() error {
	p.mu.RLock()
	file, err := p.streamLocked()
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	return drainInput(context.Background(), file)
}

// DiscardInputContext is DiscardInput with cooperative cancellation.
// Cancellation aborts between reads; a read already in flight finishes
// on its own, but the drain loop stops at the next iteration and stops
// consuming from the stream.
func (p *Port) DiscardInputContext(ctx context.Context) error {
	p.mu.RLock()
	file, err := p.streamLocked()
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- drainInput(ctx, file)
	}()

	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func drainInput(ctx context.Context, file *os.File) error {
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := file.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if n <= 0 {
			return nil
		}
	}
}

// DiscardOutput flushes the device stream.
func (p *Port) DiscardOutput() error {
	p.mu.RLock()
	file, err := p.streamLocked()
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	return file.Sync()
}

// DiscardOutputContext is DiscardOutput with cooperative cancellation.
func (p *Port) DiscardOutputContext(ctx context.Context) error {
	p.mu.RLock()
	file, err := p.streamLocked()
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- file.Sync()
	}()

	select {
	case err := <-resultCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the device stream and transitions the session to the
// closed state. Closing an already closed or never opened session is a
// no-op; closing a disposed session fails with ErrPortDisposed.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisposed {
		return ErrPortDisposed
	}
	return p.closeStream()
}

// Dispose closes the session and marks it permanently unusable.
// Idempotent: disposing twice is a no-op. Every other operation after
// Dispose fails with ErrPortDisposed.
func (p *Port) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateDisposed {
		return nil
	}
	err := p.closeStream()
	p.state = stateDisposed
	return err
}

func (p *Port) closeStream() error {
	var err error
	if p.file != nil {
		err = p.file.Close()
		p.file = nil
	}
	p.state = stateClosed
	return err
}
