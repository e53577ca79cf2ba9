package serial

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// makeDevice creates a stand-in device file and returns its path.
func makeDevice(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("creating device stand-in: %v", err)
	}
	return path
}

func TestNewValidation(t *testing.T) {
	if _, err := NewWithInvoker("", &MockInvoker{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for empty path, got %v", err)
	}
	if _, err := NewWithInvoker("/dev/ttyUSB0", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for nil invoker, got %v", err)
	}
	if _, err := NewWithInvoker("/dev/ttyUSB0", &MockInvoker{}, WithDataBits(9)); !errors.Is(err, ErrInvalidDataBits) {
		t.Errorf("Expected ErrInvalidDataBits from option, got %v", err)
	}
}

func TestGetterFallbacks(t *testing.T) {
	port, err := NewWithInvoker("/dev/ttyUSB0", &MockInvoker{})
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}

	if got := port.BaudRate(); got != 9600 {
		t.Errorf("BaudRate fallback = %d, want 9600", got)
	}
	if got := port.DataBits(); got != 8 {
		t.Errorf("DataBits fallback = %d, want 8", got)
	}
	if got := port.StopBits(); got != StopBitsOne {
		t.Errorf("StopBits fallback = %v, want one", got)
	}
	if got := port.Parity(); got != ParityNone {
		t.Errorf("Parity fallback = %v, want none", got)
	}
	if got := port.Handshake(); got != HandshakeNone {
		t.Errorf("Handshake fallback = %v, want none", got)
	}
	if !port.RawMode() {
		t.Error("RawMode fallback should be enabled")
	}
	if got := port.MinimumBytesToRead(); got != 0 {
		t.Errorf("MinimumBytesToRead fallback = %d, want 0", got)
	}
	if got := port.ReadTimeout(); got != 0 {
		t.Errorf("ReadTimeout fallback = %d, want 0", got)
	}
	if _, assigned := port.Drain(); assigned {
		t.Error("Drain should be unassigned by default")
	}

	// Reading a fallback must not mark the field as assigned: an
	// unassigned field never reaches stty.
	if port.config.RawMode != nil || port.config.DataBits != nil {
		t.Error("Getters mutated the unassigned state")
	}
}

func TestResolveLowestMatch(t *testing.T) {
	dir := t.TempDir()
	makeDevice(t, dir, "ttyUSB2")
	makeDevice(t, dir, "ttyUSB0")
	makeDevice(t, dir, "ttyUSB1")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(filepath.Join(dir, "ttyUSB*"), mock)
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	want := filepath.Join(dir, "ttyUSB0")
	if got := port.PortName(); got != want {
		t.Errorf("PortName = %q, want %q", got, want)
	}
	if !port.IsOpen() {
		t.Error("Expected IsOpen after Open")
	}
}

func TestResolveNoMatch(t *testing.T) {
	dir := t.TempDir()

	port, err := NewWithInvoker(filepath.Join(dir, "ttyUSB*"), &MockInvoker{})
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}

	if err := port.Open(); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
	if port.IsOpen() {
		t.Error("Port must not be open after failed Open")
	}
}

func TestOpenSingleBatchedInvocation(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(device, mock,
		WithBaudRate(9600),
		WithDataBits(8),
		WithParity(ParityNone),
		WithStopBits(StopBitsOne),
		WithHandshake(HandshakeNone),
		WithRawMode(false),
		WithMinimumBytesToRead(0),
		WithReadTimeout(0),
	)
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("Expected exactly one stty invocation, got %d", len(mock.Calls))
	}

	want := []string{
		"-F", device,
		"sane",
		"-raw",
		"9600",
		"min", "0",
		"time", "0",
		"cs8",
		"-cstopb",
		"-crtscts", "-ixon", "-ixoff",
		"-parenb",
	}
	if !reflect.DeepEqual(mock.Calls[0], want) {
		t.Errorf("Open invocation = %v, want %v", mock.Calls[0], want)
	}
}

func TestUnsetFieldsNeverEmitted(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want []string // tokens after "-F <device>"
	}{
		{"nothing assigned", nil, []string{"sane"}},
		{"baud only", []Option{WithBaudRate(115200)}, []string{"sane", "115200"}},
		{"parity only", []Option{WithParity(ParityOdd)}, []string{"sane", "parenb", "-cmspar", "parodd"}},
		{
			"drain prefixes sane",
			[]Option{WithDrain(false), WithBaudRate(19200)},
			[]string{"-drain", "sane", "19200"},
		},
		{
			"raw follows sane",
			[]Option{WithRawMode(true), WithStopBits(StopBitsTwo)},
			append(append([]string{"sane"}, rawModeTokens(true)...), "cstopb"),
		},
		{
			"timeout rounding",
			[]Option{WithReadTimeout(149)},
			[]string{"sane", "time", "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			device := makeDevice(t, dir, "ttyS0")

			mock := &MockInvoker{}
			port, err := NewWithInvoker(device, mock, tt.opts...)
			if err != nil {
				t.Fatalf("NewWithInvoker failed: %v", err)
			}
			defer port.Dispose()

			if err := port.Open(); err != nil {
				t.Fatalf("Open failed: %v", err)
			}

			want := append([]string{"-F", device}, tt.want...)
			if !reflect.DeepEqual(mock.Calls[0], want) {
				t.Errorf("Open invocation = %v, want %v", mock.Calls[0], want)
			}
		})
	}
}

func TestSetterBeforeOpenIsLocal(t *testing.T) {
	mock := &MockInvoker{}
	port, err := NewWithInvoker("/dev/ttyUSB0", mock)
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}

	if err := port.SetBaudRate(57600); err != nil {
		t.Fatalf("SetBaudRate failed: %v", err)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("Setter before Open must not invoke stty, got %d calls", len(mock.Calls))
	}
	if got := port.BaudRate(); got != 57600 {
		t.Errorf("BaudRate = %d, want 57600", got)
	}

	// Translator validation applies even when closed, before any call.
	if err := port.SetDataBits(4); !errors.Is(err, ErrInvalidDataBits) {
		t.Errorf("Expected ErrInvalidDataBits, got %v", err)
	}
	if len(mock.Calls) != 0 {
		t.Errorf("Invalid setter must not invoke stty, got %d calls", len(mock.Calls))
	}
}

func TestSetterWhileOpenSingleInvocation(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(device, mock, WithBaudRate(9600))
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mock.Reset()

	if err := port.SetParity(ParityEven); err != nil {
		t.Fatalf("SetParity failed: %v", err)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("Expected one invocation, got %d", len(mock.Calls))
	}
	want := []string{"-F", device, "parenb", "-cmspar", "-parodd"}
	if !reflect.DeepEqual(mock.Calls[0], want) {
		t.Errorf("Setter invocation = %v, want %v", mock.Calls[0], want)
	}
}

func TestRawModeWhileOpenReappliesEverything(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(device, mock, WithBaudRate(9600))
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mock.Reset()

	if err := port.SetRawMode(true); err != nil {
		t.Fatalf("SetRawMode failed: %v", err)
	}

	if len(mock.Calls) != 2 {
		t.Fatalf("Expected two invocations (raw, then re-application), got %d", len(mock.Calls))
	}

	wantFirst := append([]string{"-F", device}, rawModeTokens(true)...)
	if !reflect.DeepEqual(mock.Calls[0], wantFirst) {
		t.Errorf("First invocation = %v, want raw tokens alone %v", mock.Calls[0], wantFirst)
	}

	second := mock.Calls[1]
	for _, want := range []string{"sane", "raw", "9600"} {
		found := false
		for _, token := range second {
			if token == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Re-application missing %q token: %v", want, second)
		}
	}
}

func TestFailedSetterKeepsStoredValue(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(device, mock, WithBaudRate(9600))
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	mock.Err = &ExecError{Args: nil, Stderr: "invalid argument"}
	if err := port.SetBaudRate(115200); err == nil {
		t.Fatal("Expected setter failure")
	}
	if got := port.BaudRate(); got != 9600 {
		t.Errorf("Failed setter must not update stored value, got %d", got)
	}
}

func TestRawModeSecondStepFailureKeepsCommittedValue(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(device, mock, WithBaudRate(9600))
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	// Calls so far: 1 (Open). The raw step succeeds on call 2; the
	// re-application on call 3 fails.
	mock.ErrOnCall = 3
	if err := port.SetRawMode(true); err == nil {
		t.Fatal("Expected re-application failure")
	}
	if !port.RawMode() {
		t.Error("Raw mode backing value should stay committed from step one")
	}
}

func TestRawModeFirstStepFailureLeavesValueUnchanged(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(device, mock)
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	mock.ErrOnCall = 2
	if err := port.SetRawMode(false); err == nil {
		t.Fatal("Expected raw step failure")
	}
	if port.config.RawMode != nil {
		t.Error("Raw mode must stay unassigned after step one fails")
	}
	if len(mock.Calls) != 2 {
		t.Errorf("Step two must not run after step one fails, got %d calls", len(mock.Calls))
	}
}

func TestCloseThenReopenReresolves(t *testing.T) {
	dir := t.TempDir()
	makeDevice(t, dir, "ttyUSB1")

	port, err := NewWithInvoker(filepath.Join(dir, "ttyUSB*"), &MockInvoker{})
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := port.PortName(); got != filepath.Join(dir, "ttyUSB1") {
		t.Fatalf("PortName = %q", got)
	}

	if err := port.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if port.IsOpen() {
		t.Error("Port should not be open after Close")
	}

	// A lower-sorting device appears while closed; reopening picks it.
	makeDevice(t, dir, "ttyUSB0")
	if err := port.Open(); err != nil {
		t.Fatalf("Re-open failed: %v", err)
	}
	if got := port.PortName(); got != filepath.Join(dir, "ttyUSB0") {
		t.Errorf("Re-resolution picked %q, want ttyUSB0", got)
	}
}

func TestCloseBeforeOpenIsNoop(t *testing.T) {
	port, err := NewWithInvoker("/dev/ttyUSB0", &MockInvoker{})
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	if err := port.Close(); err != nil {
		t.Errorf("Close before Open should be a no-op, got %v", err)
	}
	if err := port.Close(); err != nil {
		t.Errorf("Double Close should be a no-op, got %v", err)
	}
}

func TestDisposeSemantics(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	port, err := NewWithInvoker(device, &MockInvoker{})
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := port.Dispose(); err != nil {
		t.Fatalf("Dispose failed: %v", err)
	}
	if err := port.Dispose(); err != nil {
		t.Errorf("Second Dispose should be a no-op, got %v", err)
	}

	if err := port.Open(); !errors.Is(err, ErrPortDisposed) {
		t.Errorf("Open after Dispose: expected ErrPortDisposed, got %v", err)
	}
	if err := port.Close(); !errors.Is(err, ErrPortDisposed) {
		t.Errorf("Close after Dispose: expected ErrPortDisposed, got %v", err)
	}
	if err := port.SetBaudRate(9600); !errors.Is(err, ErrPortDisposed) {
		t.Errorf("Setter after Dispose: expected ErrPortDisposed, got %v", err)
	}
	if _, err := port.Read(make([]byte, 1)); !errors.Is(err, ErrPortDisposed) {
		t.Errorf("Read after Dispose: expected ErrPortDisposed, got %v", err)
	}
	if err := port.DiscardInput(); !errors.Is(err, ErrPortDisposed) {
		t.Errorf("DiscardInput after Dispose: expected ErrPortDisposed, got %v", err)
	}

	// Cached values remain readable.
	if got := port.DataBits(); got != 8 {
		t.Errorf("Cached getter after Dispose = %d, want 8", got)
	}
}

func TestStreamOperationsWhileClosed(t *testing.T) {
	port, err := NewWithInvoker("/dev/ttyUSB0", &MockInvoker{})
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}

	if _, err := port.Read(make([]byte, 1)); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Read while closed: expected ErrPortClosed, got %v", err)
	}
	if _, err := port.Write([]byte("x")); !errors.Is(err, ErrPortClosed) {
		t.Errorf("Write while closed: expected ErrPortClosed, got %v", err)
	}
	if err := port.DiscardInput(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("DiscardInput while closed: expected ErrPortClosed, got %v", err)
	}
	if err := port.DiscardOutput(); !errors.Is(err, ErrPortClosed) {
		t.Errorf("DiscardOutput while closed: expected ErrPortClosed, got %v", err)
	}
	if port.BaseStream() != nil {
		t.Error("BaseStream while closed should be nil")
	}
}

func TestOpenWhileOpenIsNoop(t *testing.T) {
	dir := t.TempDir()
	device := makeDevice(t, dir, "ttyUSB0")

	mock := &MockInvoker{}
	port, err := NewWithInvoker(device, mock)
	if err != nil {
		t.Fatalf("NewWithInvoker failed: %v", err)
	}
	defer port.Dispose()

	if err := port.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := port.Open(); err != nil {
		t.Errorf("Open while open should be a no-op, got %v", err)
	}
	if len(mock.Calls) != 1 {
		t.Errorf("Second Open must not re-invoke stty, got %d calls", len(mock.Calls))
	}
}
