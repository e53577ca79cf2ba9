package serial

import (
	"errors"
	"reflect"
	"testing"
)

func TestBaudTokens(t *testing.T) {
	tokens := baudTokens(9600)
	if !reflect.DeepEqual(tokens, []string{"9600"}) {
		t.Errorf("Expected [9600], got %v", tokens)
	}

	// No validation: odd rates pass through for stty to reject
	tokens = baudTokens(123456)
	if !reflect.DeepEqual(tokens, []string{"123456"}) {
		t.Errorf("Expected [123456], got %v", tokens)
	}
}

func TestDataBitsTokens(t *testing.T) {
	tests := []struct {
		bits    int
		want    []string
		wantErr bool
	}{
		{5, []string{"cs5"}, false},
		{6, []string{"cs6"}, false},
		{7, []string{"cs7"}, false},
		{8, []string{"cs8"}, false},
		{4, nil, true},
		{9, nil, true},
		{0, nil, true},
		{-1, nil, true},
	}

	for _, tt := range tests {
		tokens, err := dataBitsTokens(tt.bits)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDataBits) {
				t.Errorf("dataBitsTokens(%d): expected ErrInvalidDataBits, got %v", tt.bits, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("dataBitsTokens(%d): unexpected error %v", tt.bits, err)
		}
		if !reflect.DeepEqual(tokens, tt.want) {
			t.Errorf("dataBitsTokens(%d) = %v, want %v", tt.bits, tokens, tt.want)
		}
	}
}

func TestStopBitsTokens(t *testing.T) {
	tests := []struct {
		bits    StopBits
		want    []string
		wantErr bool
	}{
		{StopBitsOne, []string{"-cstopb"}, false},
		{StopBitsTwo, []string{"cstopb"}, false},
		{StopBitsNone, nil, true},
		{StopBitsOnePointFive, nil, true},
		{StopBits(42), nil, true},
	}

	for _, tt := range tests {
		tokens, err := stopBitsTokens(tt.bits)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("stopBitsTokens(%v): expected ErrInvalidConfig, got %v", tt.bits, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("stopBitsTokens(%v): unexpected error %v", tt.bits, err)
		}
		if !reflect.DeepEqual(tokens, tt.want) {
			t.Errorf("stopBitsTokens(%v) = %v, want %v", tt.bits, tokens, tt.want)
		}
	}
}

func TestParityTokens(t *testing.T) {
	tests := []struct {
		parity  Parity
		want    []string
		wantErr bool
	}{
		{ParityNone, []string{"-parenb"}, false},
		{ParityOdd, []string{"parenb", "-cmspar", "parodd"}, false},
		{ParityEven, []string{"parenb", "-cmspar", "-parodd"}, false},
		{ParityMark, []string{"parenb", "cmspar", "parodd"}, false},
		{ParitySpace, []string{"parenb", "cmspar", "-parodd"}, false},
		{Parity(99), nil, true},
	}

	for _, tt := range tests {
		tokens, err := parityTokens(tt.parity)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("parityTokens(%v): expected ErrInvalidConfig, got %v", tt.parity, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parityTokens(%v): unexpected error %v", tt.parity, err)
		}
		if !reflect.DeepEqual(tokens, tt.want) {
			t.Errorf("parityTokens(%v) = %v, want %v", tt.parity, tokens, tt.want)
		}
	}
}

func TestHandshakeTokens(t *testing.T) {
	tests := []struct {
		handshake Handshake
		want      []string
		wantErr   bool
	}{
		{HandshakeNone, []string{"-crtscts", "-ixon", "-ixoff"}, false},
		{HandshakeRequestToSend, []string{"crtscts", "-ixon", "-ixoff"}, false},
		{HandshakeXOnXOff, []string{"-crtscts", "ixon", "ixoff"}, false},
		{HandshakeRequestToSendXOnXOff, []string{"crtscts", "ixon", "ixoff"}, false},
		{Handshake(7), nil, true},
	}

	for _, tt := range tests {
		tokens, err := handshakeTokens(tt.handshake)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("handshakeTokens(%v): expected ErrInvalidConfig, got %v", tt.handshake, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("handshakeTokens(%v): unexpected error %v", tt.handshake, err)
		}
		if !reflect.DeepEqual(tokens, tt.want) {
			t.Errorf("handshakeTokens(%v) = %v, want %v", tt.handshake, tokens, tt.want)
		}
	}
}

func TestRawModeTokens(t *testing.T) {
	disabled := rawModeTokens(false)
	if !reflect.DeepEqual(disabled, []string{"-raw"}) {
		t.Errorf("Expected [-raw], got %v", disabled)
	}

	enabled := rawModeTokens(true)
	if enabled[0] != "raw" {
		t.Errorf("Expected raw as first token, got %v", enabled[0])
	}

	// The composite raw token alone is not binary transparent: the
	// override battery must accompany it.
	required := []string{
		"-hupcl", "clocal", "-iexten",
		"-echo", "-echoe", "-echok", "-echonl",
		"-echoprt", "-echoctl", "-echoke",
	}
	for _, want := range required {
		found := false
		for _, token := range enabled {
			if token == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("raw mode tokens missing %q: %v", want, enabled)
		}
	}
}

func TestMillisToDeciseconds(t *testing.T) {
	tests := []struct {
		ms   int
		want int
	}{
		{0, 0},
		{49, 0},
		{50, 1},
		{100, 1},
		{149, 1},
		{150, 2},
		{951, 10},
		{1000, 10},
	}

	for _, tt := range tests {
		if got := millisToDeciseconds(tt.ms); got != tt.want {
			t.Errorf("millisToDeciseconds(%d) = %d, want %d", tt.ms, got, tt.want)
		}
	}
}

func TestReadTimeoutTokens(t *testing.T) {
	tokens := readTimeoutTokens(150)
	if !reflect.DeepEqual(tokens, []string{"time", "2"}) {
		t.Errorf("Expected [time 2], got %v", tokens)
	}
}

func TestMinBytesTokens(t *testing.T) {
	tokens := minBytesTokens(0)
	if !reflect.DeepEqual(tokens, []string{"min", "0"}) {
		t.Errorf("Expected [min 0], got %v", tokens)
	}
}

func TestDrainTokens(t *testing.T) {
	if got := drainTokens(true); !reflect.DeepEqual(got, []string{"drain"}) {
		t.Errorf("Expected [drain], got %v", got)
	}
	if got := drainTokens(false); !reflect.DeepEqual(got, []string{"-drain"}) {
		t.Errorf("Expected [-drain], got %v", got)
	}
}
