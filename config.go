package serial

// Config holds the declared line parameters for a port. Every field is
// tri-state: a nil pointer means "never assigned", and unassigned fields
// are never sent to stty, leaving the device's pre-existing line
// settings untouched.
type Config struct {
	BaudRate       *int
	DataBits       *int
	StopBits       *StopBits
	Parity         *Parity
	Handshake      *Handshake
	RawMode        *bool
	MinBytesToRead *int
	ReadTimeoutMs  *int
	Drain          *bool
}

// Option is a functional option for configuring a port at construction
type Option func(*Config) error

// WithBaudRate sets the baud rate. The rate is passed to stty verbatim;
// invalid rates are rejected by stty at apply time.
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return ErrInvalidArgument
		}
		c.BaudRate = &rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if _, err := dataBitsTokens(bits); err != nil {
			return err
		}
		c.DataBits = &bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (one or two)
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		if _, err := stopBitsTokens(bits); err != nil {
			return err
		}
		c.StopBits = &bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if _, err := parityTokens(parity); err != nil {
			return err
		}
		c.Parity = &parity
		return nil
	}
}

// WithHandshake sets the flow control mode
func WithHandshake(handshake Handshake) Option {
	return func(c *Config) error {
		if _, err := handshakeTokens(handshake); err != nil {
			return err
		}
		c.Handshake = &handshake
		return nil
	}
}

// WithRawMode enables or disables raw (binary-transparent) mode
func WithRawMode(enabled bool) Option {
	return func(c *Config) error {
		c.RawMode = &enabled
		return nil
	}
}

// WithMinimumBytesToRead sets the minimum number of bytes a read blocks
// for (stty min)
func WithMinimumBytesToRead(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return ErrInvalidArgument
		}
		c.MinBytesToRead = &n
		return nil
	}
}

// WithReadTimeout sets the read timeout in milliseconds (stty time,
// rounded to tenths of a second)
func WithReadTimeout(ms int) Option {
	return func(c *Config) error {
		if ms < 0 {
			return ErrInvalidArgument
		}
		c.ReadTimeoutMs = &ms
		return nil
	}
}

// WithDrain controls whether stty waits for pending output before
// applying settings
func WithDrain(enabled bool) Option {
	return func(c *Config) error {
		c.Drain = &enabled
		return nil
	}
}

// reapplyTokens builds the token sequence for a full re-application of
// every assigned parameter. The order is fixed: drain (if assigned),
// sane, raw mode (if assigned), baud, min, time, data bits, stop bits,
// handshake, parity. sane comes first so every later token applies on
// top of known defaults; raw mode follows immediately so the specific
// parameters after it win over raw's composite resets.
func (c *Config) reapplyTokens() ([]string, error) {
	var tokens []string

	if c.Drain != nil {
		tokens = append(tokens, drainTokens(*c.Drain)...)
	}
	tokens = append(tokens, saneToken)
	if c.RawMode != nil {
		tokens = append(tokens, rawModeTokens(*c.RawMode)...)
	}
	if c.BaudRate != nil {
		tokens = append(tokens, baudTokens(*c.BaudRate)...)
	}
	if c.MinBytesToRead != nil {
		tokens = append(tokens, minBytesTokens(*c.MinBytesToRead)...)
	}
	if c.ReadTimeoutMs != nil {
		tokens = append(tokens, readTimeoutTokens(*c.ReadTimeoutMs)...)
	}
	if c.DataBits != nil {
		t, err := dataBitsTokens(*c.DataBits)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t...)
	}
	if c.StopBits != nil {
		t, err := stopBitsTokens(*c.StopBits)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t...)
	}
	if c.Handshake != nil {
		t, err := handshakeTokens(*c.Handshake)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t...)
	}
	if c.Parity != nil {
		t, err := parityTokens(*c.Parity)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t...)
	}

	return tokens, nil
}
