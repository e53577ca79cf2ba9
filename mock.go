package serial

// MockInvoker implements Invoker for testing. It records every call and
// returns scripted results, enabling call-sequence assertions without
// spawning stty.
type MockInvoker struct {
	// Calls records the argument slice of every Run invocation.
	Calls [][]string
	// Stdout is returned from each Run call.
	Stdout string
	// Err, if non-nil, is returned from every Run call.
	Err error
	// ErrOnCall, when > 0, fails only the Nth call (1-based). Takes
	// precedence over Err for other calls.
	ErrOnCall int
}

// Run records the call and returns the scripted result.
func (m *MockInvoker) Run(args []string) (string, error) {
	call := make([]string, len(args))
	copy(call, args)
	m.Calls = append(m.Calls, call)

	if m.ErrOnCall > 0 {
		if len(m.Calls) == m.ErrOnCall {
			if m.Err != nil {
				return "", m.Err
			}
			return "", &ExecError{Args: call, Stderr: "mock failure"}
		}
		return m.Stdout, nil
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Stdout, nil
}

// LastCall returns the most recently recorded call, or nil if none.
func (m *MockInvoker) LastCall() []string {
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}

// Reset clears all recorded calls.
func (m *MockInvoker) Reset() {
	m.Calls = nil
}
