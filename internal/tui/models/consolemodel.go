package models

import (
	"context"
	"sync"

	serial "github.com/allbin/stty-serial"
	"github.com/allbin/stty-serial/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeNormal:
		return "NORMAL"
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

type SessionStatusMsg struct {
	Open  bool
	Error error
}

type ConsoleModel struct {
	// Serial session
	port     *serial.Port
	portPath string

	// State
	open    bool
	rawData []components.DataMsg
	err     error
	ready   bool

	// Input mode (vim-like)
	inputMode InputMode

	// Data formatting
	formatter *components.DataFormatter

	// Cancellation and synchronization
	cancel context.CancelFunc
	ctx    context.Context
	mu     sync.RWMutex
}

func NewConsoleModel(portPath string) *ConsoleModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &ConsoleModel{
		portPath:  portPath,
		rawData:   make([]components.DataMsg, 0),
		inputMode: InputModeNormal,
		formatter: components.NewDataFormatter(true, true),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *ConsoleModel) GetPort() *serial.Port {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.port
}

func (m *ConsoleModel) SetPort(port *serial.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.port = port
}

func (m *ConsoleModel) GetPortPath() string {
	return m.portPath
}

func (m *ConsoleModel) IsOpen() bool {
	return m.open
}

func (m *ConsoleModel) SetOpen(open bool) {
	m.open = open
}

func (m *ConsoleModel) GetError() error {
	return m.err
}

func (m *ConsoleModel) SetError(err error) {
	m.err = err
}

func (m *ConsoleModel) IsReady() bool {
	return m.ready
}

func (m *ConsoleModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *ConsoleModel) GetRawData() []components.DataMsg {
	return m.rawData
}

func (m *ConsoleModel) AddRawData(msg components.DataMsg) {
	m.rawData = append(m.rawData, msg)
}

func (m *ConsoleModel) ClearData() {
	m.rawData = make([]components.DataMsg, 0)
}

func (m *ConsoleModel) GetFormattedData() []string {
	return m.formatter.FormatMessages(m.rawData)
}

func (m *ConsoleModel) FormatMessage(msg components.DataMsg) string {
	return m.formatter.FormatMessage(msg)
}

func (m *ConsoleModel) GetFormatter() *components.DataFormatter {
	return m.formatter
}

func (m *ConsoleModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *ConsoleModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *ConsoleModel) ToggleInputMode() InputMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.inputMode {
	case InputModeNormal:
		m.inputMode = InputModeInsert
	case InputModeInsert:
		m.inputMode = InputModeNormal
	}
	return m.inputMode
}

func (m *ConsoleModel) IsInInsertMode() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode == InputModeInsert
}

func (m *ConsoleModel) GetContext() context.Context {
	return m.ctx
}

func (m *ConsoleModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *ConsoleModel) Cleanup() {
	// Cancel context to stop the read goroutine
	if m.cancel != nil {
		m.cancel()
	}

	// Release the session safely
	m.mu.Lock()
	if m.port != nil {
		m.port.Dispose()
		m.port = nil
	}
	m.mu.Unlock()
}
