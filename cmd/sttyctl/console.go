/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	serial "github.com/allbin/stty-serial"
	"github.com/allbin/stty-serial/internal/tui/components"
	"github.com/allbin/stty-serial/internal/tui/keys"
	"github.com/allbin/stty-serial/internal/tui/models"
	"github.com/allbin/stty-serial/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// consoleCmd represents the console command
var consoleCmd = &cobra.Command{
	Use:   "console [port]",
	Short: "Open an interactive serial console",
	Long: `Open an interactive serial console with bidirectional communication.

The console shows incoming data in real time with timestamps, and has a
vim-like input field for sending data in ASCII or hex mode. Line
parameters are shown in the status bar.

The port argument may contain wildcards; when omitted, the device from
the config file or --device flag is used.

Example usage:
  sttyctl console /dev/ttyUSB0
  sttyctl console "/dev/ttyACM*" --baud 115200
  sttyctl console /dev/ttyS0 --parity even --stop-bits 2`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := viper.GetString("device")
		if len(args) == 1 {
			device = args[0]
		}
		if device == "" {
			fmt.Fprintln(os.Stderr, "Error: no device given (use --device or the config file)")
			os.Exit(1)
		}

		opts, err := lineOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runConsoleTUI(device, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	addLineFlags(consoleCmd)
}

// consoleModel represents the Bubble Tea model for the console command
type consoleModel struct {
	*models.ConsoleModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.ConsoleKeys
}

func runConsoleTUI(portPath string, opts ...serial.Option) error {
	port, err := serial.New(portPath, opts...)
	if err != nil {
		return err
	}

	consoleSession := models.NewConsoleModel(portPath)
	consoleSession.SetPort(port)

	m := consoleModel{
		ConsoleModel: consoleSession,
		terminal:     components.NewTerminal(0, 0), // sized by the first WindowSizeMsg
		statusBar:    components.NewStatusBar("Serial Console", portPath),
		input:        components.NewInput(),
		help:         help.New(),
		keys:         keys.NewConsoleKeys(),
	}
	m.statusBar.SetParams(components.LineParamsFromPort(port))

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Open the port in the background so the UI comes up immediately
	go func() {
		if err := port.Open(); err != nil {
			p.Send(models.SessionStatusMsg{Open: false, Error: err})
			return
		}

		p.Send(models.SessionStatusMsg{Open: true, Error: nil})

		// Reader goroutine. Dispose() in Cleanup closes the descriptor,
		// which unblocks the Read inside the loop.
		go readLoop(m.GetContext(), port, p.Send)
	}()

	_, err = p.Run()

	m.Cleanup()
	return err
}

// readLoop pumps incoming port data into the program until the context
// is cancelled or the port stops delivering. A persistent read error
// (device unplugged, hangup) is reported once as a session status
// change and ends the loop; retrying in place would spin the CPU.
func readLoop(ctx context.Context, port *serial.Port, send func(tea.Msg)) {
	buffer := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := port.Read(buffer)
		if err != nil {
			if ctx.Err() != nil || !port.IsOpen() {
				return
			}
			send(models.SessionStatusMsg{Open: false, Error: err})
			return
		}
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])
			send(components.DataMsg{
				Timestamp: time.Now(),
				Data:      data,
			})
		}
	}
}

func (m *consoleModel) Init() tea.Cmd {
	return nil
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Input area height (includes border)
		inputHeight := 3
		// Status bar is single line
		statusBarHeight := 1
		verticalMarginHeight := inputHeight + statusBarHeight

		m.terminal.SetSize(msg.Width, msg.Height-verticalMarginHeight)
		m.input.SetWidth(msg.Width)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.SessionStatusMsg:
		m.SetOpen(msg.Open)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetClosed(msg.Error)
		} else {
			m.statusBar.SetOpen()
			if port := m.GetPort(); port != nil {
				m.statusBar.SetPortPath(port.PortName())
				m.statusBar.SetParams(components.LineParamsFromPort(port))
			}
			m.input.Focus()
		}

	case components.DataMsg:
		if m.IsReady() {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Enter):
				cmds = append(cmds, m.sendInput()...)
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Up):
				m.input.HistoryUp()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.Down):
				m.input.HistoryDown()
				return m, tea.Batch(cmds...)
			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendMode()
				return m, tea.Batch(cmds...)
			}
		} else {
			switch {
			case key.Matches(msg, m.keys.Quit):
				m.Cleanup()
				return m, tea.Quit

			case key.Matches(msg, m.keys.InsertMode):
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
				return m, tea.Batch(cmds...)

			case key.Matches(msg, m.keys.Clear):
				m.ClearData()
				m.terminal.Clear()

			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll

			case key.Matches(msg, m.keys.ToggleHex):
				m.terminal.ToggleHex()
				m.terminal.Refresh(m.GetRawData())

			case key.Matches(msg, m.keys.ToggleSendMode):
				m.input.ToggleSendMode()

			case key.Matches(msg, m.keys.FlushInput):
				cmds = append(cmds, m.flushInput())

			case key.Matches(msg, m.keys.Up):
				m.terminal.ScrollUp()

			case key.Matches(msg, m.keys.Down):
				m.terminal.ScrollDown()
			}
		}
	}

	// Update components (only update input in insert mode)
	var cmd tea.Cmd
	if m.IsInInsertMode() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// sendInput writes the input field contents to the port
func (m *consoleModel) sendInput() []tea.Cmd {
	port := m.GetPort()
	if m.input.Value() == "" || port == nil || !m.IsOpen() {
		return nil
	}

	inputStr := m.input.Value()
	var dataToSend []byte
	var displayData []byte

	switch m.input.SendMode() {
	case components.SendModeASCII:
		dataToSend = []byte(inputStr + "\n")
		displayData = []byte(inputStr)
	case components.SendModeHex:
		parsed, err := parseHexInput(inputStr)
		if err != nil {
			m.terminal.AddMessage(components.DataMsg{
				Timestamp: time.Now(),
				Data:      []byte(fmt.Sprintf("invalid hex input: %v", err)),
			})
			return nil
		}
		dataToSend = parsed
		displayData = parsed
	}

	m.input.AddToHistory(inputStr)
	m.input.SetValue("")

	return []tea.Cmd{func() tea.Msg {
		_, err := port.Write(dataToSend)
		return components.DataMsg{
			Timestamp: time.Now(),
			Data:      displayData,
			IsTX:      true,
			Err:       err,
		}
	}}
}

// flushInput discards pending input on the port
func (m *consoleModel) flushInput() tea.Cmd {
	port := m.GetPort()
	if port == nil || !m.IsOpen() {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.GetContext(), 2*time.Second)
		defer cancel()

		err := port.DiscardInputContext(ctx)
		data := []byte("input buffer flushed")
		if err != nil {
			data = []byte(fmt.Sprintf("flush failed: %v", err))
		}
		return components.DataMsg{
			Timestamp: time.Now(),
			Data:      data,
		}
	}
}

func (m *consoleModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	inputMode := m.GetInputMode()
	input := m.input.View(m.IsInInsertMode())

	contentWithBorder := styles.ContentBorderStyle.Render(content)
	statusBar := m.statusBar.View(inputMode.String() + " " + m.input.SendMode().String())

	sections := []string{contentWithBorder, input, statusBar}
	if m.help.ShowAll {
		sections = append(sections, m.help.View(m.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
