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

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen [port]",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port with a real-time display.

This command opens the specified serial port and displays incoming data
as it arrives, with timestamps and switchable ASCII/hex rendering. It is
the receive-only counterpart of the console command: no input field, no
send mode.

Example usage:
  sttyctl listen /dev/ttyUSB0
  sttyctl listen "/dev/ttyACM*" --baud 9600
  sttyctl listen /dev/ttyS0 --parity even`,
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

		if err := runListenTUI(device, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	addLineFlags(listenCmd)
}

// listenModel represents the Bubble Tea model for the listen command
type listenModel struct {
	*models.ConsoleModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.ConsoleKeys
}

func runListenTUI(portPath string, opts ...serial.Option) error {
	port, err := serial.New(portPath, opts...)
	if err != nil {
		return err
	}

	listenSession := models.NewConsoleModel(portPath)
	listenSession.SetPort(port)

	m := listenModel{
		ConsoleModel: listenSession,
		terminal:     components.NewTerminal(0, 0),
		statusBar:    components.NewStatusBar("Serial Listen", portPath),
		help:         help.New(),
		keys:         keys.NewConsoleKeys(),
	}
	m.statusBar.SetParams(components.LineParamsFromPort(port))

	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		if err := port.Open(); err != nil {
			p.Send(models.SessionStatusMsg{Open: false, Error: err})
			return
		}

		p.Send(models.SessionStatusMsg{Open: true, Error: nil})

		go readLoop(m.GetContext(), port, p.Send)
	}()

	_, err = p.Run()

	m.Cleanup()
	return err
}

func (m *listenModel) Init() tea.Cmd {
	return nil
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Status bar is single line
		statusBarHeight := 1

		m.terminal.SetSize(msg.Width, msg.Height-statusBarHeight)
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
		}

	case components.DataMsg:
		if m.IsReady() {
			m.AddRawData(msg)
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
			m.Cleanup()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.ClearData()
			m.terminal.Clear()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
			m.terminal.Refresh(m.GetRawData())

		case key.Matches(msg, m.keys.FlushInput):
			cmds = append(cmds, m.flushListenInput())

		case key.Matches(msg, m.keys.Up):
			m.terminal.ScrollUp()

		case key.Matches(msg, m.keys.Down):
			m.terminal.ScrollDown()
		}
	}

	var cmd tea.Cmd
	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// flushListenInput discards pending input, mirroring the console binding
func (m *listenModel) flushListenInput() tea.Cmd {
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

func (m *listenModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	contentWithBorder := styles.ContentBorderStyle.Render(content)
	statusBar := m.statusBar.View("LISTEN")

	sections := []string{contentWithBorder, statusBar}
	if m.help.ShowAll {
		sections = append(sections, m.help.View(m.keys))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
