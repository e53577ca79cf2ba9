package components

import (
	"fmt"
	"strings"

	serial "github.com/allbin/stty-serial"
	"github.com/allbin/stty-serial/internal/tui/colors"
	"github.com/allbin/stty-serial/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// LineParams holds the declared stty parameters shown in the status bar
type LineParams struct {
	BaudRate  int
	DataBits  int
	StopBits  serial.StopBits
	Parity    serial.Parity
	Handshake serial.Handshake
	RawMode   bool
}

// LineParamsFromPort snapshots the port's effective parameters
func LineParamsFromPort(port *serial.Port) LineParams {
	return LineParams{
		BaudRate:  port.BaudRate(),
		DataBits:  port.DataBits(),
		StopBits:  port.StopBits(),
		Parity:    port.Parity(),
		Handshake: port.Handshake(),
		RawMode:   port.RawMode(),
	}
}

type StatusBar struct {
	title    string
	portPath string
	status   styles.SessionStatus
	message  string
	err      error
	params   *LineParams
	width    int
}

func NewStatusBar(title, portPath string) *StatusBar {
	return &StatusBar{
		title:    title,
		portPath: portPath,
		status:   styles.StatusOpening,
		message:  "Opening...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetParams(params LineParams) {
	sb.params = &params
}

func (sb *StatusBar) SetPortPath(path string) {
	sb.portPath = path
}

func (sb *StatusBar) SetOpen() {
	sb.status = styles.StatusOpen
	sb.message = "Open"
	sb.err = nil
}

func (sb *StatusBar) SetClosed(err error) {
	sb.err = err
	if err != nil {
		sb.status = styles.StatusError
		sb.message = fmt.Sprintf("Error: %v", err)
	} else {
		sb.status = styles.StatusClosed
		sb.message = "Closed"
	}
}

func (sb *StatusBar) View(mode string) string {
	title := styles.TitleStyle.Render(sb.title)

	port := lipgloss.NewStyle().
		Foreground(colors.Blue).
		Bold(true).
		Render(sb.portPath)

	status := styles.GetStatusStyle(sb.status).Render(sb.message)

	modeIndicator := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Render(fmt.Sprintf("[%s]", mode))

	parts := []string{title, port, status, modeIndicator}
	if sb.params != nil {
		parts = append(parts, styles.ParamStyle.Render(sb.paramsSummary()))
	}

	line := strings.Join(parts, "  ")
	if sb.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(sb.width).Render(line)
	}
	return line
}

// paramsSummary renders e.g. "9600 8N1 raw" the way serial settings are
// conventionally abbreviated
func (sb *StatusBar) paramsSummary() string {
	p := sb.params

	parity := "N"
	switch p.Parity {
	case serial.ParityOdd:
		parity = "O"
	case serial.ParityEven:
		parity = "E"
	case serial.ParityMark:
		parity = "M"
	case serial.ParitySpace:
		parity = "S"
	}

	summary := fmt.Sprintf("%d %d%s%s", p.BaudRate, p.DataBits, parity, p.StopBits)
	if p.RawMode {
		summary += " raw"
	}
	if p.Handshake != serial.HandshakeNone {
		summary += " " + p.Handshake.String()
	}
	return summary
}
