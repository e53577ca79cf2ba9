package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/stty-serial/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// DataMsg is one received or transmitted chunk of bytes
type DataMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Err       error // for TX: write failure, shown inline
}

// DataFormatter renders data chunks for the console viewport
type DataFormatter struct {
	showHex   bool
	showASCII bool
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{showHex: showHex, showASCII: showASCII}
}

func (df *DataFormatter) ToggleHex() {
	df.showHex = !df.showHex
}

func (df *DataFormatter) ShowsHex() bool {
	return df.showHex
}

func (df *DataFormatter) FormatMessage(msg DataMsg) string {
	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(msg.Timestamp.Format("[15:04:05.000]"))

	var indicator string
	switch {
	case msg.IsTX && msg.Err != nil:
		indicator = lipgloss.NewStyle().Foreground(colors.Red).Bold(true).Render("↗ TX ✗")
	case msg.IsTX:
		indicator = lipgloss.NewStyle().Foreground(colors.Peach).Bold(true).Render("↗ TX")
	default:
		indicator = lipgloss.NewStyle().Foreground(colors.Sky).Bold(true).Render("↙ RX")
	}

	var parts []string
	if df.showHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}
	if df.showASCII {
		parts = append(parts, "ASCII: "+printable(msg.Data))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}
	if msg.Err != nil {
		parts = append(parts, "ERR: "+msg.Err.Error())
	}

	return fmt.Sprintf("%s %s: %s", timestamp, indicator, strings.Join(parts, "  "))
}

func (df *DataFormatter) FormatMessages(messages []DataMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

// printable replaces non-printable bytes with dots so control sequences
// never reach the terminal
func printable(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
