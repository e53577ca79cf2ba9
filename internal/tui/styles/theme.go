package styles

import (
	"github.com/allbin/stty-serial/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	StatusOpenStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	StatusClosedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusOpeningStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red).
			Align(lipgloss.Center)

	ParamStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)
)

// SessionStatus mirrors the port lifecycle for display purposes
type SessionStatus int

const (
	StatusOpening SessionStatus = iota
	StatusOpen
	StatusClosed
	StatusError
)

func GetStatusStyle(status SessionStatus) lipgloss.Style {
	switch status {
	case StatusOpen:
		return StatusOpenStyle
	case StatusOpening:
		return StatusOpeningStyle
	default:
		return StatusClosedStyle
	}
}
