package components

import (
	"strings"

	"github.com/allbin/stty-serial/internal/tui/colors"
	"github.com/allbin/stty-serial/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SendMode selects how typed input is interpreted before transmission
type SendMode int

const (
	SendModeASCII SendMode = iota
	SendModeHex
)

func (s SendMode) String() string {
	if s == SendModeHex {
		return "HEX"
	}
	return "ASCII"
}

// Input wraps the text input with send-mode switching and history
type Input struct {
	textInput    textinput.Model
	sendMode     SendMode
	history      []string
	historyIndex int
	pending      string // input saved while navigating history
	width        int
}

func NewInput() *Input {
	ti := textinput.New()
	ti.Placeholder = "Type message and press Enter to send..."
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.Focus()

	return &Input{
		textInput:    ti,
		sendMode:     SendModeASCII,
		historyIndex: -1,
	}
}

func (i *Input) SetWidth(width int) {
	i.width = width
	usable := width - 6
	if usable < 20 {
		usable = 20
	}
	i.textInput.Width = usable
}

func (i *Input) Focus() { i.textInput.Focus() }
func (i *Input) Blur()  { i.textInput.Blur() }

func (i *Input) Value() string         { return i.textInput.Value() }
func (i *Input) SetValue(value string) { i.textInput.SetValue(value) }

func (i *Input) SendMode() SendMode { return i.sendMode }

func (i *Input) ToggleSendMode() {
	if i.sendMode == SendModeASCII {
		i.sendMode = SendModeHex
		i.textInput.Placeholder = "Enter hex (e.g. 48656C6C6F or 48 65 6C 6C 6F)..."
	} else {
		i.sendMode = SendModeASCII
		i.textInput.Placeholder = "Type message and press Enter to send..."
	}
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

func (i *Input) View(isInsertMode bool) string {
	var promptStyle lipgloss.Style
	var promptSymbol string
	if i.sendMode == SendModeHex {
		promptSymbol = "#"
		promptStyle = lipgloss.NewStyle().Foreground(colors.Yellow).Bold(true)
	} else {
		promptSymbol = ">"
		promptStyle = lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	}
	prompt := promptStyle.Render(promptSymbol)

	var content string
	if isInsertMode {
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", i.textInput.View())
	} else {
		hint := lipgloss.NewStyle().
			Foreground(colors.Overlay0).
			Render("Press 'i' to enter insert mode")
		content = lipgloss.JoinHorizontal(lipgloss.Left, prompt, " ", hint)
	}

	width := i.width - 4
	if width < 10 {
		width = 10
	}
	style := styles.InputStyle.Width(width).AlignHorizontal(lipgloss.Left)
	if isInsertMode {
		style = style.BorderForeground(colors.Green)
	}
	return style.Render(content)
}

// AddToHistory records a sent line, skipping blanks and duplicates of
// the previous entry
func (i *Input) AddToHistory(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if len(i.history) > 0 && i.history[len(i.history)-1] == line {
		return
	}
	i.history = append(i.history, line)
	if len(i.history) > 100 {
		i.history = i.history[1:]
	}
	i.historyIndex = -1
	i.pending = ""
}

func (i *Input) HistoryUp() {
	if len(i.history) == 0 {
		return
	}
	if i.historyIndex == -1 {
		i.pending = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}
	i.textInput.SetValue(i.history[i.historyIndex])
}

func (i *Input) HistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}
	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.textInput.SetValue(i.history[i.historyIndex])
	} else {
		i.historyIndex = -1
		i.textInput.SetValue(i.pending)
		i.pending = ""
	}
}
