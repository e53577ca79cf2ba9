package keys

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeys holds the key bindings for the interactive console
type ConsoleKeys struct {
	Quit           key.Binding
	Help           key.Binding
	InsertMode     key.Binding
	Escape         key.Binding
	Enter          key.Binding
	Clear          key.Binding
	ToggleHex      key.Binding
	ToggleSendMode key.Binding
	FlushInput     key.Binding
	Up             key.Binding
	Down           key.Binding
}

func NewConsoleKeys() ConsoleKeys {
	return ConsoleKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		InsertMode: key.NewBinding(
			key.WithKeys("i", "I"),
			key.WithHelp("i", "insert mode"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "normal mode"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear buffer"),
		),
		ToggleHex: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "toggle hex"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle send mode"),
		),
		FlushInput: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "discard buffered input"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

func (k ConsoleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Enter, k.Quit}
}

func (k ConsoleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter, k.ToggleSendMode},
		{k.Clear, k.ToggleHex, k.FlushInput},
		{k.Up, k.Down, k.Help, k.Quit},
	}
}
