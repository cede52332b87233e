package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Stats   key.Binding
	Start   key.Binding
	Stop    key.Binding
	Restart key.Binding
	Refresh key.Binding
	Filter  key.Binding
	More    key.Binding
	Fewer   key.Binding
	All     key.Binding
	Narrow  key.Binding
	Widen   key.Binding
	Range   key.Binding
	Quit    key.Binding

	AcceptFilter key.Binding
	CancelFilter key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Stats:   key.NewBinding(key.WithKeys("enter", "tab"), key.WithHelp("enter", "stats")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		More:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "card count")),
		Fewer:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer cards")),
		All:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "all cards")),
		Narrow:  key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "narrow/reset")),
		Widen:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "reset width")),
		Range:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "history range")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		AcceptFilter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply filter")),
		CancelFilter: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Stats, k.Start, k.Stop, k.Restart, k.Filter, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Stats, k.Start, k.Stop, k.Restart, k.Refresh},
		{k.Filter, k.More, k.All, k.Narrow, k.Range},
		{k.Quit},
	}
}
