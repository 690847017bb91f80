package cli

import "github.com/charmbracelet/bubbles/key"

// tuiKeyMap lists the live view key bindings. It satisfies help.KeyMap.
type tuiKeyMap struct {
	Toggle  key.Binding
	Project key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newTUIKeyMap() tuiKeyMap {
	return tuiKeyMap{
		Toggle:  key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s", "start/stop")),
		Project: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "project")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k tuiKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Project, k.Edit, k.Delete, k.Help, k.Quit}
}

func (k tuiKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Project, k.Refresh},
		{k.Up, k.Down, k.Edit, k.Delete},
		{k.Help, k.Quit},
	}
}
