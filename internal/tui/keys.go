package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Timer     key.Binding
	State     key.Binding
	Increment key.Binding
	Rename    key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Timer:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle timer")),
		State:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle tree")),
		Increment: key.NewBinding(key.WithKeys("i", "+"), key.WithHelp("i", "increment")),
		Rename:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "rename video")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Timer, k.State, k.Increment, k.Rename, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
