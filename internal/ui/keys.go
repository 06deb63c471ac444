package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	toggle  key.Binding
	back    key.Binding
	forward key.Binding
	rewind  key.Binding
	prev    key.Binding
	next    key.Binding
	help    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "play/pause"),
		),
		back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "-5%"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "+5%"),
		),
		rewind: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "restart"),
		),
		prev: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.back, k.forward},
		{k.rewind, k.prev, k.next},
		{k.help, k.quit},
	}
}
