package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Graph   key.Binding
	Search  key.Binding
	Clear   key.Binding
	Dark    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Graph, k.Search, k.Clear, k.Dark, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Graph, k.Search, k.Clear},
		{k.Dark, k.Refresh},
		{k.Help, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Graph: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "graph view"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "jql search"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear cache"),
		),
		Dark: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dark mode"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
