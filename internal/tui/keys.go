package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit          key.Binding
	NextField     key.Binding
	Enter         key.Binding
	ChangeProfile key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
}

var keys = keyMap{
	Quit:          key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	NextField:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
	Enter:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	ChangeProfile: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "change profile")),
	ScrollUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	ScrollDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.ChangeProfile, k.ScrollUp, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enter, k.ChangeProfile},
		{k.ScrollUp, k.ScrollDown, k.Quit},
	}
}

// entryKeys is the help shown while the entry form is open.
type entryKeys struct{ keyMap }

func (k entryKeys) ShortHelp() []key.Binding {
	return []key.Binding{
		k.NextField,
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "load photo / enter chat")),
		k.Quit,
	}
}
