package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Next            key.Binding
	Prev            key.Binding
	Toggle          key.Binding
	Run             key.Binding
	Clear           key.Binding
	Copy            key.Binding
	PickInput       key.Binding
	PickOutput      key.Binding
	PickInterpreter key.Binding
	Quit            key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle strict"),
		),
		Run: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "run"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear log"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy log"),
		),
		PickInput: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "pick wav"),
		),
		PickOutput: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "pick output"),
		),
		PickInterpreter: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "pick python"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// helpBindings are shown in the footer, in order.
func (k KeyMap) helpBindings() []key.Binding {
	return []key.Binding{k.Run, k.PickInput, k.PickOutput, k.PickInterpreter, k.Clear, k.Copy, k.Quit}
}
