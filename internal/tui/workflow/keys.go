package workflow

import "github.com/charmbracelet/bubbles/key"

type collectingKeyMap struct {
	Record   key.Binding
	Next     key.Binding
	Prev     key.Binding
	Add      key.Binding
	Up       key.Binding
	Down     key.Binding
	Remove   key.Binding
	Generate key.Binding
}

func defaultCollectingKeyMap() collectingKeyMap {
	return collectingKeyMap{
		Record: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "record/stop"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
		Add: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add file"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", "select"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
		),
		Remove: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "remove selected"),
		),
		Generate: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "generate intake form"),
		),
	}
}

type presentingKeyMap struct {
	Print      key.Binding
	Save       key.Binding
	Transcript key.Binding
	New        key.Binding
	Scroll     key.Binding
}

func defaultPresentingKeyMap() presentingKeyMap {
	return presentingKeyMap{
		Print: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "print"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Transcript: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "form/transcript"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new intake"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "pgup", "pgdown"),
			key.WithHelp("↑/↓", "scroll"),
		),
	}
}
