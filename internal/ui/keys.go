package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/parkerfly38/shulpick/internal/searchselect"
)

// keyMap holds the form-level bindings. Picker bindings come from the
// focused field and are merged in for help.
type keyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Submit     key.Binding
	Abort      key.Binding
	CycleTheme key.Binding
	Help       key.Binding

	picker searchselect.KeyMap
}

// DefaultKeyMap returns the default form bindings. None of them are
// printable so they never collide with typing into a field.
func DefaultKeyMap() keyMap {
	return keyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "submit"),
		),
		Abort: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "more keys"),
		),
		picker: searchselect.DefaultKeyMap(),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.picker.Down, k.picker.Select, k.Next, k.Submit, k.Help, k.Abort}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	out := k.picker.FullHelp()
	return append(out,
		[]key.Binding{k.Next, k.Prev},
		[]key.Binding{k.Submit, k.CycleTheme},
		[]key.Binding{k.Help, k.Abort},
	)
}
