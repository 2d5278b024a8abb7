package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of the notes client. List bindings apply
// when the sidebar has focus; editor bindings while a note is open.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	New    key.Binding
	Delete key.Binding
	Search key.Binding
	Reload key.Binding

	Save       key.Binding
	NextField  key.Binding
	Close      key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	ClearQuery key.Binding

	Quit      key.Binding
	ForceQuit key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new note")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),

	Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("C-s", "save")),
	NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "title/content")),
	Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Confirm:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
	Cancel:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "cancel")),
	ClearQuery: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),

	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}
