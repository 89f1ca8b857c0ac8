package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type Mapping struct {
	Select key.Binding
	Pause  key.Binding
	GoBack key.Binding
	Quit   key.Binding
}

var DefaultMapping = Mapping{
	Select: key.NewBinding(
		key.WithKeys(tea.KeyEnter.String()),
		key.WithHelp("enter", "play"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	GoBack: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "go back"),
	),
	Quit: key.NewBinding(
		key.WithKeys(tea.KeyCtrlC.String()),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// LibraryHelp is the help.KeyMap of the library view.
type LibraryHelp struct{ Mapping }

func (h LibraryHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.Select, h.Quit}
}

func (h LibraryHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}

// PlayerHelp is the help.KeyMap of the player view.
type PlayerHelp struct{ Mapping }

func (h PlayerHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.Pause, h.GoBack, h.Quit}
}

func (h PlayerHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
