package libraryui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rapidmidiex/rmxsynth/keymap"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/rmxerr"
	"github.com/rapidmidiex/rmxsynth/styles"
	"golang.org/x/term"
)

var (
	docStyle = styles.DocStyle
)

type (
	// Entry is a loadable file in the library directory.
	Entry struct {
		Name string
		Path string
		Kind string
		Size int64
	}

	// FileSelected asks the parent to start a playback of Path.
	FileSelected struct {
		Path string
	}

	entriesMsg struct {
		entries []Entry
	}

	Model struct {
		dir     string
		entries []Entry
		table   table.Model
		help    help.Model
		loading bool
		err     error
	}
)

func New(dir string) Model {
	return Model{
		dir:     dir,
		help:    help.New(),
		loading: true,
	}
}

// Init lists the library directory.
func (m Model) Init() tea.Cmd {
	return listDir(m.dir)
}

// Refresh lists the directory again.
func (m Model) Refresh() tea.Cmd {
	return listDir(m.dir)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width - 10)
		m.help.Width = msg.Width
	case rmxerr.ErrMsg:
		m.err = msg
		m.loading = false
	case entriesMsg:
		m.entries = msg.entries
		m.table = makeTable(m.entries)
		m.table.Focus()
		m.loading = false
	case tea.KeyMsg:
		if key.Matches(msg, keymap.DefaultMapping.Select) {
			if e, ok := m.Selected(); ok {
				cmds = append(cmds, fileSelect(e.Path))
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// Selected returns the entry under the cursor.
func (m Model) Selected() (Entry, bool) {
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return Entry{}, false
	}
	for _, e := range m.entries {
		if e.Name == row[0] {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns the listed files.
func (m Model) Entries() []Entry {
	return m.entries
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	doc.WriteString(styles.BoldStyle.Render("Library: "+m.dir) + "\n\n")

	switch {
	case m.err != nil:
		doc.WriteString(styles.RenderError(m.err.Error()) + "\n")
	case len(m.entries) > 0:
		doc.WriteString(styles.BaseStyle.Width(styles.Width).Render(m.table.View()))
	case !m.loading:
		exts := strings.Join(midi.Loader{}.Extensions(), ", ")
		doc.WriteString(styles.MessageText.Render(fmt.Sprintf("Nothing to play here. Looking for: %s\n\n", exts)))
	}

	doc.WriteString("\n" + styles.HelpMenu.Render(m.help.View(keymap.LibraryHelp{Mapping: keymap.DefaultMapping})))

	if physicalWidth > 0 {
		docStyle = styles.DocStyle.MaxWidth(physicalWidth)
	}
	return docStyle.Render(doc.String())
}

func makeTable(entries []Entry) table.Model {
	columns := []table.Column{
		{Title: "Name", Width: 36},
		{Title: "Kind", Width: 10},
		{Title: "Size", Width: 10},
	}

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{e.Name, e.Kind, formatSize(e.Size)})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// Commands
func listDir(dir string) tea.Cmd {
	return func() tea.Msg {
		des, err := os.ReadDir(dir)
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("listDir: %w", err)}
		}

		l := midi.Loader{}
		entries := make([]Entry, 0, len(des))
		for _, de := range des {
			if de.IsDir() || !l.Handles(de.Name()) {
				continue
			}
			info, err := de.Info()
			if err != nil {
				return rmxerr.ErrMsg{Err: fmt.Errorf("listDir: %w", err)}
			}
			entries = append(entries, Entry{
				Name: de.Name(),
				Path: filepath.Join(dir, de.Name()),
				Kind: l.Kind(de.Name()),
				Size: info.Size(),
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		return entriesMsg{entries: entries}
	}
}

func fileSelect(path string) tea.Cmd {
	return func() tea.Msg {
		return FileSelected{Path: path}
	}
}
