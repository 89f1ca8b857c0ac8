package playerui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"
	"github.com/rapidmidiex/rmxsynth/blockstat"
	"github.com/rapidmidiex/rmxsynth/decoder"
	"github.com/rapidmidiex/rmxsynth/keymap"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/styles"
	"github.com/rapidmidiex/rmxsynth/synth"
	"golang.org/x/term"
)

// refresh is how often the status of a playback is polled.
const refresh = 200 * time.Millisecond

var docStyle = styles.DocStyle

type (
	// StartMsg hands a fresh playback to the player.
	StartMsg struct {
		Name    string
		Decoder *decoder.Decoder
	}

	// LeaveMsg is sent once the playback has been stopped and closed.
	LeaveMsg struct{}

	tickMsg struct {
		gen int
	}

	Model struct {
		out        Output
		blockAudio time.Duration

		name string
		dec  *decoder.Decoder
		ctrl *beep.Ctrl
		// Incremented on every start so ticks of an old playback are dropped.
		gen int

		state    synth.State
		fill     float64
		written  uint64
		finished bool
		stats    blockstat.CalcMsg

		bar  progress.Model
		help help.Model
	}
)

// New returns a player writing to out. blockAudio is how much audio one
// engine call renders, used for the realtime factor.
func New(out Output, blockAudio time.Duration) Model {
	return Model{
		out:        out,
		blockAudio: blockAudio,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:       help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case StartMsg:
		m.Stop()
		m.gen++
		m.name = msg.Name
		m.dec = msg.Decoder
		m.ctrl = &beep.Ctrl{Streamer: msg.Decoder}
		m.state, m.fill, m.written, m.finished = synth.StateInit, 0, 0, false
		m.stats = blockstat.CalcMsg{}
		m.out.Play(m.ctrl)
		cmds = append(cmds, tick(m.gen))

	case tickMsg:
		if msg.gen != m.gen || m.dec == nil {
			return m, nil
		}
		m = m.poll()
		cmds = append(cmds, blockstat.CalcStats(m.dec.Task().Blocks(), m.blockAudio))
		if !m.finished {
			cmds = append(cmds, tick(m.gen))
		}

	case blockstat.CalcMsg:
		m.stats = msg

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.Pause):
			m.TogglePause()
		case key.Matches(msg, keymap.DefaultMapping.GoBack):
			cmds = append(cmds, m.leave())
			m.dec, m.ctrl = nil, nil
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) poll() Model {
	task := m.dec.Task()
	m.state = task.State()
	m.written = task.Written()
	if c := m.dec.Capacity(); c > 0 {
		m.fill = float64(m.dec.Buffered()) / float64(c)
	}
	m.finished = m.state == synth.StateDone && m.dec.Buffered() == 0
	return m
}

// TogglePause pauses or resumes the current playback. The task keeps
// rendering until the buffer is full.
func (m Model) TogglePause() {
	if m.ctrl == nil {
		return
	}
	m.out.Lock()
	m.ctrl.Paused = !m.ctrl.Paused
	m.out.Unlock()
}

// Paused reports whether the current playback is paused.
func (m Model) Paused() bool {
	if m.ctrl == nil {
		return false
	}
	m.out.Lock()
	defer m.out.Unlock()
	return m.ctrl.Paused
}

// Playing reports whether the player holds a playback.
func (m Model) Playing() bool {
	return m.dec != nil
}

// Stop silences the output and closes the current playback, waiting for its
// task to exit.
func (m Model) Stop() {
	if m.dec == nil {
		return
	}
	m.out.Clear()
	m.dec.Close()
}

func (m Model) leave() tea.Cmd {
	return func() tea.Msg {
		m.Stop()
		return LeaveMsg{}
	}
}

func tick(gen int) tea.Cmd {
	return tea.Tick(refresh, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	doc := strings.Builder{}

	if physicalWidth > 0 {
		docStyle = styles.DocStyle.MaxWidth(physicalWidth)
	}

	if m.dec == nil {
		doc.WriteString(styles.MessageText.Render("Nothing playing.\n"))
		return docStyle.Render(doc.String())
	}

	// Status bar
	{
		status := styles.StatusStyle.Render(m.statusLabel())
		if m.Paused() {
			status = styles.PausedStyle.Render("paused")
		}
		title := styles.StatusText.Render(m.name)
		doc.WriteString(status + title + "\n\n")
	}

	// Buffer
	{
		doc.WriteString("buffer  " + m.bar.ViewAs(m.fill) + "\n")
		played := blockstat.AudioLength(int(m.written/decoder.Channels), midi.SampleRate)
		doc.WriteString(fmt.Sprintf("written %d samples (%s)\n", m.written, played.Round(time.Millisecond)))
	}

	// Render stats
	if m.stats.Latest > 0 {
		doc.WriteString(fmt.Sprintf(
			"render  latest %s  avg %s  min %s  max %s  %.1fx realtime\n",
			m.stats.Latest.Round(time.Microsecond), m.stats.Avg,
			m.stats.Min.Round(time.Microsecond), m.stats.Max.Round(time.Microsecond),
			m.stats.Realtime,
		))
	}

	doc.WriteString("\n" + styles.HelpMenu.Render(m.help.View(keymap.PlayerHelp{Mapping: keymap.DefaultMapping})))
	return docStyle.Render(doc.String())
}

func (m Model) statusLabel() string {
	if m.finished {
		return "finished"
	}
	return m.state.String()
}
