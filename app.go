package rmxsynth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/rapidmidiex/rmxsynth/blockstat"
	"github.com/rapidmidiex/rmxsynth/config"
	"github.com/rapidmidiex/rmxsynth/decoder"
	"github.com/rapidmidiex/rmxsynth/keymap"
	"github.com/rapidmidiex/rmxsynth/libraryui"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/playerui"
	"github.com/rapidmidiex/rmxsynth/rmxerr"
	"github.com/rapidmidiex/rmxsynth/soundfont"
	"github.com/rapidmidiex/rmxsynth/styles"
	"github.com/rapidmidiex/rmxsynth/synth"
)

// ********
// Code heavily based on "Project Journal"
// https://github.com/bashbunni/pjs
// https://www.youtube.com/watch?v=uJ2egAkSkjg&t=319s
// ********

type (
	// Session is everything the interactive player needs.
	Session struct {
		Factory synth.Factory
		Options []decoder.Option
		Output  playerui.Output
		// Directory to browse once the queue is empty. Optional.
		Library string
		// Assets played in order before the library is shown.
		Queue []Audio
		// Audio length of one engine call.
		BlockAudio time.Duration
	}

	appView int

	advanceMsg struct{}

	mainModel struct {
		curView  appView
		library  libraryui.Model
		player   playerui.Model
		session  Session
		queue    []Audio
		curError string
	}
)

const (
	libraryView appView = iota
	playerView
)

func NewModel(s Session) mainModel {
	m := mainModel{
		curView: libraryView,
		player:  playerui.New(s.Output, s.BlockAudio),
		session: s,
		queue:   append([]Audio(nil), s.Queue...),
	}
	if s.Library != "" {
		m.library = libraryui.New(s.Library)
	}
	if len(m.queue) > 0 {
		m.curView = playerView
	}
	return m
}

func (m mainModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.session.Library != "" {
		cmds = append(cmds, m.library.Init())
	}
	if len(m.queue) > 0 {
		cmds = append(cmds, advance)
	}
	return tea.Batch(cmds...)
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case rmxerr.ErrMsg:
		m.curError = msg.Error()

	case tea.KeyMsg:
		// Ctrl+c exits from every view.
		if key.Matches(msg, keymap.DefaultMapping.Quit) {
			m.player.Stop()
			return m, tea.Quit
		}
		m.curError = ""
		switch m.curView {
		case libraryView:
			var lib tea.Model
			lib, cmd = m.library.Update(msg)
			m.library = lib.(libraryui.Model)
		case playerView:
			var p tea.Model
			p, cmd = m.player.Update(msg)
			m.player = p.(playerui.Model)
		}
		return m, cmd

	case advanceMsg:
		if len(m.queue) == 0 {
			return m, nil
		}
		next := m.queue[0]
		m.queue = m.queue[1:]
		return m, m.start(next)

	case libraryui.FileSelected:
		return m, m.open(msg.Path)

	case playerui.StartMsg:
		m.curView = playerView

	case playerui.LeaveMsg:
		switch {
		case len(m.queue) > 0:
			return m, advance
		case m.session.Library != "":
			m.curView = libraryView
			return m, m.library.Refresh()
		default:
			return m, tea.Quit
		}
	}

	// Sub-models see every message that is not a key press.
	if m.session.Library != "" {
		var lib tea.Model
		lib, cmd = m.library.Update(msg)
		m.library = lib.(libraryui.Model)
		cmds = append(cmds, cmd)
	}
	var p tea.Model
	p, cmd = m.player.Update(msg)
	m.player = p.(playerui.Model)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m mainModel) View() string {
	var errLine string
	if m.curError != "" {
		errLine = "\n" + styles.RenderError(m.curError) + "\n"
	}

	switch m.curView {
	case playerView:
		return errLine + m.player.View()
	default:
		return errLine + m.library.View()
	}
}

func advance() tea.Msg {
	return advanceMsg{}
}

func (m mainModel) start(a Audio) tea.Cmd {
	return func() tea.Msg {
		return m.startMsg(a)
	}
}

func (m mainModel) startMsg(a Audio) tea.Msg {
	return playerui.StartMsg{
		Name:    a.Name,
		Decoder: a.NewDecoder(m.session.Factory, m.session.Options...),
	}
}

func (m mainModel) open(path string) tea.Cmd {
	return func() tea.Msg {
		a, err := LoadFile(context.Background(), path)
		if err != nil {
			return rmxerr.ErrMsg{Err: fmt.Errorf("open: %w", err)}
		}
		return m.startMsg(a)
	}
}

// DecoderOptions maps cfg onto decoder options.
func DecoderOptions(cfg *config.Config, log *slog.Logger) []decoder.Option {
	loop := synth.SingleShot
	if cfg.Playback.Loop {
		loop = synth.Loop
	}
	return []decoder.Option{
		decoder.WithBufferSeconds(cfg.Audio.BufferSeconds),
		decoder.WithLoop(loop),
		decoder.WithLogger(log),
	}
}

// Run starts the interactive player on the default audio device. The shared
// soundfont must have been installed with Plugin.Build. library may be empty.
func Run(cfg *config.Config, library string, queue []Audio) error {
	h, err := soundfont.Shared()
	if err != nil {
		return fmt.Errorf("rmxsynth: %w", err)
	}

	sr := beep.SampleRate(midi.SampleRate)
	if err := speaker.Init(sr, sr.N(cfg.Audio.SpeakerBuffer)); err != nil {
		return fmt.Errorf("rmxsynth: init speaker: %w", err)
	}

	m := NewModel(Session{
		Factory:    synth.NewMeltyFactory(h),
		Options:    DecoderOptions(cfg, slog.Default()),
		Output:     playerui.Speaker{},
		Library:    library,
		Queue:      queue,
		BlockAudio: blockstat.AudioLength(midi.SampleRate, midi.SampleRate),
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(mainModel); ok {
		fm.player.Stop()
	}
	return err
}
