package playerui_test

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/faiface/beep"
	"github.com/rapidmidiex/rmxsynth/decoder"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/playerui"
	"github.com/rapidmidiex/rmxsynth/synth/mock"
	"github.com/stretchr/testify/require"
)

type fakeOutput struct {
	mu      sync.Mutex
	played  []beep.Streamer
	cleared int
}

func (o *fakeOutput) Play(s beep.Streamer) { o.played = append(o.played, s) }
func (o *fakeOutput) Clear()               { o.cleared++ }
func (o *fakeOutput) Lock()                { o.mu.Lock() }
func (o *fakeOutput) Unlock()              { o.mu.Unlock() }

// messages runs cmd and every command batched inside it.
func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, messages(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func start(t *testing.T, out *fakeOutput, seq midi.Sequence) (playerui.Model, *decoder.Decoder) {
	t.Helper()
	d := decoder.New(seq, decoder.WithFactory(&mock.Factory{}))
	t.Cleanup(func() { d.Close() })

	m := playerui.New(out, time.Second)
	next, cmd := m.Update(playerui.StartMsg{Name: "tune", Decoder: d})
	require.NotNil(t, cmd)
	return next.(playerui.Model), d
}

func TestPlayer(t *testing.T) {
	seq := midi.Sequence{{Key: 60, Velocity: 100, Duration: 10 * time.Millisecond}}

	t.Run("plays the decoder on the output", func(t *testing.T) {
		out := &fakeOutput{}
		m, _ := start(t, out, seq)
		require.True(t, m.Playing())
		require.Len(t, out.played, 1)
		require.Contains(t, m.View(), "tune")
	})

	t.Run("space toggles pause", func(t *testing.T) {
		out := &fakeOutput{}
		m, _ := start(t, out, seq)
		space := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}

		next, _ := m.Update(space)
		require.True(t, next.(playerui.Model).Paused())
		require.Contains(t, next.View(), "paused")

		next, _ = next.Update(space)
		require.False(t, next.(playerui.Model).Paused())
	})

	t.Run("esc closes the playback and leaves", func(t *testing.T) {
		out := &fakeOutput{}
		m, d := start(t, out, seq)

		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		require.False(t, next.(playerui.Model).Playing())
		require.NotNil(t, cmd)
		require.Equal(t, []tea.Msg{playerui.LeaveMsg{}}, messages(cmd))
		require.Equal(t, 1, out.cleared)

		select {
		case <-d.Task().Done():
		default:
			t.Fatal("task still running after leaving")
		}
	})

	t.Run("a new start stops the previous playback", func(t *testing.T) {
		out := &fakeOutput{}
		m, first := start(t, out, seq)

		second := decoder.New(seq, decoder.WithFactory(&mock.Factory{}))
		t.Cleanup(func() { second.Close() })
		_, _ = m.Update(playerui.StartMsg{Name: "next", Decoder: second})

		require.Len(t, out.played, 2)
		select {
		case <-first.Task().Done():
		default:
			t.Fatal("first task still running")
		}
	})
}
