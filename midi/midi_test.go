package midi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/stretchr/testify/require"
)

func TestNote(t *testing.T) {
	t.Run("defaults to middle C for one second", func(t *testing.T) {
		want := midi.Note{Channel: 0, Preset: 0, Key: 60, Velocity: 100, Duration: time.Second}
		require.Equal(t, want, midi.DefaultNote())
	})

	t.Run("frame count rounds down", func(t *testing.T) {
		cases := []struct {
			dur  time.Duration
			want int
		}{
			{time.Second, 44100},
			{500 * time.Millisecond, 22050},
			{time.Millisecond, 44},
			{10 * time.Microsecond, 0},
			{0, 0},
			{-time.Second, 0},
		}
		for _, c := range cases {
			n := midi.Note{Duration: c.dur}
			require.Equal(t, c.want, n.Frames(midi.SampleRate), "duration %s", c.dur)
		}
	})

	t.Run("sequence frames sum the notes", func(t *testing.T) {
		seq := midi.Sequence{
			{Duration: time.Second},
			{Duration: 250 * time.Millisecond},
		}
		require.Equal(t, 44100+11025, seq.Frames(midi.SampleRate))
	})
}

func TestNoteJSON(t *testing.T) {
	t.Run("fills omitted fields from the default note", func(t *testing.T) {
		var seq midi.Sequence
		err := json.Unmarshal([]byte(`[{"key": 64, "duration": "250ms"}, {}]`), &seq)
		require.NoError(t, err)

		first := midi.DefaultNote()
		first.Key = 64
		first.Duration = 250 * time.Millisecond
		require.Equal(t, midi.Sequence{first, midi.DefaultNote()}, seq)
	})

	t.Run("keeps explicit zero values", func(t *testing.T) {
		var n midi.Note
		require.NoError(t, json.Unmarshal([]byte(`{"key": 0, "velocity": 0}`), &n))
		require.Equal(t, 0, n.Key)
		require.Equal(t, 0, n.Velocity)
	})

	t.Run("rejects bad durations", func(t *testing.T) {
		var n midi.Note
		require.Error(t, json.Unmarshal([]byte(`{"duration": "soon"}`), &n))
		require.Error(t, json.Unmarshal([]byte(`{"duration": "-1s"}`), &n))
	})

	t.Run("encodes the duration as a string", func(t *testing.T) {
		got, err := json.Marshal(midi.Note{Key: 61, Duration: 1500 * time.Millisecond})
		require.NoError(t, err)
		require.Contains(t, string(got), `"duration":"1.5s"`)

		var back midi.Note
		require.NoError(t, json.Unmarshal(got, &back))
		require.Equal(t, 61, back.Key)
		require.Equal(t, 1500*time.Millisecond, back.Duration)
	})
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	var l midi.Loader

	t.Run("copies midi bytes without validating them", func(t *testing.T) {
		data := []byte("definitely not a midi file")
		for _, name := range []string{"song.mid", "SONG.MIDI"} {
			src, err := l.Load(ctx, name, bytes.NewReader(data))
			require.NoError(t, err)
			require.Equal(t, midi.File(data), src)
			require.Equal(t, "file", src.Kind())
		}
	})

	t.Run("decodes json note lists", func(t *testing.T) {
		src, err := l.Load(ctx, "tune.json", strings.NewReader(`[{"key": 67}]`))
		require.NoError(t, err)
		require.Equal(t, "sequence", src.Kind())
		seq := src.(midi.Sequence)
		require.Len(t, seq, 1)
		require.Equal(t, 67, seq[0].Key)
	})

	t.Run("rejects unknown extensions", func(t *testing.T) {
		_, err := l.Load(ctx, "notes.txt", strings.NewReader(""))
		require.Error(t, err)
		require.False(t, l.Handles("notes.txt"))
		require.True(t, l.Handles("a/b/c.Mid"))
	})

	t.Run("lists handled extensions", func(t *testing.T) {
		require.Equal(t, []string{"mid", "midi", "json"}, l.Extensions())
	})

	t.Run("names the kind without reading", func(t *testing.T) {
		require.Equal(t, "file", l.Kind("x.midi"))
		require.Equal(t, "sequence", l.Kind("x.JSON"))
		require.Empty(t, l.Kind("x.wav"))
	})
}
