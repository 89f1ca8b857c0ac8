package rmxsynth_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rapidmidiex/rmxsynth"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/rmxerr"
	"github.com/rapidmidiex/rmxsynth/soundfont"
	"github.com/rapidmidiex/rmxsynth/synth/mock"
	"github.com/stretchr/testify/require"
)

// wavHeader is the size of the RIFF header beep writes.
const wavHeader = 44

func TestPlugin(t *testing.T) {
	t.Run("needs a soundfont reader", func(t *testing.T) {
		require.Error(t, rmxsynth.Plugin{}.Build())
	})

	t.Run("rejects bytes that are not a soundfont", func(t *testing.T) {
		err := rmxsynth.Plugin{Soundfont: strings.NewReader("not a riff file")}.Build()
		require.ErrorIs(t, err, rmxerr.ErrBadSoundfont)
	})

	t.Run("decoders need an installed soundfont", func(t *testing.T) {
		_, err := tune().Decoder()
		require.ErrorIs(t, err, soundfont.ErrNotInitialized)
	})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("names the asset after the file", func(t *testing.T) {
		a, err := rmxsynth.Load(ctx, "songs/intro.mid", strings.NewReader("MThd"))
		require.NoError(t, err)
		require.Equal(t, "intro", a.Name)
		require.Equal(t, midi.File("MThd"), a.Source)
	})

	t.Run("reports missing files", func(t *testing.T) {
		_, err := rmxsynth.LoadFile(ctx, filepath.Join(t.TempDir(), "none.mid"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRenderer(t *testing.T) {
	ctx := context.Background()

	t.Run("writes one wav per asset", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		r := rmxsynth.Renderer{Factory: &mock.Factory{}}
		short := rmxsynth.Audio{Name: "short", Source: midi.Sequence{{Duration: 10 * time.Millisecond}}}

		require.NoError(t, r.RenderAll(ctx, dir, []rmxsynth.Audio{tune(), short}))

		for _, name := range []string{"tune", "short"} {
			info, err := os.Stat(filepath.Join(dir, name+".wav"))
			require.NoError(t, err)
			// 441 frames of two 16-bit samples.
			require.Equal(t, int64(wavHeader+441*4), info.Size(), name)
		}
	})

	t.Run("fails on fatal playback errors", func(t *testing.T) {
		r := rmxsynth.Renderer{Factory: &mock.Factory{EngineErr: rmxerr.ErrEngine}}
		err := r.RenderAll(ctx, t.TempDir(), []rmxsynth.Audio{tune()})
		require.ErrorIs(t, err, rmxerr.ErrEngine)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		r := rmxsynth.Renderer{Factory: &mock.Factory{}}
		long := rmxsynth.Audio{Name: "long", Source: midi.Sequence{{Duration: time.Hour}}}
		err := r.RenderAll(ctx, t.TempDir(), []rmxsynth.Audio{long})
		require.ErrorIs(t, err, context.Canceled)
	})
}
