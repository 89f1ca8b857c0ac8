package rmxsynth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/faiface/beep/wav"
	"github.com/rapidmidiex/rmxsynth/decoder"
	"github.com/rapidmidiex/rmxsynth/synth"
	"golang.org/x/sync/errgroup"
)

// Renderer writes whole playbacks to WAV files instead of a device.
type Renderer struct {
	Factory synth.Factory
	Options []decoder.Option
	Logger  *slog.Logger
}

// Render encodes a into w as 16-bit stereo WAV.
func (r Renderer) Render(ctx context.Context, w io.WriteSeeker, a Audio) error {
	d := a.NewDecoder(r.Factory, r.Options...)
	defer d.Close()

	stop := context.AfterFunc(ctx, func() { d.Close() })
	defer stop()

	if err := wav.Encode(w, d.Offline(), d.Format()); err != nil {
		return fmt.Errorf("encode %s: %w", a.Name, err)
	}
	d.Close()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.Task().Err(); err != nil {
		return fmt.Errorf("render %s: %w", a.Name, err)
	}
	return nil
}

// RenderAll renders every asset into dir/<name>.wav concurrently. All
// playbacks share the same factory and thus the same soundfont.
func (r Renderer) RenderAll(ctx context.Context, dir string, audios []Audio) error {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, a := range audios {
		g.Go(func() error {
			path := filepath.Join(dir, a.Name+".wav")
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := r.Render(ctx, f, a); err != nil {
				return err
			}
			log.Info("rendered", "name", a.Name, "path", path, "source", a.Source.Kind())
			return f.Close()
		})
	}
	return g.Wait()
}
