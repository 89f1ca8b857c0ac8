// Package rmxsynth streams synthesized MIDI into beep audio pipelines.
//
// A Plugin loads the soundfont once per process. Audio assets come from the
// midi.Loader; every Audio.Decoder call starts an independent playback that
// renders in the background and is read sample by sample without blocking.
package rmxsynth

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rapidmidiex/rmxsynth/decoder"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/soundfont"
	"github.com/rapidmidiex/rmxsynth/synth"
)

// Plugin configures the soundfont shared by every playback.
type Plugin struct {
	// Reader for soundfont data. There is no default, soundfonts are large.
	Soundfont io.Reader
}

// Build parses the soundfont into the process-wide handle. It fails when the
// bytes are not a soundfont or when a soundfont was already installed.
func (p Plugin) Build() error {
	if p.Soundfont == nil {
		return fmt.Errorf("rmxsynth: plugin has no soundfont reader")
	}
	if _, err := soundfont.Init(p.Soundfont); err != nil {
		return fmt.Errorf("rmxsynth: %w", err)
	}
	return nil
}

// Audio is a loaded MIDI asset.
type Audio struct {
	Name   string
	Source midi.Source
}

// Load reads an asset through the midi.Loader, picking the variant from the
// extension of name.
func Load(ctx context.Context, name string, r io.Reader) (Audio, error) {
	src, err := midi.Loader{}.Load(ctx, name, r)
	if err != nil {
		return Audio{}, err
	}
	return Audio{Name: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), Source: src}, nil
}

// LoadFile opens path and loads it.
func LoadFile(ctx context.Context, path string) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, err
	}
	defer f.Close()
	return Load(ctx, path, f)
}

// Decoder starts a playback of a bound to the shared soundfont. Options may
// override the factory.
func (a Audio) Decoder(opts ...decoder.Option) (*decoder.Decoder, error) {
	h, err := soundfont.Shared()
	if err != nil {
		return nil, fmt.Errorf("rmxsynth: %w", err)
	}
	return a.NewDecoder(synth.NewMeltyFactory(h), opts...), nil
}

// NewDecoder starts a playback of a with engines built by f.
func (a Audio) NewDecoder(f synth.Factory, opts ...decoder.Option) *decoder.Decoder {
	return decoder.New(a.Source, append([]decoder.Option{decoder.WithFactory(f)}, opts...)...)
}
