package synth

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rapidmidiex/rmxsynth/rmxerr"
	"github.com/rapidmidiex/rmxsynth/soundfont"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// MIDI program change status. The channel is passed separately.
const programChange = 0xC0

type (
	// Engine renders audio from MIDI events. *meltysynth.Synthesizer
	// satisfies it.
	Engine interface {
		ProcessMidiMessage(channel int32, command int32, data1 int32, data2 int32)
		NoteOn(channel int32, key int32, velocity int32)
		NoteOff(channel int32, key int32)
		Render(left []float32, right []float32)
	}

	// Sequencer plays a parsed MIDI file through an Engine.
	Sequencer interface {
		Render(left []float32, right []float32)
		EndOfSequence() bool
	}

	// Factory builds the per-playback engine and file sequencer.
	Factory interface {
		NewEngine(sampleRate int) (Engine, error)
		NewFileSequencer(engine Engine, sampleRate int, data []byte, loop bool) (Sequencer, error)
	}
)

// MeltyFactory builds meltysynth synthesizers bound to a shared soundfont.
type MeltyFactory struct {
	font *soundfont.Handle
}

func NewMeltyFactory(font *soundfont.Handle) *MeltyFactory {
	return &MeltyFactory{font: font}
}

func (f *MeltyFactory) NewEngine(sampleRate int) (Engine, error) {
	if f.font == nil || f.font.Font() == nil {
		return nil, fmt.Errorf("%w: no soundfont loaded", rmxerr.ErrEngine)
	}
	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	synthesizer, err := meltysynth.NewSynthesizer(f.font.Font(), settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rmxerr.ErrEngine, err)
	}
	return synthesizer, nil
}

func (f *MeltyFactory) NewFileSequencer(engine Engine, sampleRate int, data []byte, loop bool) (Sequencer, error) {
	midiFile, err := meltysynth.NewMidiFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rmxerr.ErrBadMIDIFile, err)
	}
	synthesizer, ok := engine.(*meltysynth.Synthesizer)
	if !ok {
		return nil, fmt.Errorf("%w: file playback needs a meltysynth synthesizer, got %T", rmxerr.ErrEngine, engine)
	}

	seq := meltysynth.NewMidiFileSequencer(synthesizer)
	seq.Play(midiFile, loop)
	return &fileSequencer{
		seq:        seq,
		length:     midiFile.GetLength(),
		loop:       loop,
		sampleRate: sampleRate,
	}, nil
}

// fileSequencer tracks rendered time, the end of a single-shot file is the
// point where it passes the file length.
type fileSequencer struct {
	seq        *meltysynth.MidiFileSequencer
	length     time.Duration
	loop       bool
	sampleRate int
	frames     int64
}

func (s *fileSequencer) Render(left, right []float32) {
	s.seq.Render(left, right)
	s.frames += int64(len(left))
}

func (s *fileSequencer) EndOfSequence() bool {
	if s.loop || s.sampleRate <= 0 {
		return false
	}
	pos := time.Duration(s.frames * int64(time.Second) / int64(s.sampleRate))
	return pos >= s.length
}
