// Package midi describes what a playback renders: raw MIDI file bytes or an
// explicit, ordered list of notes.
package midi

import (
	"time"
)

// SampleRate is the fixed rate every playback renders at.
const SampleRate = 44100

type (
	// Note is a single note of an explicit sequence.
	Note struct {
		// MIDI channel to play the note on.
		Channel int
		// Preset (General MIDI program) selected before the note starts.
		Preset int
		// MIDI key number, 60 is middle C.
		Key int
		// MIDI velocity (0-127).
		Velocity int
		// How long the note is rendered for. The decay tail past this is cut.
		Duration time.Duration
	}

	// Source is either a File or a Sequence.
	Source interface {
		// Kind names the variant, "file" or "sequence".
		Kind() string
		isSource()
	}

	// File is the raw contents of a Standard MIDI File. It is not validated
	// until a playback parses it.
	File []byte

	// Sequence is a list of notes played strictly one after another.
	Sequence []Note
)

// DefaultNote returns middle C on channel 0, preset 0, velocity 100, held for one second.
func DefaultNote() Note {
	return Note{
		Channel:  0,
		Preset:   0,
		Key:      60,
		Velocity: 100,
		Duration: time.Second,
	}
}

// Frames returns the number of stereo frames the note occupies at sampleRate,
// rounded down.
func (n Note) Frames(sampleRate int) int {
	if n.Duration <= 0 {
		return 0
	}
	return int(int64(n.Duration) * int64(sampleRate) / int64(time.Second))
}

func (File) Kind() string     { return "file" }
func (Sequence) Kind() string { return "sequence" }

func (File) isSource()     {}
func (Sequence) isSource() {}

// Frames returns the total frame count of the sequence at sampleRate.
func (s Sequence) Frames(sampleRate int) int {
	total := 0
	for _, n := range s {
		total += n.Frames(sampleRate)
	}
	return total
}
