// Package vpiano maps a qwerty keyboard onto piano keys, so a typed string
// can be played as a note sequence.
package vpiano

import (
	"fmt"
	"strings"
	"time"

	"github.com/rapidmidiex/rmxsynth/midi"
)

type (
	Note struct {
		// MIDI note number, based on C4=60
		MIDI int
		// Name of the note, ex: "C", "F#Gb"
		Name string
		// Denotes if note is sharp/flat ie. "black" key.
		IsAccidental bool
		// qwerty keyboard key binding.
		KeyBinding string
	}

	Notes []Note

	NoteKeyMap map[string]Note

	Octave int
)

const (
	Cneg2 Octave = iota - 2
	Cneg1
	C0
	C1
	C2
	C3
	C4
	C5
	C6
	C7
)

// Rest is the binding that plays silence for one step.
const Rest = "."

var noteNames = []struct {
	name         string
	isAccidental bool
}{
	{name: "A", isAccidental: false},
	{name: "A#/Bb", isAccidental: true},
	{name: "B", isAccidental: false},
	{name: "C", isAccidental: false},
	{name: "C#/Db", isAccidental: true},
	{name: "D", isAccidental: false},
	{name: "D#/Eb", isAccidental: true},
	{name: "E", isAccidental: false},
	{name: "F", isAccidental: false},
	{name: "F#/Gb", isAccidental: true},
	{name: "G", isAccidental: false},
	{name: "G#/Ab", isAccidental: true}}

// qwerty keys ordered to allow for fingering similar to a real piano.
var qwertyKeys = []string{"a", "w", "s", "e", "d", "f", "t", "g", "y", "h", "u", "j", "k", "o", "l", "p", ";", "'"}

// MakeOctaveNotes lays the qwerty keys out from C of the given octave. The
// home row holds naturals and the q-row accidentals, close to real piano
// fingering.
func MakeOctaveNotes(octave Octave) Notes {
	// MIDI number for C0
	midiC0 := 12
	octaveLen := 12
	notes := make(Notes, 0, len(qwertyKeys))

	for i, kb := range qwertyKeys {
		k := noteNames[(i+3)%octaveLen]
		notes = append(notes, Note{
			MIDI:         midiC0 + (octaveLen * int(octave)) + i,
			Name:         k.name,
			IsAccidental: k.isAccidental,
			KeyBinding:   kb,
		})
	}

	return notes
}

// ParseOctave reads names like "C4" or "C-1".
func ParseOctave(s string) (Octave, error) {
	var n int
	if _, err := fmt.Sscanf(strings.ToUpper(s), "C%d", &n); err != nil {
		return 0, fmt.Errorf("octave %q: want C-2 to C7", s)
	}
	if n < int(Cneg2) || n > int(C7) {
		return 0, fmt.Errorf("octave %q out of range C-2 to C7", s)
	}
	return Octave(n), nil
}

func (notes Notes) ToBindingMap() NoteKeyMap {
	nMap := make(NoteKeyMap, len(notes))
	for _, n := range notes {
		nMap[n.KeyBinding] = n
	}
	return nMap
}

// Sequence turns typed keys into notes of equal length. Whitespace is ignored
// and Rest plays silence. Unbound keys are an error.
func (m NoteKeyMap) Sequence(keys string, step time.Duration, velocity int) (midi.Sequence, error) {
	seq := make(midi.Sequence, 0, len(keys))
	for _, r := range keys {
		k := string(r)
		if strings.TrimSpace(k) == "" {
			continue
		}
		note := midi.DefaultNote()
		note.Duration = step
		if k == Rest {
			note.Velocity = 0
			seq = append(seq, note)
			continue
		}
		n, ok := m[k]
		if !ok {
			return nil, fmt.Errorf("key %q is not bound to a note", k)
		}
		if !InRange(n.MIDI) {
			return nil, fmt.Errorf("key %q maps to %d, outside the piano", k, n.MIDI)
		}
		note.Key = n.MIDI
		note.Velocity = velocity
		seq = append(seq, note)
	}
	return seq, nil
}

func InRange(midiNum int) bool {
	return midiNum > 20 && midiNum < 128
}
