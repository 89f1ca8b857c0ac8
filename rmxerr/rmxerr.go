// Package rmxerr holds the error kinds shared across rmxsynth.
package rmxerr

import "errors"

// Fatal initialization kinds. A playback that hits one of these stops
// immediately; callers match them with errors.Is.
var (
	ErrBadSoundfont = errors.New("malformed soundfont")
	ErrBadMIDIFile  = errors.New("malformed midi file")
	ErrEngine       = errors.New("synthesizer construction failed")
)

type (
	// ErrMsg carries an error through a bubbletea update loop.
	ErrMsg struct {
		Err error
	}
)

func (m ErrMsg) Error() string {
	return m.Err.Error()
}

func (m ErrMsg) Unwrap() error {
	return m.Err
}

// IsFatal reports whether err is one of the fatal initialization kinds.
func IsFatal(err error) bool {
	return errors.Is(err, ErrBadSoundfont) ||
		errors.Is(err, ErrBadMIDIFile) ||
		errors.Is(err, ErrEngine)
}
