// Package soundfont holds the parsed instrument bank every playback renders
// with. The bank is parsed once per process and never mutated afterwards.
package soundfont

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rapidmidiex/rmxsynth/rmxerr"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

var (
	ErrAlreadyInitialized = errors.New("soundfont: already initialized")
	ErrNotInitialized     = errors.New("soundfont: not initialized")
)

// Handle is a read-only reference to a parsed soundfont. It is safe to share
// between any number of concurrent playbacks.
type Handle struct {
	font *meltysynth.SoundFont
}

// Parse reads a complete SF2 bank from r.
func Parse(r io.Reader) (*Handle, error) {
	font, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rmxerr.ErrBadSoundfont, err)
	}
	return &Handle{font: font}, nil
}

// Font returns the parsed bank. Callers must not modify it.
func (h *Handle) Font() *meltysynth.SoundFont {
	return h.font
}

var (
	mu     sync.RWMutex
	shared *Handle
)

// Init parses r into the process-wide handle. It may succeed only once; later
// calls return ErrAlreadyInitialized and leave the first handle in place.
func Init(r io.Reader) (*Handle, error) {
	mu.Lock()
	defer mu.Unlock()

	if shared != nil {
		return shared, ErrAlreadyInitialized
	}
	h, err := Parse(r)
	if err != nil {
		return nil, err
	}
	shared = h
	return h, nil
}

// Shared returns the process-wide handle set by Init.
func Shared() (*Handle, error) {
	mu.RLock()
	defer mu.RUnlock()

	if shared == nil {
		return nil, ErrNotInitialized
	}
	return shared, nil
}
