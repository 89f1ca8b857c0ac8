package playerui

import (
	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// Output is where the player sends audio. Lock and Unlock guard changes to
// streamers that are already playing.
type Output interface {
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// Speaker plays through the beep speaker, which must be initialized first.
type Speaker struct{}

func (Speaker) Play(s beep.Streamer) { speaker.Play(s) }
func (Speaker) Clear()               { speaker.Clear() }
func (Speaker) Lock()                { speaker.Lock() }
func (Speaker) Unlock()              { speaker.Unlock() }
