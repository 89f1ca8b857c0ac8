// Package mock provides deterministic implementations of [synth.Engine],
// [synth.Sequencer] and [synth.Factory] for tests that have no soundfont.
//
// Engine renders a counting signal: frame n (counting from 1) is n on the left
// channel and -n on the right, so tests can check order and pairing exactly.
package mock

import (
	"fmt"
	"sync"

	"github.com/rapidmidiex/rmxsynth/synth"
)

// Engine is a mock [synth.Engine]. It is safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	// Gate, when non-nil, makes every Render wait for one receive.
	Gate chan struct{}

	// Events records every MIDI call and render in order, for example
	// "program 0 5", "on 0 60 100", "render 441", "off 0 60".
	Events []string

	frame int
}

func (e *Engine) ProcessMidiMessage(channel, command, data1, data2 int32) {
	e.record(fmt.Sprintf("program %d %d", channel, data1))
	if command != 0xC0 {
		e.record(fmt.Sprintf("unexpected command %#x", command))
	}
}

func (e *Engine) NoteOn(channel, key, velocity int32) {
	e.record(fmt.Sprintf("on %d %d %d", channel, key, velocity))
}

func (e *Engine) NoteOff(channel, key int32) {
	e.record(fmt.Sprintf("off %d %d", channel, key))
}

func (e *Engine) Render(left, right []float32) {
	if e.Gate != nil {
		<-e.Gate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range left {
		e.frame++
		left[i] = float32(e.frame)
		right[i] = -float32(e.frame)
	}
	e.Events = append(e.Events, fmt.Sprintf("render %d", len(left)))
}

// Recorded returns a copy of Events.
func (e *Engine) Recorded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Events...)
}

func (e *Engine) record(ev string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, ev)
}

// Sequencer is a mock [synth.Sequencer] that ends after a fixed number of
// Render calls, or never when Loop is set.
type Sequencer struct {
	Engine *Engine
	Blocks int
	Loop   bool
}

func (s *Sequencer) Render(left, right []float32) {
	s.Engine.Render(left, right)
	if s.Blocks > 0 {
		s.Blocks--
	}
}

func (s *Sequencer) EndOfSequence() bool {
	return !s.Loop && s.Blocks == 0
}

// Factory is a mock [synth.Factory].
type Factory struct {
	mu sync.Mutex

	// Engine is handed to every playback. A fresh Engine is used when nil.
	Engine *Engine
	// EngineErr is returned by NewEngine.
	EngineErr error
	// SequencerErr is returned by NewFileSequencer.
	SequencerErr error
	// FileBlocks is how many blocks a file source renders before it ends.
	FileBlocks int

	// CallCountNewEngine records how many engines were built.
	CallCountNewEngine int
	// RecordedLoop holds the loop flag of every NewFileSequencer call.
	RecordedLoop []bool
}

func (f *Factory) NewEngine(sampleRate int) (synth.Engine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CallCountNewEngine++
	if f.EngineErr != nil {
		return nil, f.EngineErr
	}
	if f.Engine == nil {
		return &Engine{}, nil
	}
	return f.Engine, nil
}

func (f *Factory) NewFileSequencer(engine synth.Engine, sampleRate int, data []byte, loop bool) (synth.Sequencer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RecordedLoop = append(f.RecordedLoop, loop)
	if f.SequencerErr != nil {
		return nil, f.SequencerErr
	}
	e, ok := engine.(*Engine)
	if !ok {
		return nil, fmt.Errorf("mock: unexpected engine %T", engine)
	}
	return &Sequencer{Engine: e, Blocks: f.FileBlocks, Loop: loop}, nil
}
