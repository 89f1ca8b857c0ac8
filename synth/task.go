// Package synth runs the background synthesis task of a playback: it drives
// an engine from a midi.Source and writes interleaved stereo samples into a
// bounded stream.Channel.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/rmxerr"
	"github.com/rapidmidiex/rmxsynth/stream"
)

// LoopPolicy decides what a file playback does once the file ends.
type LoopPolicy int

const (
	// SingleShot plays the file once and closes the stream.
	SingleShot LoopPolicy = iota
	// Loop restarts the file until the consumer goes away.
	Loop
)

func (p LoopPolicy) String() string {
	if p == Loop {
		return "loop"
	}
	return "single-shot"
}

// State is the phase a Task is in.
type State int32

const (
	StateInit State = iota
	StateRenderFile
	StateRenderSequence
	StateClosing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRenderFile:
		return "rendering file"
	case StateRenderSequence:
		return "rendering sequence"
	case StateClosing:
		return "closing"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// keptBlocks is how many recent block render times a Task remembers.
const keptBlocks = 32

type (
	Config struct {
		// Playback identifier, used in logs.
		ID uuid.UUID
		// Defaults to midi.SampleRate.
		SampleRate int
		// Frames rendered per engine call. Defaults to one second of audio.
		BlockFrames int
		Loop        LoopPolicy
		Logger      *slog.Logger
	}

	// Task owns one engine instance and feeds one channel. All engine state
	// is private to the goroutine running Run.
	Task struct {
		src     midi.Source
		factory Factory
		out     *stream.Channel
		cfg     Config
		log     *slog.Logger

		state   atomic.Int32
		written atomic.Uint64
		done    chan struct{}
		err     error

		mu     sync.Mutex
		blocks []time.Duration
	}
)

// NewTask prepares a task. Nothing is rendered until Run or Start.
func NewTask(src midi.Source, factory Factory, out *stream.Channel, cfg Config) *Task {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = midi.SampleRate
	}
	if cfg.BlockFrames <= 0 {
		cfg.BlockFrames = cfg.SampleRate
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	kind := "none"
	if src != nil {
		kind = src.Kind()
	}

	return &Task{
		src:     src,
		factory: factory,
		out:     out,
		cfg:     cfg,
		log:     logger.With("playback", cfg.ID.String(), "source", kind),
		done:    make(chan struct{}),
	}
}

// Start runs the task on its own goroutine.
func (t *Task) Start(ctx context.Context) {
	go t.Run(ctx)
}

// Run renders the whole source, then closes the channel. It returns early,
// leaving the channel open, when the consumer is dropped or ctx is done.
func (t *Task) Run(ctx context.Context) {
	defer close(t.done)
	defer t.setState(StateDone)

	t.setState(StateInit)
	if t.factory == nil {
		t.fail(fmt.Errorf("%w: no engine factory", rmxerr.ErrEngine))
		return
	}
	engine, err := t.factory.NewEngine(t.cfg.SampleRate)
	if err != nil {
		t.fail(err)
		return
	}

	switch src := t.src.(type) {
	case midi.File:
		t.setState(StateRenderFile)
		err = t.renderFile(ctx, engine, src)
	case midi.Sequence:
		t.setState(StateRenderSequence)
		err = t.renderSequence(ctx, engine, src)
	default:
		err = fmt.Errorf("unsupported source %T", t.src)
	}

	if errors.Is(err, stream.ErrReceiverGone) {
		t.log.Debug("consumer dropped, stopping", "written", t.written.Load())
		return
	}
	if err != nil {
		t.fail(err)
		return
	}

	t.setState(StateClosing)
	t.out.Close()
	t.log.Debug("end of sequence", "written", t.written.Load())
}

func (t *Task) renderFile(ctx context.Context, engine Engine, data midi.File) error {
	seq, err := t.factory.NewFileSequencer(engine, t.cfg.SampleRate, data, t.cfg.Loop == Loop)
	if err != nil {
		return err
	}

	left := make([]float32, t.cfg.BlockFrames)
	right := make([]float32, t.cfg.BlockFrames)
	for !seq.EndOfSequence() {
		start := time.Now()
		seq.Render(left, right)
		t.recordBlock(time.Since(start))

		if err := t.write(ctx, left, right); err != nil {
			return err
		}
	}
	return nil
}

// renderSequence plays notes one at a time. A note lasts exactly its declared
// duration, however long the instrument would ring.
func (t *Task) renderSequence(ctx context.Context, engine Engine, seq midi.Sequence) error {
	left := make([]float32, t.cfg.BlockFrames)
	right := make([]float32, t.cfg.BlockFrames)

	for _, note := range seq {
		channel := int32(note.Channel)
		engine.ProcessMidiMessage(channel, programChange, int32(note.Preset), 0)
		engine.NoteOn(channel, int32(note.Key), int32(note.Velocity))

		for remaining := note.Frames(t.cfg.SampleRate); remaining > 0; {
			n := min(remaining, t.cfg.BlockFrames)
			start := time.Now()
			engine.Render(left[:n], right[:n])
			t.recordBlock(time.Since(start))

			if err := t.write(ctx, left[:n], right[:n]); err != nil {
				return err
			}
			remaining -= n
		}

		engine.NoteOff(channel, int32(note.Key))
	}
	return nil
}

func (t *Task) write(ctx context.Context, left, right []float32) error {
	for i := range left {
		if err := t.out.Write(ctx, left[i]); err != nil {
			return err
		}
		t.written.Add(1)
		if err := t.out.Write(ctx, right[i]); err != nil {
			return err
		}
		t.written.Add(1)
	}
	return nil
}

// fail records a fatal error. The consumer only sees an empty, closed stream,
// so the error is logged here.
func (t *Task) fail(err error) {
	t.err = err
	t.log.Error("synthesis failed", "state", t.State().String(), "err", err)
	t.setState(StateClosing)
	t.out.Close()
}

func (t *Task) recordBlock(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.blocks) == keptBlocks {
		copy(t.blocks, t.blocks[1:])
		t.blocks = t.blocks[:keptBlocks-1]
	}
	t.blocks = append(t.blocks, d)
}

func (t *Task) setState(s State) {
	t.state.Store(int32(s))
}

// State returns the current phase.
func (t *Task) State() State {
	return State(t.state.Load())
}

// ID returns the playback identifier.
func (t *Task) ID() uuid.UUID {
	return t.cfg.ID
}

// Written returns the number of samples written to the channel so far.
func (t *Task) Written() uint64 {
	return t.written.Load()
}

// Blocks returns the render times of the most recent engine calls, oldest first.
func (t *Task) Blocks() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.blocks...)
}

// Done is closed when Run has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the fatal error that stopped the task, if any. It is only
// meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}
