// Package decoder is the pull side of a playback. A Decoder hands out one
// sample per call without ever blocking, substitutes silence when synthesis
// falls behind, and owns the synthesis task so that closing it stops the task.
package decoder

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/faiface/beep"
	"github.com/google/uuid"
	"github.com/rapidmidiex/rmxsynth/midi"
	"github.com/rapidmidiex/rmxsynth/stream"
	"github.com/rapidmidiex/rmxsynth/synth"
)

const (
	// Channels is the fixed channel count of every decoder.
	Channels = 2
	// DefaultBufferSeconds is how much audio the task may render ahead.
	DefaultBufferSeconds = 2.0
)

type (
	options struct {
		factory       synth.Factory
		bufferSeconds float64
		blockFrames   int
		loop          synth.LoopPolicy
		logger        *slog.Logger
		id            uuid.UUID
	}

	Option func(*options)

	// Decoder is a Streaming Audio Source. NextSample and Stream are meant for
	// the audio thread, everything else for control code.
	Decoder struct {
		id     uuid.UUID
		ch     *stream.Channel
		task   *synth.Task
		ctx    context.Context
		cancel context.CancelFunc
		log    *slog.Logger

		// Left sample held back by Stream until its right partner arrives.
		pending    float32
		hasPending bool

		cleanup runtime.Cleanup
	}
)

// WithFactory sets the engine factory. Required unless the caller goes
// through rmxsynth.Audio, which binds the shared soundfont.
func WithFactory(f synth.Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithBufferSeconds sets how many seconds of audio may be buffered ahead.
func WithBufferSeconds(s float64) Option {
	return func(o *options) { o.bufferSeconds = s }
}

// WithBlockFrames sets the number of frames rendered per engine call.
func WithBlockFrames(n int) Option {
	return func(o *options) { o.blockFrames = n }
}

// WithLoop sets what file playback does at the end of the file.
func WithLoop(p synth.LoopPolicy) Option {
	return func(o *options) { o.loop = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithID sets the playback identifier used in logs.
func WithID(id uuid.UUID) Option {
	return func(o *options) { o.id = id }
}

// New creates the channel and synthesis task for src and starts the task.
func New(src midi.Source, opts ...Option) *Decoder {
	o := options{
		bufferSeconds: DefaultBufferSeconds,
		logger:        slog.Default(),
		id:            uuid.New(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ch := stream.New(stream.Capacity(o.bufferSeconds, midi.SampleRate))
	task := synth.NewTask(src, o.factory, ch, synth.Config{
		ID:          o.id,
		SampleRate:  midi.SampleRate,
		BlockFrames: o.blockFrames,
		Loop:        o.loop,
		Logger:      o.logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	task.Start(ctx)

	d := &Decoder{
		id:     o.id,
		ch:     ch,
		task:   task,
		ctx:    ctx,
		cancel: cancel,
		log:    o.logger.With("playback", o.id.String()),
	}
	// A decoder that is dropped without Close must not leave its task behind.
	d.cleanup = runtime.AddCleanup(d, func(h handle) { h.stop() }, handle{ch: ch, cancel: cancel})
	d.log.Debug("playback started", "source", kindOf(src), "capacity", ch.Cap(), "loop", o.loop.String())
	return d
}

// handle is what the cleanup needs to stop a task; it must not reference the Decoder.
type handle struct {
	ch     *stream.Channel
	cancel context.CancelFunc
}

func (h handle) stop() {
	h.ch.Drop()
	h.cancel()
}

// NextSample returns the next interleaved sample. It returns silence when the
// channel is momentarily empty, and false once the stream has ended.
func (d *Decoder) NextSample() (float32, bool) {
	v, res := d.ch.TryRead()
	switch res {
	case stream.Value:
		return v, true
	case stream.Empty:
		return 0, true
	default:
		return 0, false
	}
}

// Stream implements beep.Streamer. It fills whole frames; a frame whose
// samples are not both available yet plays as silence and the pair is kept
// intact for the next call.
func (d *Decoder) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if !d.hasPending {
			v, res := d.ch.TryRead()
			switch res {
			case stream.Closed:
				return i, i > 0
			case stream.Empty:
				samples[i] = [2]float64{}
				continue
			}
			d.pending, d.hasPending = v, true
		}

		right, res := d.ch.TryRead()
		switch res {
		case stream.Closed:
			d.hasPending = false
			return i, i > 0
		case stream.Empty:
			samples[i] = [2]float64{}
			continue
		}
		samples[i] = [2]float64{float64(d.pending), float64(right)}
		d.hasPending = false
	}
	return len(samples), true
}

// Err implements beep.Streamer. Synthesis failures are logged by the task and
// show up here only as an ended stream, so Err is always nil.
func (d *Decoder) Err() error {
	return nil
}

// Channels returns 2.
func (d *Decoder) Channels() int { return Channels }

// SampleRate returns the fixed synthesis rate.
func (d *Decoder) SampleRate() beep.SampleRate { return beep.SampleRate(midi.SampleRate) }

// Format describes the decoder output for beep consumers.
func (d *Decoder) Format() beep.Format {
	return beep.Format{SampleRate: d.SampleRate(), NumChannels: Channels, Precision: 2}
}

// TotalDuration is unknown, the stream is open-ended.
func (d *Decoder) TotalDuration() (time.Duration, bool) { return 0, false }

// FrameLen is unknown, callers must treat the decoder as a plain stream.
func (d *Decoder) FrameLen() (int, bool) { return 0, false }

// ID returns the playback identifier.
func (d *Decoder) ID() uuid.UUID { return d.id }

// Task exposes the synthesis task for status displays.
func (d *Decoder) Task() *synth.Task { return d.task }

// Buffered returns the number of rendered samples waiting to be read.
func (d *Decoder) Buffered() int { return d.ch.Len() }

// Capacity returns the channel capacity in samples.
func (d *Decoder) Capacity() int { return d.ch.Cap() }

// Close drops the receiving end, cancels the task and waits for it to exit.
// Do not call it from the audio thread.
func (d *Decoder) Close() error {
	d.cleanup.Stop()
	handle{ch: d.ch, cancel: d.cancel}.stop()
	<-d.task.Done()
	d.log.Debug("playback closed", "state", d.task.State().String(), "written", d.task.Written())
	return nil
}

// Offline returns a blocking streamer for rendering to files. It never
// substitutes silence, so it must not feed a real-time device.
func (d *Decoder) Offline() beep.Streamer {
	return &offline{d: d}
}

type offline struct {
	d *Decoder
}

func (o *offline) Stream(samples [][2]float64) (n int, ok bool) {
	ctx := o.d.ctx
	for i := range samples {
		left, ok := o.d.ch.Read(ctx)
		if !ok {
			return i, i > 0
		}
		right, ok := o.d.ch.Read(ctx)
		if !ok {
			return i, i > 0
		}
		samples[i] = [2]float64{float64(left), float64(right)}
	}
	return len(samples), true
}

func (o *offline) Err() error { return nil }

func kindOf(src midi.Source) string {
	if src == nil {
		return "none"
	}
	return src.Kind()
}
