// Package stream is the bounded, single-producer single-consumer sample queue
// between a synthesis task and a real-time reader.
package stream

import (
	"context"
	"errors"
	"sync"
)

// ErrReceiverGone is returned by writes once the consumer has been dropped.
var ErrReceiverGone = errors.New("stream: receiver gone")

// Result classifies a TryRead.
type Result int

const (
	// Value means a sample was returned.
	Value Result = iota
	// Empty means the channel is open but currently drained.
	Empty
	// Closed means the producer closed the channel and every sample was read.
	Closed
)

func (r Result) String() string {
	switch r {
	case Value:
		return "value"
	case Empty:
		return "empty"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Channel is a FIFO of interleaved stereo samples with a fixed capacity.
// Write suspends while the channel is full. TryRead never blocks.
type Channel struct {
	samples chan float32
	gone    chan struct{}

	closeOnce sync.Once
	dropOnce  sync.Once
}

// New returns a channel holding at most capacity samples.
func New(capacity int) *Channel {
	if capacity < 1 {
		capacity = 1
	}
	return &Channel{
		samples: make(chan float32, capacity),
		gone:    make(chan struct{}),
	}
}

// Write appends v, waiting for space when the channel is full. It fails with
// ErrReceiverGone once Drop has been called or ctx is done.
func (c *Channel) Write(ctx context.Context, v float32) error {
	select {
	case <-c.gone:
		return ErrReceiverGone
	default:
	}

	select {
	case c.samples <- v:
		return nil
	case <-c.gone:
		return ErrReceiverGone
	case <-ctx.Done():
		return ErrReceiverGone
	}
}

// WriteFrames interleaves left and right (left first) and writes every pair
// in order. Both slices must have the same length.
func (c *Channel) WriteFrames(ctx context.Context, left, right []float32) error {
	for i := range left {
		if err := c.Write(ctx, left[i]); err != nil {
			return err
		}
		if err := c.Write(ctx, right[i]); err != nil {
			return err
		}
	}
	return nil
}

// TryRead returns the next sample without blocking.
func (c *Channel) TryRead() (float32, Result) {
	select {
	case v, ok := <-c.samples:
		if !ok {
			return 0, Closed
		}
		return v, Value
	default:
		return 0, Empty
	}
}

// Read waits for the next sample. It reports false once the channel is closed
// and drained, or when ctx is done. Real-time consumers must use TryRead.
func (c *Channel) Read(ctx context.Context) (float32, bool) {
	select {
	case v, ok := <-c.samples:
		return v, ok
	case <-ctx.Done():
		return 0, false
	}
}

// Close marks the end of the stream. Samples already written stay readable.
// Only the producer may call Close, and it must not Write afterwards.
func (c *Channel) Close() {
	c.closeOnce.Do(func() { close(c.samples) })
}

// Drop detaches the consumer. Pending and future writes fail with
// ErrReceiverGone.
func (c *Channel) Drop() {
	c.dropOnce.Do(func() { close(c.gone) })
}

// Dropped is closed once the consumer has been dropped.
func (c *Channel) Dropped() <-chan struct{} {
	return c.gone
}

// Len returns the number of buffered, unread samples.
func (c *Channel) Len() int { return len(c.samples) }

// Cap returns the channel capacity.
func (c *Channel) Cap() int { return cap(c.samples) }

// Capacity returns the capacity that holds seconds of interleaved stereo
// audio at sampleRate.
func Capacity(seconds float64, sampleRate int) int {
	return int(seconds * float64(sampleRate) * 2)
}
