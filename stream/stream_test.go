package stream_test

import (
	"context"
	"testing"
	"time"

	"github.com/rapidmidiex/rmxsynth/stream"
	"github.com/stretchr/testify/require"
)

func TestChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("reads samples in write order", func(t *testing.T) {
		c := stream.New(8)
		for i := 0; i < 5; i++ {
			require.NoError(t, c.Write(ctx, float32(i)))
		}
		for i := 0; i < 5; i++ {
			v, res := c.TryRead()
			require.Equal(t, stream.Value, res)
			require.Equal(t, float32(i), v)
		}
	})

	t.Run("reports empty without blocking while open", func(t *testing.T) {
		c := stream.New(4)
		v, res := c.TryRead()
		require.Equal(t, stream.Empty, res)
		require.Equal(t, float32(0), v)
	})

	t.Run("drains buffered samples before reporting closed", func(t *testing.T) {
		c := stream.New(4)
		require.NoError(t, c.Write(ctx, 0.5))
		require.NoError(t, c.Write(ctx, -0.5))
		c.Close()
		c.Close()

		v, res := c.TryRead()
		require.Equal(t, stream.Value, res)
		require.Equal(t, float32(0.5), v)
		v, res = c.TryRead()
		require.Equal(t, stream.Value, res)
		require.Equal(t, float32(-0.5), v)
		_, res = c.TryRead()
		require.Equal(t, stream.Closed, res)
		_, res = c.TryRead()
		require.Equal(t, stream.Closed, res)
	})

	t.Run("interleaves frames left first", func(t *testing.T) {
		c := stream.New(8)
		require.NoError(t, c.WriteFrames(ctx, []float32{1, 3}, []float32{2, 4}))
		for want := float32(1); want <= 4; want++ {
			v, res := c.TryRead()
			require.Equal(t, stream.Value, res)
			require.Equal(t, want, v)
		}
	})

	t.Run("never buffers more than its capacity", func(t *testing.T) {
		c := stream.New(3)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 10; i++ {
				if err := c.Write(ctx, float32(i)); err != nil {
					return
				}
			}
			c.Close()
		}()

		got := 0
		for {
			require.LessOrEqual(t, c.Len(), c.Cap())
			_, res := c.TryRead()
			if res == stream.Closed {
				break
			}
			if res == stream.Value {
				got++
			}
		}
		<-done
		require.Equal(t, 10, got)
	})

	t.Run("blocks a writer while full until space frees up", func(t *testing.T) {
		c := stream.New(1)
		require.NoError(t, c.Write(ctx, 1))

		written := make(chan error, 1)
		go func() { written <- c.Write(ctx, 2) }()

		select {
		case <-written:
			t.Fatal("write to a full channel returned early")
		case <-time.After(50 * time.Millisecond):
		}

		_, res := c.TryRead()
		require.Equal(t, stream.Value, res)
		require.NoError(t, <-written)
	})

	t.Run("fails a blocked writer once the receiver is dropped", func(t *testing.T) {
		c := stream.New(1)
		require.NoError(t, c.Write(ctx, 1))

		written := make(chan error, 1)
		go func() { written <- c.Write(ctx, 2) }()
		c.Drop()
		c.Drop()

		select {
		case err := <-written:
			require.ErrorIs(t, err, stream.ErrReceiverGone)
		case <-time.After(time.Second):
			t.Fatal("blocked writer was not released by Drop")
		}
		require.ErrorIs(t, c.Write(ctx, 3), stream.ErrReceiverGone)
	})

	t.Run("fails writes once the context is done", func(t *testing.T) {
		c := stream.New(1)
		require.NoError(t, c.Write(ctx, 1))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.ErrorIs(t, c.Write(cctx, 2), stream.ErrReceiverGone)
	})

	t.Run("blocking read waits for the producer", func(t *testing.T) {
		c := stream.New(2)
		go func() {
			time.Sleep(10 * time.Millisecond)
			_ = c.Write(ctx, 0.25)
			c.Close()
		}()
		v, ok := c.Read(ctx)
		require.True(t, ok)
		require.Equal(t, float32(0.25), v)
		_, ok = c.Read(ctx)
		require.False(t, ok)
	})

	t.Run("clamps capacity to at least one", func(t *testing.T) {
		require.Equal(t, 1, stream.New(0).Cap())
	})
}

func TestCapacity(t *testing.T) {
	require.Equal(t, 176400, stream.Capacity(2, 44100))
	require.Equal(t, 88200, stream.Capacity(1, 44100))
}
