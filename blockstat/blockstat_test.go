package blockstat_test

import (
	"math"
	"testing"
	"time"

	"github.com/rapidmidiex/rmxsynth/blockstat"
	"github.com/stretchr/testify/require"
)

func TestCalc(t *testing.T) {
	renders := []time.Duration{
		time.Millisecond * 19,
		time.Millisecond * 1000,
		time.Millisecond * 129,
		time.Millisecond * 34,
		time.Millisecond * 36,
		time.Millisecond * 49,
		time.Millisecond * 234,
		time.Millisecond * 250,
	}

	gotCmd := blockstat.CalcStats(renders, time.Second)
	want := blockstat.CalcMsg{
		Min:      time.Millisecond * 19,
		Max:      time.Millisecond * 1000,
		Avg:      time.Millisecond * 219, // 218.875 rounded to nearest ms
		Latest:   time.Millisecond * 250,
		Realtime: 4,
	}
	require.Equal(t, want, gotCmd())
}

func TestEmpty(t *testing.T) {
	got := blockstat.CalcStats(nil, time.Second)()
	msg := got.(blockstat.CalcMsg)
	require.Zero(t, msg.Min)
	require.Zero(t, msg.Max)
	require.Zero(t, msg.Avg)
	require.True(t, math.IsInf(msg.Realtime, 1))
}

func TestAudioLength(t *testing.T) {
	require.Equal(t, time.Second, blockstat.AudioLength(44100, 44100))
	require.Equal(t, 10*time.Millisecond, blockstat.AudioLength(441, 44100))
	require.Zero(t, blockstat.AudioLength(441, 0))
}
