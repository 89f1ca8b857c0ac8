// Package blockstat summarises how long the synthesis engine takes per block.
package blockstat

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type (
	CalcMsg struct {
		Latest time.Duration
		Avg    time.Duration
		Min    time.Duration
		Max    time.Duration
		// Rendering speed relative to playback speed of the latest block.
		// Above 1 the task keeps up with real time.
		Realtime float64
	}
)

// CalcStats summarises the render times in prev. audio is the amount of
// audio one block holds.
func CalcStats(prev []time.Duration, audio time.Duration) tea.Cmd {
	var latest time.Duration
	if len(prev) > 0 {
		latest = prev[len(prev)-1]
	}
	roundedAvg := math.Round(float64(Avg(prev))/float64(time.Millisecond)) * float64(time.Millisecond)
	return func() tea.Msg {
		return CalcMsg{
			Latest:   latest,
			Avg:      time.Duration(roundedAvg),
			Max:      Max(prev),
			Min:      Min(prev),
			Realtime: RealtimeFactor(latest, audio),
		}
	}
}

// RealtimeFactor returns audio/render, or +Inf when render is zero.
func RealtimeFactor(render, audio time.Duration) float64 {
	if render <= 0 {
		return math.Inf(1)
	}
	return float64(audio) / float64(render)
}

// AudioLength returns the play time of frames at sampleRate.
func AudioLength(frames, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(int64(frames) * int64(time.Second) / int64(sampleRate))
}

func Min(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	min := math.Inf(1)
	for _, t := range times {
		min = math.Min(min, float64(t))
	}
	return time.Duration(min)
}

func Max(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	max := math.Inf(-1)
	for _, t := range times {
		max = math.Max(max, float64(t))
	}
	return time.Duration(max)
}

func Avg(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	sum := time.Duration(0)
	for _, t := range times {
		sum = sum + t
	}
	return sum / time.Duration(len(times))
}
