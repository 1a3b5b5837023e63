// Package rtt keeps stats on how long note events take to reach the screen.
package rtt

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
	}

	// Window keeps the most recent latency samples.
	Window struct {
		size    int
		samples []time.Duration
	}
)

func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size, samples: make([]time.Duration, 0, size)}
}

// Add records a sample, evicting the oldest when full. Negative samples are
// dropped.
func (w *Window) Add(d time.Duration) {
	if d < 0 {
		return
	}
	if len(w.samples) == w.size {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.size-1]
	}
	w.samples = append(w.samples, d)
}

func (w *Window) Samples() []time.Duration {
	return append([]time.Duration(nil), w.samples...)
}

// Stats summarizes prev, rounding the average to the nearest millisecond.
func Stats(latest time.Duration, prev []time.Duration) CalcMsg {
	roundedAvg := math.Round(float64(Avg(prev))/float64(time.Millisecond)) * float64(time.Millisecond)
	return CalcMsg{
		Latest: latest,
		Avg:    time.Duration(roundedAvg),
		Max:    Max(prev),
		Min:    Min(prev),
	}
}

func CalcStats(latest time.Duration, prev []time.Duration) tea.Cmd {
	msg := Stats(latest, prev)
	return func() tea.Msg {
		return msg
	}
}

func Min(times []time.Duration) time.Duration {
	if len(times) == 0 {
		return 0
	}
	min := times[0]
	for _, t := range times[1:] {
		if t < min {
			min = t
		}
	}
	return min
}

func Max(times []time.Duration) time.Duration {
	var max time.Duration
	for _, t := range times {
		if t > max {
			max = t
		}
	}
	return max
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
