package rhythm

import (
	"math"

	"github.com/RyanBlaney/sonido-ritmo/algorithms/common"
)

// Constant-latency estimation. A fixed processing or device latency shifts
// every onset by roughly the same amount; the median of the first few
// onset-to-nearest-beat deltas is robust to a couple of mis-detected or
// musically early notes in the sample.
const (
	latencySampleCount = 10
	maxLatencySeconds  = 0.2
)

// EstimateLatency returns the estimated constant offset between detected
// onsets and the expected beat grid, clamped to [-0.2, 0.2] seconds.
// Returns zero when either sequence is empty.
func EstimateLatency(onsets, expectedBeats []float64) float64 {
	if len(onsets) == 0 || len(expectedBeats) == 0 {
		return 0.0
	}

	sampleCount := min(latencySampleCount, len(onsets))
	deltas := make([]float64, sampleCount)
	for i := 0; i < sampleCount; i++ {
		deltas[i] = onsets[i] - nearestBeat(onsets[i], expectedBeats)
	}

	return common.Clamp(common.Median(deltas), -maxLatencySeconds, maxLatencySeconds)
}

// ApplyLatencyOffset subtracts the offset from every onset, clamping at
// zero so no timestamp goes negative
func ApplyLatencyOffset(onsets []float64, offset float64) []float64 {
	adjusted := make([]float64, len(onsets))
	for i, t := range onsets {
		adjusted[i] = math.Max(0, t-offset)
	}
	return adjusted
}

// nearestBeat returns the grid timestamp closest in absolute time to t.
// The grid is sorted ascending, so a binary search bounds the candidates.
func nearestBeat(t float64, beats []float64) float64 {
	lo, hi := 0, len(beats)
	for lo < hi {
		mid := (lo + hi) / 2
		if beats[mid] < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	// lo is the first beat >= t; the nearest is that one or its predecessor
	if lo == 0 {
		return beats[0]
	}
	if lo == len(beats) {
		return beats[len(beats)-1]
	}
	if t-beats[lo-1] <= beats[lo]-t {
		return beats[lo-1]
	}
	return beats[lo]
}
