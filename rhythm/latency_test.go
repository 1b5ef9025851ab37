package rhythm

import (
	"math"
	"testing"
)

func TestEstimateLatencyConstantOffset(t *testing.T) {
	grid, err := GenerateGrid(120, PatternQuarter, 6.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, delta := range []float64{-0.15, -0.08, -0.01, 0.0, 0.04, 0.1, 0.15} {
		onsets := make([]float64, 10)
		for i := range onsets {
			onsets[i] = grid[i] + delta
		}

		got := EstimateLatency(onsets, grid)
		if math.Abs(got-delta) > 0.005 {
			t.Fatalf("delta %v: estimate %v not within 5 ms", delta, got)
		}
	}
}

func TestEstimateLatencyRobustToOutliers(t *testing.T) {
	grid, err := GenerateGrid(120, PatternQuarter, 6.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delta := 0.08
	onsets := make([]float64, 10)
	for i := range onsets {
		onsets[i] = grid[i] + delta
	}
	// Two of ten samples are badly mis-detected
	onsets[2] += 0.19
	onsets[7] -= 0.21

	got := EstimateLatency(onsets, grid)
	if math.Abs(got-delta) > 0.005 {
		t.Fatalf("estimate %v not within 5 ms of %v despite outliers", got, delta)
	}
}

func TestEstimateLatencyClamped(t *testing.T) {
	// Offsets beyond the clamp are almost certainly musical, not latency
	grid := []float64{0, 10, 20, 30}
	onsets := []float64{0.35, 10.35, 20.35}

	if got := EstimateLatency(onsets, grid); got != 0.2 {
		t.Fatalf("expected clamp at 0.2, got %v", got)
	}

	onsets = []float64{0.0, 9.6, 19.6, 29.6}
	if got := EstimateLatency(onsets, grid); got != -0.2 {
		t.Fatalf("expected clamp at -0.2, got %v", got)
	}
}

func TestEstimateLatencyEmptyInputs(t *testing.T) {
	if got := EstimateLatency(nil, []float64{0, 1}); got != 0 {
		t.Fatalf("expected 0 for no onsets, got %v", got)
	}
	if got := EstimateLatency([]float64{0.5}, nil); got != 0 {
		t.Fatalf("expected 0 for empty grid, got %v", got)
	}
}

func TestApplyLatencyOffset(t *testing.T) {
	onsets := []float64{0.05, 0.55, 1.05}

	adjusted := ApplyLatencyOffset(onsets, 0.1)
	want := []float64{0, 0.45, 0.95}
	for i := range want {
		if math.Abs(adjusted[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %v, want %v", i, adjusted[i], want[i])
		}
	}

	// Original slice untouched
	if onsets[0] != 0.05 {
		t.Fatalf("input slice mutated: %v", onsets)
	}
}

func TestNearestBeat(t *testing.T) {
	beats := []float64{0, 0.5, 1.0, 1.5}

	tests := []struct {
		t    float64
		want float64
	}{
		{-0.3, 0},
		{0.2, 0},
		{0.26, 0.5},
		{0.75, 0.5}, // tie goes to the earlier beat
		{1.4, 1.5},
		{9.0, 1.5},
	}

	for _, tc := range tests {
		if got := nearestBeat(tc.t, beats); got != tc.want {
			t.Fatalf("nearestBeat(%v) = %v, want %v", tc.t, got, tc.want)
		}
	}
}
