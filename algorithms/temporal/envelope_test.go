package temporal

import (
	"math"
	"testing"
)

func TestComputeRMSConstantSignal(t *testing.T) {
	e := NewEnvelope()

	signal := make([]float64, 4096)
	for i := range signal {
		signal[i] = 0.5
	}

	envelope := e.ComputeRMS(signal, 1024, 512)
	wantFrames := (len(signal)-1024)/512 + 1
	if len(envelope) != wantFrames {
		t.Fatalf("expected %d frames, got %d", wantFrames, len(envelope))
	}
	for i, v := range envelope {
		if math.Abs(v-0.5) > 1e-12 {
			t.Fatalf("frame %d: RMS %v, want 0.5", i, v)
		}
	}
}

func TestComputeRMSShortSignal(t *testing.T) {
	e := NewEnvelope()
	if got := e.ComputeRMS(make([]float64, 100), 1024, 512); len(got) != 0 {
		t.Fatalf("expected empty envelope for short signal, got %d frames", len(got))
	}
	if got := e.ComputeRMS(nil, 1024, 512); len(got) != 0 {
		t.Fatalf("expected empty envelope for nil signal, got %d frames", len(got))
	}
}

func TestComputePeak(t *testing.T) {
	e := NewEnvelope()

	signal := make([]float64, 2048)
	signal[100] = -0.9
	signal[1500] = 0.4

	envelope := e.ComputePeak(signal, 1024, 1024)
	if len(envelope) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(envelope))
	}
	if envelope[0] != 0.9 || envelope[1] != 0.4 {
		t.Fatalf("unexpected peaks: %v", envelope)
	}
}
