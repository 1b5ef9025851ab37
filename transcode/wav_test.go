package transcode

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestDownmixMonoStereo(t *testing.T) {
	interleaved := []float64{0.5, -0.5, 1.0, 0.0, -0.25, 0.75}
	buf, err := DownmixMono(interleaved, 2, 44100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.0, 0.5, 0.25}
	if len(buf.Samples) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(buf.Samples))
	}
	for i := range want {
		if math.Abs(buf.Samples[i]-want[i]) > 1e-12 {
			t.Fatalf("frame %d: got %v, want %v", i, buf.Samples[i], want[i])
		}
	}
}

func TestDownmixMonoInvalidChannels(t *testing.T) {
	_, err := DownmixMono([]float64{0.1}, 0, 44100)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDownmixMonoRaggedInput(t *testing.T) {
	_, err := DownmixMono([]float64{0.1, 0.2, 0.3}, 2, 44100)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for ragged interleave, got %v", err)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = 0.6 * math.Sin(2*math.Pi*440.0*float64(i)/22050.0)
	}
	buf := &Buffer{Samples: samples, SampleRate: 22050}

	var out bytes.Buffer
	if err := EncodeWAV(&out, buf); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeWAV(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.SampleRate != 22050 {
		t.Fatalf("expected sample rate 22050, got %d", decoded.SampleRate)
	}
	if len(decoded.Samples) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(decoded.Samples))
	}

	// 16-bit quantization error bound
	for i := range samples {
		if math.Abs(decoded.Samples[i]-samples[i]) > 1.0/32767.0 {
			t.Fatalf("sample %d: got %v, want %v", i, decoded.Samples[i], samples[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("this is definitely not audio data")},
		{"truncated header", []byte("RIFF\x00\x00")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeWAV(bytes.NewReader(tc.data))
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Samples: make([]float64, 44100), SampleRate: 44100}
	if d := buf.Duration(); math.Abs(d-1.0) > 1e-12 {
		t.Fatalf("expected 1s duration, got %v", d)
	}

	var nilBuf *Buffer
	if d := nilBuf.Duration(); d != 0 {
		t.Fatalf("expected 0 duration for nil buffer, got %v", d)
	}
}
