package transcode

import (
	"errors"
	"fmt"
	"time"
)

// ErrDecode indicates that audio input could not be interpreted: unsupported
// channel layout, malformed container, or zero usable samples. Match with
// errors.Is.
var ErrDecode = errors.New("audio decode error")

// Buffer represents one complete decoded mono recording. The engine treats
// the sample slice as read-only for the duration of an analysis call.
type Buffer struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// NewBuffer creates a mono buffer, validating the sample rate
func NewBuffer(samples []float64, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, sampleRate)
	}
	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// Duration returns the buffer length in seconds
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// DurationTime returns the buffer length as a time.Duration
func (b *Buffer) DurationTime() time.Duration {
	return time.Duration(b.Duration() * float64(time.Second))
}

// DownmixMono converts interleaved multi-channel samples to a mono buffer
// by averaging channels. A channel count below one is a decode error.
func DownmixMono(interleaved []float64, channels, sampleRate int) (*Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrDecode, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrDecode, sampleRate)
	}
	if len(interleaved)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples not divisible by %d channels", ErrDecode, len(interleaved), channels)
	}

	if channels == 1 {
		mono := make([]float64, len(interleaved))
		copy(mono, interleaved)
		return &Buffer{Samples: mono, SampleRate: sampleRate}, nil
	}

	numFrames := len(interleaved) / channels
	mono := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}

	return &Buffer{Samples: mono, SampleRate: sampleRate}, nil
}
