package detect

import (
	"context"
	"errors"
	"fmt"

	"github.com/RyanBlaney/sonido-ritmo/algorithms/spectral"
	"github.com/RyanBlaney/sonido-ritmo/logging"
	"github.com/RyanBlaney/sonido-ritmo/transcode"
)

// ErrBackendUnavailable indicates an external onset backend failed or is
// not installed. It is always recovered inside the detection chain and
// never surfaces to engine callers.
var ErrBackendUnavailable = errors.New("onset backend unavailable")

// Detector turns a complete mono recording into an ordered sequence of
// onsets. Implementations must treat the buffer as read-only and must
// return an empty slice, not an error, for buffers too short to analyze.
type Detector interface {
	Name() string
	Detect(ctx context.Context, buf *transcode.Buffer, cfg Config) ([]Onset, error)
}

// SpectralDetector is the built-in multi-feature detector: Hann-windowed
// frames, energy/flux/phase-deviation features, weighted strength track,
// peak picking with a refractory period
type SpectralDetector struct {
	analyzer *spectral.FrameAnalyzer
	logger   logging.Logger
}

// NewSpectralDetector creates the built-in multi-feature onset detector
func NewSpectralDetector() *SpectralDetector {
	return &SpectralDetector{
		analyzer: spectral.NewFrameAnalyzer(),
		logger: logging.WithFields(logging.Fields{
			"component": "spectral_detector",
		}),
	}
}

// Name identifies the detector in logs and results
func (sd *SpectralDetector) Name() string { return "spectral" }

// Detect runs the multi-feature pipeline over the buffer
func (sd *SpectralDetector) Detect(ctx context.Context, buf *transcode.Buffer, cfg Config) ([]Onset, error) {
	if buf == nil || buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: nil or invalid buffer", transcode.ErrDecode)
	}

	features := sd.analyzer.ComputeAll(buf.Samples, buf.SampleRate)
	if len(features) == 0 {
		// Shorter than one window: zero onsets, not an error
		return []Onset{}, nil
	}

	track := StrengthTrack(features, cfg.SensitivityDB)

	minSep := cfg.MinSeparation
	if minSep <= 0 {
		minSep = DefaultConfig().MinSeparation
	}

	picker := NewPeakPicker(cfg.Threshold, minSep)
	onsets := picker.Pick(track, sd.analyzer.HopSize(), buf.SampleRate)

	sd.logger.Debug("Spectral detection complete", logging.Fields{
		"num_frames": len(features),
		"num_onsets": len(onsets),
		"threshold":  cfg.Threshold,
		"min_sep":    minSep,
	})

	return FilterOnsets(onsets, cfg.MinOnsetTime, cfg.MaxDuration), nil
}

// Chain tries detectors in order and returns the first successful result.
// A detector error is logged and the next detector is tried; only when
// every detector fails does the chain return an error.
type Chain struct {
	detectors []Detector
	logger    logging.Logger
}

// NewChain creates a detection chain from an ordered list of strategies
func NewChain(detectors ...Detector) *Chain {
	return &Chain{
		detectors: detectors,
		logger: logging.WithFields(logging.Fields{
			"component": "detector_chain",
		}),
	}
}

// NewDefaultChain builds the standard strategy order: the external aubio
// backend when configured, then the built-in spectral detector
func NewDefaultChain(cfg Config) *Chain {
	var detectors []Detector
	if cfg.AubioPath != "" {
		detectors = append(detectors, NewAubioDetector(cfg.AubioPath, cfg.AubioTimeout))
	}
	detectors = append(detectors, NewSpectralDetector())
	return NewChain(detectors...)
}

// Name identifies the chain in logs and results
func (c *Chain) Name() string { return "chain" }

// Detect runs the strategies in order, stopping at the first success
func (c *Chain) Detect(ctx context.Context, buf *transcode.Buffer, cfg Config) ([]Onset, error) {
	if len(c.detectors) == 0 {
		return nil, fmt.Errorf("detection chain has no detectors")
	}

	var lastErr error
	for _, d := range c.detectors {
		onsets, err := d.Detect(ctx, buf, cfg)
		if err == nil {
			return onsets, nil
		}

		lastErr = err
		if errors.Is(err, ErrBackendUnavailable) {
			// Expected when the external toolchain is absent; fall through
			c.logger.Warn("Onset backend unavailable, falling back", logging.Fields{
				"detector": d.Name(),
				"reason":   err.Error(),
			})
			continue
		}

		c.logger.Error(err, "Detector failed, trying next", logging.Fields{
			"detector": d.Name(),
		})
	}

	return nil, fmt.Errorf("all detectors failed: %w", lastErr)
}
