package detect

import (
	"context"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-ritmo/algorithms/common"
	"github.com/RyanBlaney/sonido-ritmo/algorithms/spectral"
	"github.com/RyanBlaney/sonido-ritmo/algorithms/temporal"
	"github.com/RyanBlaney/sonido-ritmo/logging"
	"github.com/RyanBlaney/sonido-ritmo/transcode"
)

// Legacy energy detector tuning. The ratio spike must clear a short rolling
// history of the RMS envelope, and the refractory period is deliberately
// longer than the spectral detector's so sustained or distorted signals
// cannot over-trigger.
const (
	energyHistoryFrames  = 8
	energySpikeRatio     = 1.5
	energyRefractorySecs = 0.2
)

// EnergyDetector is the conservative legacy detector: a sustained RMS
// energy ratio spike over a rolling history, with a long refractory period.
// Used when the multi-feature detector over-triggers on dense material.
type EnergyDetector struct {
	envelope *temporal.Envelope
	logger   logging.Logger
}

// NewEnergyDetector creates the legacy energy-threshold detector
func NewEnergyDetector() *EnergyDetector {
	return &EnergyDetector{
		envelope: temporal.NewEnvelope(),
		logger: logging.WithFields(logging.Fields{
			"component": "energy_detector",
		}),
	}
}

// Name identifies the detector in logs and results
func (ed *EnergyDetector) Name() string { return "energy" }

// Detect finds onsets where the RMS envelope spikes above the rolling
// history mean
func (ed *EnergyDetector) Detect(ctx context.Context, buf *transcode.Buffer, cfg Config) ([]Onset, error) {
	if buf == nil || buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: nil or invalid buffer", transcode.ErrDecode)
	}

	envelope := ed.envelope.ComputeRMS(buf.Samples, spectral.DefaultWindowSize, spectral.DefaultHopSize)
	if len(envelope) == 0 {
		return []Onset{}, nil
	}

	minLinear := math.Pow(10, cfg.SensitivityDB/20.0)
	frameTime := float64(spectral.DefaultHopSize) / float64(buf.SampleRate)
	refractoryFrames := int(energyRefractorySecs / frameTime)

	var onsets []Onset
	lastFrame := -refractoryFrames

	for i := 1; i < len(envelope); i++ {
		if envelope[i] < minLinear {
			continue
		}
		if i-lastFrame < refractoryFrames {
			continue
		}

		historyStart := max(0, i-energyHistoryFrames)
		historyMean := common.Mean(envelope[historyStart:i])

		// A silent history means any audible frame is an attack
		if historyMean < 1e-9 || envelope[i] > energySpikeRatio*historyMean {
			onsets = append(onsets, Onset{
				Time:     float64(i) * frameTime,
				Strength: envelope[i],
			})
			lastFrame = i
		}
	}

	ed.logger.Debug("Energy detection complete", logging.Fields{
		"num_frames": len(envelope),
		"num_onsets": len(onsets),
	})

	return FilterOnsets(onsets, cfg.MinOnsetTime, cfg.MaxDuration), nil
}
