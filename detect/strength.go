package detect

import (
	"math"

	"github.com/RyanBlaney/sonido-ritmo/algorithms/common"
	"github.com/RyanBlaney/sonido-ritmo/algorithms/spectral"
)

// Feature combination weights and caps. Energy dominates because it is the
// most reliable cue for plucked-string attacks; the caps keep any single
// feature from spiking the combined strength on transient noise.
const (
	weightEnergy = 0.6
	weightFlux   = 0.25
	weightPhase  = 0.15

	capEnergy = 2.0
	capFlux   = 1.0
	capPhase  = 1.0

	fluxFloor  = 0.01
	phaseFloor = 0.05
)

// StrengthTrack combines per-frame spectral features into a single onset
// strength value per frame. Each feature is gated independently: energy
// against the linear form of the dBFS sensitivity, flux and phase deviation
// against small fixed floors.
func StrengthTrack(features []spectral.FrameFeatures, sensitivityDB float64) []float64 {
	minLinear := math.Pow(10, sensitivityDB/20.0)

	track := make([]float64, len(features))
	for i, f := range features {
		strength := 0.0

		if f.Energy > minLinear*0.5 {
			strength += weightEnergy * math.Min(f.Energy/minLinear, capEnergy)
		}
		if f.Flux > fluxFloor {
			strength += weightFlux * math.Min(f.Flux, capFlux)
		}
		if f.PhaseDeviation > phaseFloor {
			strength += weightPhase * math.Min(f.PhaseDeviation, capPhase)
		}

		track[i] = strength
	}

	return track
}

// AdaptiveThreshold derives a peak threshold from the strength track
// statistics (mean plus two standard deviations). An alternative to the
// fixed Config.Threshold for unusually quiet or hot recordings.
func AdaptiveThreshold(track []float64) float64 {
	if len(track) == 0 {
		return 0.0
	}
	return common.Mean(track) + 2.0*common.StandardDeviation(track)
}
