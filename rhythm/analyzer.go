package rhythm

import (
	"context"
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-ritmo/detect"
	"github.com/RyanBlaney/sonido-ritmo/logging"
	"github.com/RyanBlaney/sonido-ritmo/transcode"
)

// Analyzer runs the full pipeline: onset detection over a complete
// recording, beat grid generation, optional latency compensation, and
// scoring. Stateless between invocations; one Analyzer may be reused
// across takes but a single Analyze call owns its buffer for the duration.
type Analyzer struct {
	config Config
	chain  *detect.Chain
	legacy *detect.EnergyDetector
	logger logging.Logger
}

// NewAnalyzer creates an analyzer for the given configuration. Invalid
// configuration is ErrInvalidArgument.
func NewAnalyzer(config Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Analyzer{
		config: config,
		chain:  detect.NewDefaultChain(config.Detect),
		legacy: detect.NewEnergyDetector(),
		logger: logging.WithFields(logging.Fields{
			"component": "rhythm_analyzer",
			"tempo_bpm": config.TempoBPM,
			"pattern":   string(config.Pattern),
			"mode":      string(config.Mode),
		}),
	}, nil
}

// Analyze processes one complete recording and returns the accuracy
// report. The buffer is treated as read-only. Cancellation via ctx is
// coarse-grained: it aborts the external backend, after which the built-in
// detector still runs to completion.
func (a *Analyzer) Analyze(ctx context.Context, buf *transcode.Buffer) (*Result, error) {
	if buf == nil || buf.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: nil or invalid buffer", transcode.ErrDecode)
	}

	duration := a.config.Duration
	if duration <= 0 {
		duration = buf.Duration()
	}

	detectCfg := a.effectiveDetectConfig(duration)

	a.logger.Debug("Starting analysis", logging.Fields{
		"buffer_duration": buf.Duration(),
		"grid_duration":   duration,
		"sensitivity_db":  detectCfg.SensitivityDB,
		"min_separation":  detectCfg.MinSeparation,
	})

	onsets, err := a.chain.Detect(ctx, buf, detectCfg)
	if err != nil {
		return nil, err
	}
	detector := "spectral"
	if a.config.Detect.AubioPath != "" {
		detector = "chain"
	}

	// Density fallback: the sensitive multi-feature detector can
	// over-trigger on sustained or distorted material. When it reports an
	// implausible note rate, rerun with the conservative legacy detector.
	density := detect.Density(onsets, duration)
	if detectCfg.MaxOnsetRate > 0 && density > detectCfg.MaxOnsetRate {
		a.logger.Warn("Onset density exceeds plausible rate, using legacy detector", logging.Fields{
			"density":  density,
			"max_rate": detectCfg.MaxOnsetRate,
		})

		legacyOnsets, legacyErr := a.legacy.Detect(ctx, buf, detectCfg)
		if legacyErr != nil {
			return nil, legacyErr
		}
		onsets = legacyOnsets
		detector = a.legacy.Name()
	}

	times := detect.Times(onsets)

	grid, err := GenerateGrid(float64(a.config.TempoBPM), a.config.Pattern, duration)
	if err != nil {
		return nil, err
	}

	result := &Result{
		TempoBPM:     a.config.TempoBPM,
		Pattern:      a.config.Pattern,
		Mode:         a.config.Mode,
		Duration:     duration,
		Grid:         grid,
		OnsetDensity: density,
		Detector:     detector,
	}

	var scorer Scorer
	switch a.config.Mode {
	case ModeFixedGrid:
		offset := EstimateLatency(times, grid)
		times = ApplyLatencyOffset(times, offset)
		result.LatencyOffset = offset
		scorer = NewFixedGridScorer(grid)
	default:
		intervalScorer, scorerErr := NewIntervalScorer(float64(a.config.TempoBPM), a.config.Pattern)
		if scorerErr != nil {
			return nil, scorerErr
		}
		scorer = intervalScorer
	}

	result.Onsets = times
	result.Score = scorer.Score(times)

	a.logger.Debug("Analysis complete", logging.Fields{
		"num_onsets":   len(times),
		"density":      density,
		"detector":     detector,
		"accuracy":     result.Score.Accuracy,
		"insufficient": result.Score.Insufficient,
	})

	return result, nil
}

// effectiveDetectConfig fills the density-derived defaults the caller left
// unset: minimum separation from the expected note spacing, and the grid
// duration as the onset time cap
func (a *Analyzer) effectiveDetectConfig(duration float64) detect.Config {
	cfg := a.config.Detect

	if cfg.MinSeparation <= 0 {
		fallback := detect.DefaultConfig().MinSeparation
		step, err := StepSeconds(float64(a.config.TempoBPM), a.config.Pattern)
		if err == nil {
			cfg.MinSeparation = math.Max(fallback, step*0.5)
		} else {
			cfg.MinSeparation = fallback
		}
	}

	if cfg.MaxDuration <= 0 && a.config.Duration > 0 {
		cfg.MaxDuration = a.config.Duration
	}

	return cfg
}
