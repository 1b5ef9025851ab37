package rhythm

import (
	"math"
	"sort"
)

// Mode selects the scoring philosophy
type Mode string

const (
	// ModeFixedGrid compares each onset against the absolute beat grid
	// after latency compensation
	ModeFixedGrid Mode = "fixed_grid"

	// ModeInterval compares consecutive onset spacing against the expected
	// note interval, ignoring absolute latency. The default: it reflects a
	// musician's internal timing consistency regardless of device latency.
	ModeInterval Mode = "interval"
)

// Tier classifies one note's timing error
type Tier string

const (
	TierGreen  Tier = "green"
	TierYellow Tier = "yellow"
	TierRed    Tier = "red"

	// TierNone marks the first onset in interval mode, which carries no
	// interval and is excluded from scoring
	TierNone Tier = "none"
)

// Classification thresholds in milliseconds. Interval mode is more lenient
// because interval errors compound two onsets' worth of jitter.
const (
	fixedGreenMs  = 20.0
	fixedYellowMs = 50.0

	intervalGreenMs  = 35.0
	intervalYellowMs = 100.0

	yellowPoints = 0.5

	// Absorbs float noise on tier boundaries (a 20 ms error must not land
	// red because subtraction produced 20.000000000000018)
	tierEpsilonMs = 1e-9
)

// NoteScore is the classification of a single detected note
type NoteScore struct {
	Index     int     `json:"index"`
	Timestamp float64 `json:"timestamp"`
	Interval  float64 `json:"interval,omitempty"` // actual onset spacing, interval mode only
	ErrorMs   float64 `json:"error_ms"`
	Tier      Tier    `json:"tier"`
	Points    float64 `json:"points"`
}

// ScoreReport is the outcome of scoring one take. When Insufficient is set
// there were not enough onsets for a meaningful percentage and Accuracy is
// zero by convention; callers must check Insufficient before presenting a
// number.
type ScoreReport struct {
	Mode         Mode        `json:"mode"`
	Accuracy     float64     `json:"accuracy"`
	Insufficient bool        `json:"insufficient"`
	Reason       string      `json:"reason,omitempty"`
	Notes        []NoteScore `json:"notes"`
}

// Scorer classifies timing errors and computes a weighted accuracy
// percentage. Implementations never fail; lack of data degrades to an
// explicit insufficient-data report.
type Scorer interface {
	Mode() Mode
	Score(onsets []float64) *ScoreReport
}

// FixedGridScorer scores each onset against its nearest expected beat.
// Onsets are assumed to be latency-adjusted already.
type FixedGridScorer struct {
	beats []float64
}

// NewFixedGridScorer creates a scorer over the given expected beat grid
func NewFixedGridScorer(beats []float64) *FixedGridScorer {
	return &FixedGridScorer{beats: beats}
}

// Mode returns ModeFixedGrid
func (s *FixedGridScorer) Mode() Mode { return ModeFixedGrid }

// Score classifies every onset against the grid. Accuracy is the fraction
// of green notes.
func (s *FixedGridScorer) Score(onsets []float64) *ScoreReport {
	report := &ScoreReport{Mode: ModeFixedGrid}

	if len(onsets) == 0 {
		report.Insufficient = true
		report.Reason = "no onsets detected"
		return report
	}
	if len(s.beats) == 0 {
		report.Insufficient = true
		report.Reason = "empty beat grid"
		return report
	}

	greens := 0
	for i, t := range onsets {
		errorMs := math.Abs(t-nearestBeat(t, s.beats)) * 1000.0

		note := NoteScore{Index: i, Timestamp: t, ErrorMs: errorMs}
		switch {
		case errorMs <= fixedGreenMs+tierEpsilonMs:
			note.Tier = TierGreen
			note.Points = 1.0
			greens++
		case errorMs <= fixedYellowMs+tierEpsilonMs:
			note.Tier = TierYellow
		default:
			note.Tier = TierRed
		}

		report.Notes = append(report.Notes, note)
	}

	report.Accuracy = float64(greens) / float64(len(onsets)) * 100.0
	return report
}

// IntervalScorer scores consecutive onset spacing against the expected
// note interval for a tempo and subdivision pattern
type IntervalScorer struct {
	expectedInterval float64
}

// NewIntervalScorer creates an interval-consistency scorer. Tempo and
// pattern validation errors are ErrInvalidArgument.
func NewIntervalScorer(tempoBPM float64, pattern Pattern) (*IntervalScorer, error) {
	step, err := StepSeconds(tempoBPM, pattern)
	if err != nil {
		return nil, err
	}
	return &IntervalScorer{expectedInterval: step}, nil
}

// Mode returns ModeInterval
func (s *IntervalScorer) Mode() Mode { return ModeInterval }

// ExpectedInterval returns the target spacing between consecutive notes
func (s *IntervalScorer) ExpectedInterval() float64 { return s.expectedInterval }

// Score sorts the onsets ascending and classifies each onset-to-onset
// interval. The first onset has no interval and is reported with TierNone,
// excluded from the accuracy denominator.
func (s *IntervalScorer) Score(onsets []float64) *ScoreReport {
	report := &ScoreReport{Mode: ModeInterval}

	if len(onsets) < 2 {
		report.Insufficient = true
		report.Reason = "need at least 2 onsets to compare intervals"
		return report
	}

	sorted := make([]float64, len(onsets))
	copy(sorted, onsets)
	sort.Float64s(sorted)

	report.Notes = append(report.Notes, NoteScore{
		Index:     0,
		Timestamp: sorted[0],
		Tier:      TierNone,
	})

	totalPoints := 0.0
	for i := 1; i < len(sorted); i++ {
		interval := sorted[i] - sorted[i-1]
		errorMs := math.Abs(interval-s.expectedInterval) * 1000.0

		note := NoteScore{
			Index:     i,
			Timestamp: sorted[i],
			Interval:  interval,
			ErrorMs:   errorMs,
		}
		switch {
		case errorMs <= intervalGreenMs+tierEpsilonMs:
			note.Tier = TierGreen
			note.Points = 1.0
		case errorMs <= intervalYellowMs+tierEpsilonMs:
			note.Tier = TierYellow
			note.Points = yellowPoints
		default:
			note.Tier = TierRed
		}

		totalPoints += note.Points
		report.Notes = append(report.Notes, note)
	}

	report.Accuracy = totalPoints / float64(len(sorted)-1) * 100.0
	return report
}
