package rhythm

import (
	"fmt"

	"github.com/RyanBlaney/sonido-ritmo/detect"
)

// Tempo bounds for practice sessions
const (
	MinTempoBPM = 20
	MaxTempoBPM = 300
)

// Config is the immutable per-analysis configuration. Construct from
// DefaultConfig and adjust; the engine validates and never mutates it.
type Config struct {
	// TempoBPM is the programmed metronome tempo
	TempoBPM int `json:"tempo_bpm"`

	// Pattern is the programmed note subdivision
	Pattern Pattern `json:"pattern"`

	// Mode selects the scoring philosophy; ModeInterval is the default
	Mode Mode `json:"mode"`

	// Duration is the nominal recording length in seconds used to bound
	// the generated beat grid; zero means use the buffer's actual duration
	Duration float64 `json:"duration"`

	// Detect holds the onset detection tuning, including the sensitivity
	// threshold in dBFS
	Detect detect.Config `json:"detect"`
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		TempoBPM: 120,
		Pattern:  PatternQuarter,
		Mode:     ModeInterval,
		Duration: 0,
		Detect:   detect.DefaultConfig(),
	}
}

// Validate checks the configuration; violations are ErrInvalidArgument
func (c Config) Validate() error {
	if c.TempoBPM < MinTempoBPM || c.TempoBPM > MaxTempoBPM {
		return fmt.Errorf("%w: tempo %d outside [%d, %d] BPM", ErrInvalidArgument, c.TempoBPM, MinTempoBPM, MaxTempoBPM)
	}
	if _, err := c.Pattern.Multiplier(); err != nil {
		return err
	}
	if c.Mode != ModeFixedGrid && c.Mode != ModeInterval {
		return fmt.Errorf("%w: unsupported scoring mode %q", ErrInvalidArgument, string(c.Mode))
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must be non-negative, got %v", ErrInvalidArgument, c.Duration)
	}
	if c.Detect.SensitivityDB < -80 || c.Detect.SensitivityDB > -10 {
		return fmt.Errorf("%w: sensitivity %v dB outside [-80, -10]", ErrInvalidArgument, c.Detect.SensitivityDB)
	}
	return nil
}
