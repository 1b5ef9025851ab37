package detect

import (
	"time"
)

// Config holds onset detection tuning. The zero value is not usable; start
// from DefaultConfig. All values were tuned against recorded guitar takes
// and are starting points, not physical constants.
type Config struct {
	// SensitivityDB is the detection floor in dBFS, useful range roughly
	// -80 (very sensitive) to -10 (only loud attacks)
	SensitivityDB float64 `json:"sensitivity_db"`

	// Threshold is the minimum combined onset strength for a peak candidate
	Threshold float64 `json:"threshold"`

	// MinSeparation is the refractory period between accepted onsets in
	// seconds. Zero means use the default.
	MinSeparation float64 `json:"min_separation"`

	// MinOnsetTime drops onsets earlier than this many seconds; suppresses
	// lead-in clicks and mic bumps at the start of a take
	MinOnsetTime float64 `json:"min_onset_time"`

	// MaxDuration drops onsets beyond this many seconds when positive;
	// trims notes played after the recording should have stopped
	MaxDuration float64 `json:"max_duration"`

	// MaxOnsetRate is the sustained onsets-per-second above which the
	// multi-feature detector is considered to be over-triggering and the
	// legacy energy detector is used instead
	MaxOnsetRate float64 `json:"max_onset_rate"`

	// AubioPath is the aubio onset CLI binary; empty disables the external
	// backend entirely
	AubioPath string `json:"aubio_path,omitempty"`

	// AubioTimeout bounds one external backend invocation
	AubioTimeout time.Duration `json:"aubio_timeout,omitempty"`
}

// DefaultConfig returns the detection defaults
func DefaultConfig() Config {
	return Config{
		SensitivityDB: -50.0,
		Threshold:     0.06,
		MinSeparation: 0.09,
		MinOnsetTime:  0.1,
		MaxDuration:   0,
		MaxOnsetRate:  6.0,
		AubioPath:     "",
		AubioTimeout:  10 * time.Second,
	}
}
