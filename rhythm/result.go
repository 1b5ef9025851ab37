package rhythm

// Result is the complete outcome of analyzing one take. Immutable once
// produced; consumed by the presentation layer.
type Result struct {
	TempoBPM int     `json:"tempo_bpm"`
	Pattern  Pattern `json:"pattern"`
	Mode     Mode    `json:"mode"`

	// Duration is the analyzed recording length in seconds
	Duration float64 `json:"duration"`

	// Grid is the expected beat grid for the tempo, pattern, and duration
	Grid []float64 `json:"grid"`

	// Onsets are the detected note-start timestamps, latency-adjusted in
	// fixed-grid mode
	Onsets []float64 `json:"onsets"`

	// LatencyOffset is the estimated constant offset subtracted from the
	// onsets; zero in interval mode
	LatencyOffset float64 `json:"latency_offset"`

	// OnsetDensity is detected onsets per second, before any density
	// fallback took effect
	OnsetDensity float64 `json:"onset_density"`

	// Detector names which detection path produced the final onsets
	Detector string `json:"detector"`

	// Score carries the per-note classification and overall accuracy
	Score *ScoreReport `json:"score"`
}
