package detect

// Onset is one detected note start: a timestamp in seconds plus the
// strength value that produced it. Immutable once emitted.
type Onset struct {
	Time     float64 `json:"time"`
	Strength float64 `json:"strength"`
}

// PeakPicker scans an onset strength track for local maxima above a
// threshold, suppressing peaks that fall within a minimum separation of a
// stronger neighbor
type PeakPicker struct {
	threshold     float64
	minSeparation float64 // seconds
}

// NewPeakPicker creates a peak picker with the given threshold and minimum
// separation in seconds
func NewPeakPicker(threshold, minSeparation float64) *PeakPicker {
	return &PeakPicker{
		threshold:     threshold,
		minSeparation: minSeparation,
	}
}

// Pick returns the accepted peaks of the strength track as onsets with
// strictly increasing timestamps. A frame is a candidate when it exceeds
// the threshold and is a local maximum (plateau tops qualify, first and
// last frames never do). Within the minimum separation of the most recent
// acceptance, only the stronger of the two peaks survives.
func (pp *PeakPicker) Pick(track []float64, hopSize, sampleRate int) []Onset {
	if len(track) < 3 {
		return []Onset{}
	}

	minSepFrames := int(pp.minSeparation * float64(sampleRate) / float64(hopSize))
	frameTime := float64(hopSize) / float64(sampleRate)

	var accepted []Onset
	lastFrame := -1

	for i := 1; i < len(track)-1; i++ {
		if track[i] <= pp.threshold {
			continue
		}
		if track[i] < track[i-1] || track[i] < track[i+1] {
			continue
		}

		if lastFrame >= 0 && i-lastFrame < minSepFrames {
			// Too close to the previous acceptance: keep the stronger peak
			if track[i] > accepted[len(accepted)-1].Strength {
				accepted[len(accepted)-1] = Onset{
					Time:     float64(i) * frameTime,
					Strength: track[i],
				}
				lastFrame = i
			}
			continue
		}

		accepted = append(accepted, Onset{
			Time:     float64(i) * frameTime,
			Strength: track[i],
		})
		lastFrame = i
	}

	return accepted
}

// FilterOnsets drops onsets earlier than minTime and, when maxTime is
// positive, later than maxTime
func FilterOnsets(onsets []Onset, minTime, maxTime float64) []Onset {
	filtered := make([]Onset, 0, len(onsets))
	for _, o := range onsets {
		if o.Time < minTime {
			continue
		}
		if maxTime > 0 && o.Time > maxTime {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// Density returns onsets per second over the given duration
func Density(onsets []Onset, duration float64) float64 {
	if duration <= 0 {
		return 0.0
	}
	return float64(len(onsets)) / duration
}

// Times extracts the timestamp sequence from a slice of onsets
func Times(onsets []Onset) []float64 {
	times := make([]float64, len(onsets))
	for i, o := range onsets {
		times[i] = o.Time
	}
	return times
}
