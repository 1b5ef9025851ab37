package rhythm

import (
	"fmt"
)

// Pattern is a note subdivision pattern: how many equal note events occur
// per metronome beat
type Pattern string

const (
	PatternQuarter          Pattern = "quarter"
	PatternEighth           Pattern = "eighth"
	PatternEighthTriplet    Pattern = "eighth_triplet"
	PatternSixteenth        Pattern = "sixteenth"
	PatternSixteenthTriplet Pattern = "sixteenth_triplet"
)

// Patterns returns every supported subdivision pattern
func Patterns() []Pattern {
	return []Pattern{
		PatternQuarter,
		PatternEighth,
		PatternEighthTriplet,
		PatternSixteenth,
		PatternSixteenthTriplet,
	}
}

// Multiplier returns the number of note events per beat for the pattern
func (p Pattern) Multiplier() (int, error) {
	switch p {
	case PatternQuarter:
		return 1, nil
	case PatternEighth:
		return 2, nil
	case PatternEighthTriplet:
		return 3, nil
	case PatternSixteenth:
		return 4, nil
	case PatternSixteenthTriplet:
		return 6, nil
	default:
		return 0, fmt.Errorf("%w: unsupported pattern %q", ErrInvalidArgument, string(p))
	}
}
