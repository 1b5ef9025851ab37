package rhythm

import (
	"fmt"
)

// gridEpsilon lets a beat that lands exactly on the duration boundary
// survive floating point noise
const gridEpsilon = 1e-6

// StepSeconds returns the expected spacing between consecutive note events
// for the given tempo and subdivision pattern
func StepSeconds(tempoBPM float64, pattern Pattern) (float64, error) {
	if tempoBPM <= 0 {
		return 0, fmt.Errorf("%w: tempo must be positive, got %v", ErrInvalidArgument, tempoBPM)
	}
	multiplier, err := pattern.Multiplier()
	if err != nil {
		return 0, err
	}
	return 60.0 / tempoBPM / float64(multiplier), nil
}

// GenerateGrid returns the ordered expected beat timestamps for a recording
// of the given duration: 0, step, 2*step, ... up to and including the
// duration boundary. Pure and deterministic; identical arguments produce
// bit-identical output.
func GenerateGrid(tempoBPM float64, pattern Pattern, duration float64) ([]float64, error) {
	if duration < 0 {
		return nil, fmt.Errorf("%w: duration must be non-negative, got %v", ErrInvalidArgument, duration)
	}

	step, err := StepSeconds(tempoBPM, pattern)
	if err != nil {
		return nil, err
	}

	var grid []float64
	for i := 0; ; i++ {
		t := float64(i) * step
		if t > duration+gridEpsilon {
			break
		}
		grid = append(grid, t)
	}

	return grid, nil
}
