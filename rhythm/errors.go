package rhythm

import (
	"errors"
)

// ErrInvalidArgument indicates an out-of-range or unsupported engine
// argument: non-positive tempo, unknown subdivision pattern, negative
// duration. Always propagated, never silently corrected. Match with
// errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")
