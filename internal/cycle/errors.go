package cycle

import "errors"

var (
	// ErrDataUnavailable means the bars needed to pick a reference close are
	// missing or invalid. Callers decide whether to refetch.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidSteps means a step sequence is empty or holds a value that
	// cannot be used. Callers should ask for new input.
	ErrInvalidSteps = errors.New("invalid steps")
)
