package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrEmptyInput = errors.New("empty input")
)
