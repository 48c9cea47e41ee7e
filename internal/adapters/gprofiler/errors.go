package gprofiler

import "errors"

// Sentinel kinds for enrichment service errors.
var (
	// ErrService reports a failed service call. Callers log it and skip
	// the region; other regions keep processing.
	ErrService = errors.New("enrichment service error")
)
