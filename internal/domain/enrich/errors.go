package enrich

import "errors"

// Sentinel kinds for enrichment errors.
var (
	// ErrEmptyInput reports that no enrichment results matched; callers
	// log it and continue with an empty result rather than aborting.
	ErrEmptyInput = errors.New("empty input")
)
