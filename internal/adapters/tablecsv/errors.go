package tablecsv

import "errors"

// Sentinel kinds for table I/O errors.
var (
	// ErrMissingFile reports an absent input path; callers log a warning
	// and skip the source.
	ErrMissingFile = errors.New("input file missing")

	// ErrEmptyInput reports that a file or glob produced no rows.
	ErrEmptyInput = errors.New("empty input")
)
