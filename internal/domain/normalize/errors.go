package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	// ErrSchema reports a required column missing (or malformed) after
	// applying the rename rules for a source.
	ErrSchema = errors.New("schema mismatch")
)
