package schema

import "errors"

// Precondition errors are fatal to the single call and never retried.
var (
	// ErrInvalidWeights indicates a custom weight map that is malformed or
	// does not sum to 1.0 within WeightTolerance.
	ErrInvalidWeights = errors.New("invalid weight configuration")

	// ErrMissingID indicates an opportunity record without an identifier.
	// This signals a caller bug, not a data-quality issue.
	ErrMissingID = errors.New("opportunity record has no identifier")
)
