package index

import "errors"

var (
	// ErrDimensionMismatch is returned when a vector's width does not match
	// the dimension pinned by the first add. Only the offending operation
	// fails; the index keeps serving.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector is returned when an empty vector is added.
	ErrEmptyVector = errors.New("vector is empty")
)
