package ai

import "errors"

var (
	// ErrEncoding wraps every failure to produce an embedding: empty input,
	// upstream errors, timeouts, malformed responses. Callers match it with
	// errors.Is and decide whether to retry, skip, or abort.
	ErrEncoding = errors.New("encoding failed")

	// ErrEmptyText is returned (wrapped in ErrEncoding) when the input text
	// is empty or whitespace-only. There is nothing meaningful to embed.
	ErrEmptyText = errors.New("text is empty")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
