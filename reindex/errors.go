package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrNoSourceTexts is returned when an index variant has neither stored
	// texts nor class annotations to derive them from.
	ErrNoSourceTexts = errors.New("no source texts for variant")

	// ErrCountMismatch is returned when the embedder answers a batch with a
	// different number of vectors.
	ErrCountMismatch = errors.New("embedding count mismatch")
)
