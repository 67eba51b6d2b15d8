package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrVersionConflict means the document changed between read and
	// write; the caller should re-read and retry or give up.
	ErrVersionConflict = errors.New("booking was modified concurrently")
)
