package services

import (
	"errors"
)

// Error taxonomy shared by every service. Handlers map these to HTTP status
// codes with errors.Is; services wrap them with operation context.
var (
	// ErrInvalidInput marks bad or missing input, rejected before any
	// network call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyComment marks a feedback comment that is blank after trimming.
	ErrEmptyComment = errors.New("empty comment")

	// ErrInvalidURL marks a backend URL that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrNotFound marks an operation referencing a nonexistent game.
	ErrNotFound = errors.New("not found")

	// ErrBackendUnreachable marks a file backend request that could not
	// complete or returned a non-2xx status.
	ErrBackendUnreachable = errors.New("file backend unreachable")

	// ErrPersistence marks a metadata store read or write failure.
	ErrPersistence = errors.New("persistence failure")
)
