// Package store implements the document stores backing the arcade catalog:
// game metadata, visitor feedback and the singleton app configuration.
package store

import (
	"errors"
)

// ErrNotFound is returned when an operation references a document that does
// not exist.
var ErrNotFound = errors.New("document not found")
