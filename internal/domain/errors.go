package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the core and its adapters. Callers match with errors.Is.
var (
	// ErrEmptyInput means a required field was left blank.
	ErrEmptyInput = errors.New("empty input")
	// ErrUnauthorized means the guardian credential check failed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState means the operation is not valid in the current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound is an ErrInvalidState for a target that does not exist.
	ErrNotFound = fmt.Errorf("not found: %w", ErrInvalidState)
	// ErrUpstreamFailure means the model provider failed before or during a stream.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrPersistenceFailure means the settings store could not be read or written.
	ErrPersistenceFailure = errors.New("persistence failure")
)
