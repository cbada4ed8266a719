package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller-correctable request problems.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstreamFailure marks post source or persistence failures.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrNotFound marks read-side lookup misses.
	ErrNotFound = errors.New("not found")
)

// Pipeline stage names used in StageError.
const (
	StageFetch   = "fetch"
	StagePersist = "persist"
)

// StageError reports which pipeline stage failed against an upstream collaborator.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUpstreamFailure) match any stage failure.
func (e *StageError) Is(target error) bool {
	return target == ErrUpstreamFailure
}

// InvalidInput builds an ErrInvalidInput with a field-specific message.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
