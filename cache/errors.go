package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a caller bug: a nil key, a non-positive
	// capacity or a negative trim target. It is never retried.
	ErrInvalidArgument = errors.New("cache: invalid argument")

	// ErrNoLoader is returned when a loading operation has no Loader.
	ErrNoLoader = errors.New("cache: no Loader provided")

	// ErrNoValue is returned by a Loader to signal that the key has no
	// value. It is not counted as a load failure.
	ErrNoValue = errors.New("cache: no value")

	// ErrNotFound is returned by loading caches when the key has no value.
	ErrNotFound = errors.New("cache: not found")
)

// LoadError wraps a loader failure for the key being loaded.
type LoadError struct {
	Key any
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("cache: load %v: %v", e.Key, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// invalidKey builds the error for a nil key.
func invalidKey(op string) error {
	return fmt.Errorf("%w: %s: nil key", ErrInvalidArgument, op)
}
