package cli

import (
	"errors"
	"fmt"
)

var (
	// ErrSelftestFailed is returned when at least one self-test case fails.
	ErrSelftestFailed = errors.New("self-test failed")

	// ErrInvalidInput is matched by every InputError.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError reports a malformed line of a batch input file.
type InputError struct {
	Source string
	Line   int
	Cause  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Cause)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InputError) Unwrap() error {
	return e.Cause
}
