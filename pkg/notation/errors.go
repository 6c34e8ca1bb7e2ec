package notation

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports the first malformed fragment of an input string.
type ParseError struct {
	Input    string
	Fragment string
	Offset   int
	Reason   string
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s: %q", e.Offset, e.Reason, e.Fragment)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
