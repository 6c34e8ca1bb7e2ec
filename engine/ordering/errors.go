package ordering

import (
	"errors"
	"fmt"
)

// ErrStepLimit is matched by every StepLimitError.
var ErrStepLimit = errors.New("step limit exceeded")

// StepLimitError reports that a term needed more rewrite steps than the
// configured engine.max_steps.
type StepLimitError struct {
	Limit int
	// Term is the index of the term being rewritten when the limit was hit.
	Term int
}

func (e *StepLimitError) Error() string {
	return fmt.Sprintf("step limit exceeded: term %d needs more than %d rewrite steps", e.Term, e.Limit)
}

func (e *StepLimitError) Is(target error) bool {
	return target == ErrStepLimit
}
