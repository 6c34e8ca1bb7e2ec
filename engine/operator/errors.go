package operator

import (
	"errors"
	"fmt"
)

// ErrInvalidOperand is matched by every OperandError.
var ErrInvalidOperand = errors.New("invalid operand")

// Field names reported by OperandError.
const (
	FieldName    = "operator-name"
	FieldOperand = "operand"
)

// OperandError reports an empty operator-name or operand.
type OperandError struct {
	Field string
	Value string
}

func (e *OperandError) Error() string {
	return fmt.Sprintf("invalid operand: %s must not be empty (got %q)", e.Field, e.Value)
}

func (e *OperandError) Is(target error) bool {
	return target == ErrInvalidOperand
}
