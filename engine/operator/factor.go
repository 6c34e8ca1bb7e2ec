package operator

import (
	"strings"
	"unicode/utf8"
)

// DeltaName is the reserved operator-name printed for contraction factors.
const DeltaName = "DiracDelta"

// Kind is the role an operator factor plays in a product.
type Kind int

const (
	Annihilator Kind = iota
	Constructor
)

func (k Kind) String() string {
	switch k {
	case Constructor:
		return "constructor"
	case Annihilator:
		return "annihilator"
	default:
		return "unknown"
	}
}

// Classify derives the kind of an operator from its name. Names starting
// with 'c' are constructors; every other name is an annihilator.
func Classify(name string) (Kind, error) {
	if name == "" {
		return Annihilator, &OperandError{Field: FieldName, Value: name}
	}
	return kindOf(name), nil
}

func kindOf(name string) Kind {
	if strings.HasPrefix(name, "c") {
		return Constructor
	}
	return Annihilator
}

// Factor is one element of a term's product. It is either an Operator
// factor or a Delta contraction factor; the set is closed.
type Factor interface {
	// Name returns the operator-name as printed before the brackets.
	Name() string
	// Operand returns the bracketed argument.
	Operand() string
	// String returns the wire form "name[operand]".
	String() string

	factor()
}

// Operator is a creation or annihilation operator applied to an operand.
// The zero value is not valid; use NewOperator.
type Operator struct {
	name    string
	operand string
}

// NewOperator builds an operator factor. Both the name and the operand must
// be non-empty.
func NewOperator(name, operand string) (Operator, error) {
	if name == "" {
		return Operator{}, &OperandError{Field: FieldName, Value: name}
	}
	if operand == "" {
		return Operator{}, &OperandError{Field: FieldOperand, Value: operand}
	}
	return Operator{name: name, operand: operand}, nil
}

// MustOperator is like NewOperator but panics on invalid input. It is meant
// for literals in tests and tables.
func MustOperator(name, operand string) Operator {
	op, err := NewOperator(name, operand)
	if err != nil {
		panic(err)
	}
	return op
}

func (o Operator) Name() string    { return o.name }
func (o Operator) Operand() string { return o.operand }
func (o Operator) String() string  { return o.name + "[" + o.operand + "]" }
func (Operator) factor()           {}

// Kind is recomputed from the name on every call.
func (o Operator) Kind() Kind {
	return kindOf(o.name)
}

// IsConstructor reports whether the operator creates a particle.
func (o Operator) IsConstructor() bool {
	return o.Kind() == Constructor
}

// IsAnnihilator reports whether the operator destroys a particle.
func (o Operator) IsAnnihilator() bool {
	return o.Kind() == Annihilator
}

// IsSpinor reports whether the operator belongs to a fermionic field, which
// is marked by a name ending in 'f'.
func (o Operator) IsSpinor() bool {
	return strings.HasSuffix(o.name, "f")
}

// Field returns the operator-name without its leading kind letter.
func (o Operator) Field() string {
	_, size := utf8.DecodeRuneInString(o.name)
	return o.name[size:]
}

// SameField reports whether two operators act on the same field, regardless
// of their kinds.
func SameField(a, b Operator) bool {
	return a.Field() == b.Field()
}

// Related reports whether a and b are the constructor and annihilator, in
// either order, of the same field. Operands are not compared.
func Related(a, b Operator) bool {
	return a.Kind() != b.Kind() && SameField(a, b)
}

// IsSpinor checks the spinor marker on a raw operator-name.
func IsSpinor(name string) (bool, error) {
	if name == "" {
		return false, &OperandError{Field: FieldName, Value: name}
	}
	return strings.HasSuffix(name, "f"), nil
}

// Delta is a Dirac delta produced by contracting an annihilator with a
// constructor of the same field. It is inert for further rewriting.
type Delta struct {
	operand string
}

// Contract builds the delta "-a+c" for an annihilator a and constructor c.
func Contract(annihilator, constructor Operator) Delta {
	return Delta{operand: "-" + annihilator.Operand() + "+" + constructor.Operand()}
}

// NewDelta wraps an already formed signed-sum operand, such as "-k1+p1".
func NewDelta(operand string) (Delta, error) {
	if operand == "" {
		return Delta{}, &OperandError{Field: FieldOperand, Value: operand}
	}
	return Delta{operand: operand}, nil
}

func (Delta) Name() string      { return DeltaName }
func (d Delta) Operand() string { return d.operand }
func (d Delta) String() string  { return DeltaName + "[" + d.operand + "]" }
func (Delta) factor()           {}
