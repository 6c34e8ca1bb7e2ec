package operator

import "strings"

// Sign is the sign of a term within a sum.
type Sign int8

const (
	Plus Sign = iota
	Minus
)

// Flip returns the opposite sign.
func (s Sign) Flip() Sign {
	if s == Minus {
		return Plus
	}
	return Minus
}

func (s Sign) normalize() Sign {
	if s == Minus {
		return Minus
	}
	return Plus
}

func (s Sign) String() string {
	if s == Minus {
		return "-"
	}
	return "+"
}

// Term is a signed, ordered, non-commutative product of factors.
// Terms are immutable: every accessor returns copies.
type Term struct {
	sign    Sign
	factors []Factor
}

// NewTerm builds a term from a sign and a factor sequence. The slice is
// copied.
func NewTerm(sign Sign, factors ...Factor) Term {
	return Term{sign: sign.normalize(), factors: append([]Factor(nil), factors...)}
}

// Sign returns the sign of the term.
func (t Term) Sign() Sign {
	return t.sign
}

// Len returns the number of factors.
func (t Term) Len() int {
	return len(t.factors)
}

// At returns the i-th factor.
func (t Term) At(i int) Factor {
	return t.factors[i]
}

// Factors returns a copy of the factor sequence.
func (t Term) Factors() []Factor {
	return append([]Factor(nil), t.factors...)
}

// WithSign returns the same product under another sign. Any value other
// than Minus is taken as Plus.
func (t Term) WithSign(sign Sign) Term {
	return Term{sign: sign.normalize(), factors: t.factors}
}

// Negate returns the term with its sign flipped.
func (t Term) Negate() Term {
	return t.WithSign(t.sign.Flip())
}

// Operator returns the i-th factor when it is an operator factor.
func (t Term) Operator(i int) (Operator, bool) {
	op, ok := t.factors[i].(Operator)
	return op, ok
}

// Equal reports whether two terms have the same sign and factors.
func (t Term) Equal(other Term) bool {
	if t.sign != other.sign || len(t.factors) != len(other.factors) {
		return false
	}
	for i := range t.factors {
		if t.factors[i] != other.factors[i] {
			return false
		}
	}
	return true
}

// String prints the term in wire form: a leading '-' for negative terms,
// factors joined by '.'.
func (t Term) String() string {
	var b strings.Builder
	if t.sign == Minus {
		b.WriteByte('-')
	}
	for i, f := range t.factors {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(f.String())
	}
	return b.String()
}
