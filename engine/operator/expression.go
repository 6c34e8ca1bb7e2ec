package operator

import "strings"

// Expression is an ordered sum of terms. The order carries no algebraic
// meaning but keeps output reproducible. Expressions are immutable.
type Expression struct {
	terms []Term
}

// NewExpression builds an expression from terms. The slice is copied.
func NewExpression(terms ...Term) Expression {
	return Expression{terms: append([]Term(nil), terms...)}
}

// Len returns the number of terms.
func (e Expression) Len() int {
	return len(e.terms)
}

// IsEmpty reports whether the expression has no terms.
func (e Expression) IsEmpty() bool {
	return len(e.terms) == 0
}

// At returns the i-th term.
func (e Expression) At(i int) Term {
	return e.terms[i]
}

// Terms returns a copy of the term sequence.
func (e Expression) Terms() []Term {
	return append([]Term(nil), e.terms...)
}

// Splice returns a new expression where the term at index i is replaced by
// the given terms. The receiver is left untouched.
func (e Expression) Splice(i int, replacement ...Term) Expression {
	out := make([]Term, 0, len(e.terms)-1+len(replacement))
	out = append(out, e.terms[:i]...)
	out = append(out, replacement...)
	out = append(out, e.terms[i+1:]...)
	return Expression{terms: out}
}

// Concat appends the terms of other after the terms of e.
func (e Expression) Concat(other Expression) Expression {
	out := make([]Term, 0, len(e.terms)+len(other.terms))
	out = append(out, e.terms...)
	out = append(out, other.terms...)
	return Expression{terms: out}
}

// Equal compares two expressions term by term, in order.
func (e Expression) Equal(other Expression) bool {
	if len(e.terms) != len(other.terms) {
		return false
	}
	for i := range e.terms {
		if !e.terms[i].Equal(other.terms[i]) {
			return false
		}
	}
	return true
}

// String prints the single-line wire form, terms joined by " + ".
func (e Expression) String() string {
	parts := make([]string, len(e.terms))
	for i, t := range e.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}
