package rewrite

import (
	"errors"

	"github.com/compozy/normorder/engine/operator"
)

// ErrStop may be returned by a Visitor to end a Trace early without error.
var ErrStop = errors.New("rewrite: stop")

// Event describes one rewrite step.
type Event struct {
	// Index counts steps from 1.
	Index  int
	Site   Site
	Before operator.Expression
	After  operator.Expression
}

// Visitor observes each step of a Trace. A non-nil error aborts the trace.
type Visitor func(Event) error

// Step performs a single rewrite at the leftmost site. It returns false
// when no site exists.
func Step(expr operator.Expression) (operator.Expression, Site, bool) {
	site, ok := Find(expr)
	if !ok {
		return expr, Site{}, false
	}
	replacement := Apply(expr.At(site.Term), site.Factor, site.Kind)
	return expr.Splice(site.Term, replacement...), site, true
}

// Trace runs the fixpoint loop and calls visit after every step. It returns
// the last expression reached; when visit fails the error is returned
// alongside the expression at that point, except for ErrStop which ends the
// trace cleanly.
func Trace(expr operator.Expression, visit Visitor) (operator.Expression, error) {
	for index := 1; ; index++ {
		next, site, ok := Step(expr)
		if !ok {
			return expr, nil
		}
		if visit != nil {
			err := visit(Event{Index: index, Site: site, Before: expr, After: next})
			if errors.Is(err, ErrStop) {
				return next, nil
			}
			if err != nil {
				return next, err
			}
		}
		expr = next
	}
}

// NormalOrder rewrites expr until no annihilator stands directly left of a
// constructor and returns the result.
func NormalOrder(expr operator.Expression) operator.Expression {
	out, _ := Trace(expr, nil)
	return out
}
