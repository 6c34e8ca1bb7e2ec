package rewrite

import (
	"fmt"

	"github.com/compozy/normorder/engine/operator"
)

// Apply rewrites the pair (i, i+1) of t and returns the terms that replace
// t in its expression: one term for Swap, two for Contract.
//
// Contract yields, in order, the delta term (always positive, the pair
// replaced by a leading delta factor) and the swapped term, whose sign is
// flipped iff the constructor is a spinor.
func Apply(t operator.Term, i int, kind Kind) []operator.Term {
	factors := t.Factors()
	left, right := factors[i], factors[i+1]
	pre, post := factors[:i], factors[i+2:]

	swapped := make([]operator.Factor, 0, len(factors))
	swapped = append(swapped, pre...)
	swapped = append(swapped, right, left)
	swapped = append(swapped, post...)

	switch kind {
	case Swap:
		return []operator.Term{operator.NewTerm(t.Sign(), swapped...)}
	case Contract:
		annihilator := left.(operator.Operator)
		constructor := right.(operator.Operator)

		contracted := make([]operator.Factor, 0, len(factors)-1)
		contracted = append(contracted, operator.Contract(annihilator, constructor))
		contracted = append(contracted, pre...)
		contracted = append(contracted, post...)

		sign := t.Sign()
		if constructor.IsSpinor() {
			sign = sign.Flip()
		}
		return []operator.Term{
			operator.NewTerm(operator.Plus, contracted...),
			operator.NewTerm(sign, swapped...),
		}
	default:
		panic(fmt.Sprintf("rewrite: unknown kind %d", kind))
	}
}
