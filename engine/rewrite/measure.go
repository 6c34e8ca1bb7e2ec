package rewrite

import "github.com/compozy/normorder/engine/operator"

// AdjacentInversions counts adjacent (annihilator, constructor) pairs over
// all terms. It is zero exactly when Find reports no site.
func AdjacentInversions(expr operator.Expression) int {
	total := 0
	for ti := 0; ti < expr.Len(); ti++ {
		term := expr.At(ti)
		for i := 0; i+1 < term.Len(); i++ {
			left, lok := term.Operator(i)
			right, rok := term.Operator(i + 1)
			if lok && rok && left.IsAnnihilator() && right.IsConstructor() {
				total++
			}
		}
	}
	return total
}

// Disorder counts index pairs i<j of a term with an annihilator at i and a
// constructor at j. A swap lowers it by one and a contraction produces two
// terms that are both strictly below the original, which bounds the number
// of steps.
func Disorder(t operator.Term) int {
	total := 0
	annihilators := 0
	for i := 0; i < t.Len(); i++ {
		op, ok := t.Operator(i)
		if !ok {
			continue
		}
		if op.IsAnnihilator() {
			annihilators++
		} else {
			total += annihilators
		}
	}
	return total
}
