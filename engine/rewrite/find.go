package rewrite

import "github.com/compozy/normorder/engine/operator"

// Kind selects how an out-of-order (annihilator, constructor) pair is
// rewritten.
type Kind int

const (
	// Swap exchanges two operators of unrelated fields.
	Swap Kind = iota
	// Contract exchanges two operators of the same field and adds a delta
	// term.
	Contract
)

func (k Kind) String() string {
	switch k {
	case Swap:
		return "swap"
	case Contract:
		return "contract"
	default:
		return "unknown"
	}
}

// Site locates a rewrite: the pair (Factor, Factor+1) of term Term.
type Site struct {
	Term   int
	Factor int
	Kind   Kind
}

// Commutes reports whether an annihilator/constructor pair commutes
// trivially, which is the case iff they belong to different fields.
func Commutes(a, b operator.Operator) bool {
	return !operator.SameField(a, b)
}

// FindInTerm returns the index of the leftmost adjacent pair whose left
// factor is an annihilator and whose right factor is a constructor. Delta
// factors never match.
func FindInTerm(t operator.Term) (int, bool) {
	for i := 0; i+1 < t.Len(); i++ {
		left, ok := t.Operator(i)
		if !ok || !left.IsAnnihilator() {
			continue
		}
		right, ok := t.Operator(i + 1)
		if !ok || !right.IsConstructor() {
			continue
		}
		return i, true
	}
	return 0, false
}

// Find scans the terms in order and returns the leftmost rewrite site.
// The boolean is false when the expression is already normal ordered.
func Find(expr operator.Expression) (Site, bool) {
	for ti := 0; ti < expr.Len(); ti++ {
		term := expr.At(ti)
		fi, ok := FindInTerm(term)
		if !ok {
			continue
		}
		left, _ := term.Operator(fi)
		right, _ := term.Operator(fi + 1)
		kind := Contract
		if Commutes(left, right) {
			kind = Swap
		}
		return Site{Term: ti, Factor: fi, Kind: kind}, true
	}
	return Site{}, false
}
